// Package ast defines the syntax tree of a fragment shader: one outermost
// scope holding declarations and statements, and the closed sets of statement,
// expression and identifier variants.
package ast

import (
	"github.com/xplshn/arbc/pkg/token"
)

// Node is implemented by every tree element that carries a source range.
type Node interface {
	Span() token.Span
}

type node struct{ span token.Span }

func (n *node) Span() token.Span { return n.span }

// Scope owns one declaration list and one statement list.
type Scope struct {
	node
	Decls []*Declaration
	Stmts []Stmt
}

// Declaration introduces a name into the enclosing scope. Type and qualifiers
// never change after construction.
type Declaration struct {
	node
	Name        string
	NameSpan    token.Span
	Type        Type
	Init        Expr
	IsConst     bool
	IsReadOnly  bool // attribute and uniform classes
	IsWriteOnly bool // result class
	Predefined  bool
}

// --- Statements ---

// Stmt is one of *AssignStmt, *IfStmt, *NestedScope, *EmptyStmt.
type Stmt interface {
	Node
	stmtNode()
}

type AssignStmt struct {
	node
	Target Identifier
	Value  Expr
}

type IfStmt struct {
	node
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

type NestedScope struct {
	node
	Scope *Scope
}

type EmptyStmt struct{ node }

func (*AssignStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*NestedScope) stmtNode() {}
func (*EmptyStmt) stmtNode()   {}

// --- Expressions ---

// Expr is one of *IntLit, *BoolLit, *FloatLit, *VariableExpr, *CallExpr,
// *ConstructorExpr, *UnaryExpr, *BinaryExpr.
type Expr interface {
	Node
	exprNode()
}

type IntLit struct {
	node
	Value int64
}

type BoolLit struct {
	node
	Value bool
}

type FloatLit struct {
	node
	Value float64
}

type VariableExpr struct {
	node
	Ident Identifier
}

// CallExpr calls one of the built-in functions rsq, dp3 or lit.
type CallExpr struct {
	node
	Func     string
	FuncSpan token.Span
	Args     []Expr
}

type ConstructorExpr struct {
	node
	Type Type
	Args []Expr
}

// UnaryExpr applies token.Not or token.Minus.
type UnaryExpr struct {
	node
	Op token.Type
	X  Expr
}

type BinaryExpr struct {
	node
	Op    token.Type
	OpPos token.Span
	X, Y  Expr
}

func (*IntLit) exprNode()          {}
func (*BoolLit) exprNode()         {}
func (*FloatLit) exprNode()        {}
func (*VariableExpr) exprNode()    {}
func (*CallExpr) exprNode()        {}
func (*ConstructorExpr) exprNode() {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}

// --- Identifiers ---

// Identifier is one of *Variable, *VectorVariable. The declaration an
// identifier refers to is recorded by the type checker, not on the node.
type Identifier interface {
	Node
	Name() string
	identNode()
}

type Variable struct {
	node
	ID string
}

// VectorVariable selects a single component (0..3 = x, y, z, w) of a vector.
type VectorVariable struct {
	node
	ID    string
	Index int
}

func (v *Variable) Name() string       { return v.ID }
func (v *VectorVariable) Name() string { return v.ID }
func (*Variable) identNode()           {}
func (*VectorVariable) identNode()     {}

// --- Node Constructors ---

func NewScope(span token.Span, decls []*Declaration, stmts []Stmt) *Scope {
	return &Scope{node: node{span}, Decls: decls, Stmts: stmts}
}

func NewDeclaration(span token.Span, name string, nameSpan token.Span, typ Type, init Expr, isConst bool) *Declaration {
	return &Declaration{node: node{span}, Name: name, NameSpan: nameSpan, Type: typ, Init: init, IsConst: isConst}
}

func NewAssign(span token.Span, target Identifier, value Expr) *AssignStmt {
	return &AssignStmt{node: node{span}, Target: target, Value: value}
}

func NewIf(span token.Span, cond Expr, then, els Stmt) *IfStmt {
	return &IfStmt{node: node{span}, Cond: cond, Then: then, Else: els}
}

func NewNestedScope(scope *Scope) *NestedScope {
	return &NestedScope{node: node{scope.Span()}, Scope: scope}
}

func NewEmpty(span token.Span) *EmptyStmt { return &EmptyStmt{node: node{span}} }

func NewIntLit(span token.Span, value int64) *IntLit {
	return &IntLit{node: node{span}, Value: value}
}

func NewBoolLit(span token.Span, value bool) *BoolLit {
	return &BoolLit{node: node{span}, Value: value}
}

func NewFloatLit(span token.Span, value float64) *FloatLit {
	return &FloatLit{node: node{span}, Value: value}
}

func NewVariableExpr(ident Identifier) *VariableExpr {
	return &VariableExpr{node: node{ident.Span()}, Ident: ident}
}

func NewCall(span token.Span, name string, nameSpan token.Span, args []Expr) *CallExpr {
	return &CallExpr{node: node{span}, Func: name, FuncSpan: nameSpan, Args: args}
}

func NewConstructor(span token.Span, typ Type, args []Expr) *ConstructorExpr {
	return &ConstructorExpr{node: node{span}, Type: typ, Args: args}
}

func NewUnary(span token.Span, op token.Type, x Expr) *UnaryExpr {
	return &UnaryExpr{node: node{span}, Op: op, X: x}
}

func NewBinary(opTok token.Token, op token.Type, x, y Expr) *BinaryExpr {
	return &BinaryExpr{node: node{token.Join(x.Span(), y.Span())}, Op: op, OpPos: opTok.Span(), X: x, Y: y}
}

func NewVariable(span token.Span, name string) *Variable {
	return &Variable{node: node{span}, ID: name}
}

func NewVectorVariable(span token.Span, name string, index int) *VectorVariable {
	return &VectorVariable{node: node{span}, ID: name, Index: index}
}

// IsLiteral reports whether e is an int, bool or float literal.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *IntLit, *BoolLit, *FloatLit:
		return true
	}
	return false
}
