package typeChecker

import (
	"strings"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/token"
)

// inferrer computes expression types bottom-up and enforces qualifier rules.
// A child that could not be typed yields ast.Invalid, and every rule that
// would consume it is skipped so one mistake produces one diagnostic.
type inferrer struct {
	info    *Info
	diags   *diag.List
	ifDepth int
	reads   map[*ast.Declaration]int
}

func (c *inferrer) scope(s *ast.Scope) {
	for _, d := range s.Decls {
		c.declaration(d)
	}
	for _, st := range s.Stmts {
		c.stmt(st)
	}
}

func (c *inferrer) declaration(d *ast.Declaration) {
	if d.Init == nil {
		if d.IsConst && !d.Predefined {
			c.diags.Errorf(diag.ConstInit, d.NameSpan, "Const declaration '%s' requires an initializer", d.Name)
		}
		return
	}

	t := c.expr(d.Init)
	if d.IsConst && !c.isConstInit(d.Init) {
		c.diags.Errorf(diag.ConstInit, d.Init.Span(), "Initializer of const '%s' must be a literal, a constructor of literals or a uniform variable", d.Name)
	}
	if t.IsValid() && t != d.Type {
		c.diags.Errorf(diag.TypeMismatch, d.Init.Span(), "Cannot initialize '%s' of type '%s' with a value of type '%s'", d.Name, d.Type, t)
	}
}

// isConstInit reports whether e can be folded into a PARAM binding.
// Unresolved variables are accepted; they were already reported.
func (c *inferrer) isConstInit(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.FloatLit:
		return true
	case *ast.UnaryExpr:
		return e.Op == token.Minus && isNumericLit(e.X)
	case *ast.ConstructorExpr:
		for _, a := range e.Args {
			if !ast.IsLiteral(a) && !isNegLit(a) {
				return false
			}
		}
		return true
	case *ast.VariableExpr:
		// a whole uniform or one of its components
		decl := c.info.Uses[e.Ident]
		return decl == nil || (decl.IsConst && decl.IsReadOnly)
	}
	return false
}

func isNumericLit(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IntLit, *ast.FloatLit:
		return true
	}
	return false
}

func isNegLit(e ast.Expr) bool {
	u, ok := e.(*ast.UnaryExpr)
	return ok && u.Op == token.Minus && isNumericLit(u.X)
}

func (c *inferrer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		c.assign(s)
	case *ast.IfStmt:
		ct := c.expr(s.Cond)
		if ct.IsValid() && ct != ast.TypeBool {
			c.diags.Errorf(diag.Condition, s.Cond.Span(), "Condition has to be of type 'bool', found '%s'", ct)
		}
		c.ifDepth++
		c.stmt(s.Then)
		if s.Else != nil {
			c.stmt(s.Else)
		}
		c.ifDepth--
	case *ast.NestedScope:
		c.scope(s.Scope)
	case *ast.EmptyStmt:
	default:
		panic("typeChecker: unexpected statement")
	}
}

func (c *inferrer) assign(s *ast.AssignStmt) {
	lt := c.ident(s.Target)
	rt := c.expr(s.Value)

	if decl := c.info.Uses[s.Target]; decl != nil {
		switch {
		case decl.IsConst:
			c.diags.Errorf(diag.Qualifier, s.Target.Span(), "Cannot assign to const variable '%s'", decl.Name)
		case decl.IsReadOnly:
			c.diags.Errorf(diag.Qualifier, s.Target.Span(), "Cannot assign to read-only variable '%s'", decl.Name)
		case decl.IsWriteOnly && c.ifDepth > 0:
			c.diags.Errorf(diag.Qualifier, s.Target.Span(), "Cannot assign to result variable '%s' inside an if statement", decl.Name)
		}
	}

	if lt.IsValid() && rt.IsValid() && lt != rt {
		c.diags.Errorf(diag.TypeMismatch, s.Value.Span(), "Cannot assign a value of type '%s' to '%s' of type '%s'", rt, s.Target.Name(), lt)
	}
}

// ident types a variable or a component selection. Component bounds are
// checked against the declared dimension, so index 0 of a scalar is valid.
func (c *inferrer) ident(id ast.Identifier) ast.Type {
	decl := c.info.Uses[id]
	if decl == nil {
		return ast.Invalid
	}
	var t ast.Type
	switch id := id.(type) {
	case *ast.Variable:
		t = decl.Type
	case *ast.VectorVariable:
		bound := decl.Type.Dim() - 1
		if id.Index < 0 || id.Index > bound {
			c.diags.Errorf(diag.IndexOutOfBounds, id.Span(), "Vector index out of bounds (variable '%s' of type '%s', index %d, valid range 0-%d)", id.ID, decl.Type, id.Index, bound)
			return ast.Invalid
		}
		t = decl.Type.Scalar()
	}
	c.info.setType(id, t)
	return t
}

func (c *inferrer) expr(e ast.Expr) ast.Type {
	t := c.inferExpr(e)
	c.info.setType(e, t)
	return t
}

func (c *inferrer) inferExpr(e ast.Expr) ast.Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return ast.TypeInt
	case *ast.BoolLit:
		return ast.TypeBool
	case *ast.FloatLit:
		return ast.TypeFloat
	case *ast.VariableExpr:
		return c.variable(e)
	case *ast.CallExpr:
		return c.call(e)
	case *ast.ConstructorExpr:
		return c.constructor(e)
	case *ast.UnaryExpr:
		return c.unary(e)
	case *ast.BinaryExpr:
		return c.binary(e)
	}
	panic("typeChecker: unexpected expression")
}

func (c *inferrer) variable(e *ast.VariableExpr) ast.Type {
	t := c.ident(e.Ident)
	decl := c.info.Uses[e.Ident]
	if decl == nil {
		return ast.Invalid
	}
	if decl.IsWriteOnly {
		c.diags.Errorf(diag.Qualifier, e.Span(), "Cannot read result variable '%s'", decl.Name)
		return ast.Invalid
	}
	c.reads[decl]++
	return t
}

func (c *inferrer) constructor(e *ast.ConstructorExpr) ast.Type {
	argTypes := make([]ast.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = c.expr(a)
	}
	if len(e.Args) != e.Type.Dim() {
		c.diags.Errorf(diag.Constructor, e.Span(), "Constructor '%s' expects %d arguments, got %d", e.Type, e.Type.Dim(), len(e.Args))
		return ast.Invalid
	}
	ok := true
	for i, at := range argTypes {
		if at.IsValid() && at != e.Type.Scalar() {
			c.diags.Errorf(diag.Constructor, e.Args[i].Span(), "Argument %d of constructor '%s' must be of type '%s', found '%s'", i+1, e.Type, e.Type.Scalar(), at)
			ok = false
		}
	}
	if !ok {
		return ast.Invalid
	}
	return e.Type
}

func (c *inferrer) call(e *ast.CallExpr) ast.Type {
	argTypes := make([]ast.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = c.expr(a)
	}
	n, known := builtinArity[e.Func]
	if !known {
		c.diags.Errorf(diag.Function, e.FuncSpan, "Unknown function '%s' (expected rsq, dp3 or lit)", e.Func)
		return ast.Invalid
	}
	if len(e.Args) != n {
		c.diags.Errorf(diag.Function, e.Span(), "Function '%s' expects %d arguments, got %d", e.Func, n, len(e.Args))
		return ast.Invalid
	}
	for _, at := range argTypes {
		if !at.IsValid() {
			return ast.Invalid
		}
	}

	switch e.Func {
	case "rsq":
		at := argTypes[0]
		if !at.IsScalar() || at.Base() == ast.BaseBool {
			c.diags.Errorf(diag.Function, e.Args[0].Span(), "Function 'rsq' expects a 'float' or 'int' argument, found '%s'", at)
			return ast.Invalid
		}
		return ast.TypeFloat
	case "dp3":
		a, b := argTypes[0], argTypes[1]
		if !isDp3Operand(a) || !isDp3Operand(b) {
			c.diags.Errorf(diag.Function, e.Span(), "Function 'dp3' expects vec3, vec4, ivec3 or ivec4 arguments, found '%s' and '%s'", a, b)
			return ast.Invalid
		}
		if a != b {
			c.diags.Errorf(diag.Function, e.Span(), "Arguments of 'dp3' must have the same type, found '%s' and '%s'", a, b)
			return ast.Invalid
		}
		return ast.TypeFloat
	default: // lit
		if argTypes[0] != ast.TypeVec4 {
			c.diags.Errorf(diag.Function, e.Args[0].Span(), "Function 'lit' expects a 'vec4' argument, found '%s'", argTypes[0])
			return ast.Invalid
		}
		return ast.TypeVec4
	}
}

var builtinArity = map[string]int{"rsq": 1, "dp3": 2, "lit": 1}

func isDp3Operand(t ast.Type) bool {
	return (t.Dim() == 3 || t.Dim() == 4) && (t.Base() == ast.BaseFloat || t.Base() == ast.BaseInt)
}

func (c *inferrer) unary(e *ast.UnaryExpr) ast.Type {
	xt := c.expr(e.X)
	if !xt.IsValid() {
		return ast.Invalid
	}
	switch e.Op {
	case token.Not:
		if xt.Base() != ast.BaseBool {
			c.diags.Errorf(diag.Operator, e.Span(), "Operator '!' requires a boolean operand, found '%s'", xt)
			return ast.Invalid
		}
	case token.Minus:
		if xt.Base() == ast.BaseBool {
			c.diags.Errorf(diag.Operator, e.Span(), "Operator '-' requires an arithmetic operand, found '%s'", xt)
			return ast.Invalid
		}
	default:
		c.diags.Errorf(diag.UnknownOperator, e.Span(), "Unknown unary operator %s", e.Op)
		return ast.Invalid
	}
	return xt
}

func (c *inferrer) binary(e *ast.BinaryExpr) ast.Type {
	lt := c.expr(e.X)
	rt := c.expr(e.Y)
	if !lt.IsValid() || !rt.IsValid() {
		return ast.Invalid
	}
	op := strings.Trim(e.Op.String(), "'")

	mismatch := func(format string) ast.Type {
		c.diags.Errorf(diag.Operator, e.OpPos, format, op, lt, rt)
		return ast.Invalid
	}

	switch e.Op {
	case token.AndAnd, token.OrOr:
		if lt.Base() != ast.BaseBool || rt.Base() != ast.BaseBool {
			return mismatch("Operator '%s' requires boolean operands, found '%s' and '%s'")
		}
		if lt.Dim() != rt.Dim() {
			return mismatch("Operator '%s' requires operands of equal dimension, found '%s' and '%s'")
		}
		return lt

	case token.Plus, token.Minus:
		if lt.Base() == ast.BaseBool || rt.Base() == ast.BaseBool || lt.Base() != rt.Base() {
			return mismatch("Operator '%s' requires arithmetic operands of the same base type, found '%s' and '%s'")
		}
		if lt.Dim() != rt.Dim() {
			return mismatch("Operator '%s' requires operands of equal dimension, found '%s' and '%s'")
		}
		return lt

	case token.Star:
		if lt.Base() == ast.BaseBool || rt.Base() == ast.BaseBool || lt.Base() != rt.Base() {
			return mismatch("Operator '%s' requires arithmetic operands of the same base type, found '%s' and '%s'")
		}
		if lt.IsVector() && rt.IsVector() && lt.Dim() != rt.Dim() {
			return mismatch("Operator '%s' requires vectors of equal dimension, found '%s' and '%s'")
		}
		if lt.IsVector() {
			return lt
		}
		return rt

	case token.Slash, token.Caret:
		if !lt.IsScalar() || !rt.IsScalar() {
			return mismatch("Operator '%s' requires scalar operands, found '%s' and '%s'")
		}
		if lt.Base() == ast.BaseBool || lt.Base() != rt.Base() {
			return mismatch("Operator '%s' requires arithmetic operands of the same base type, found '%s' and '%s'")
		}
		return lt

	case token.Lt, token.Lte, token.Gt, token.Gte:
		if !lt.IsScalar() || !rt.IsScalar() {
			return mismatch("Operator '%s' requires scalar operands, found '%s' and '%s'")
		}
		if lt.Base() == ast.BaseBool || lt.Base() != rt.Base() {
			return mismatch("Operator '%s' requires arithmetic operands of the same base type, found '%s' and '%s'")
		}
		return ast.TypeBool

	case token.EqEq, token.Neq:
		if lt.Dim() != rt.Dim() || lt.Base() != rt.Base() {
			return mismatch("Operator '%s' requires operands of the same type, found '%s' and '%s'")
		}
		return ast.TypeBool
	}

	c.diags.Errorf(diag.UnknownOperator, e.OpPos, "Unknown binary operator '%s'", op)
	return ast.Invalid
}
