package ast

import "fmt"

// Inspect traverses the tree rooted at n in depth-first source order, calling
// f for each node. If f returns false the children of that node are skipped.
// Declarations are visited before statements within a scope, and a
// declaration's initializer before the declaration's children end.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Scope:
		for _, d := range n.Decls {
			Inspect(d, f)
		}
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *Declaration:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *AssignStmt:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *NestedScope:
		Inspect(n.Scope, f)
	case *EmptyStmt, *IntLit, *BoolLit, *FloatLit, *Variable, *VectorVariable:
	case *VariableExpr:
		Inspect(n.Ident, f)
	case *CallExpr:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *ConstructorExpr:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	default:
		panic(fmt.Sprintf("ast.Inspect: unexpected node %T", n))
	}
}
