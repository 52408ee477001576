package codegen

import (
	"fmt"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/ir"
	"github.com/xplshn/arbc/pkg/token"
)

func (ctx *Context) codegenIdent(id ast.Identifier) ir.Value {
	decl := ctx.info.DeclOf(id)
	if decl == nil {
		panic(fmt.Sprintf("codegen: identifier '%s' at %v is unresolved", id.Name(), id.Span()))
	}
	reg := ctx.declRegister(decl)
	if vv, ok := id.(*ast.VectorVariable); ok {
		return &ir.Component{Reg: reg, Index: vv.Index}
	}
	return reg
}

// scalar narrows a register operand to its x component for instructions that
// take a scalar source.
func scalar(v ir.Value) ir.Value {
	if r, ok := v.(*ir.Register); ok {
		return &ir.Component{Reg: r, Index: 0}
	}
	return v
}

func (ctx *Context) codegenAssign(s *ast.AssignStmt) {
	src := ctx.codegenExpr(s.Value)
	dst := ctx.codegenIdent(s.Target)
	ctx.prog.Emit(ir.OpMov, dst, src)
}

// codegenIf drops the untaken branch of a literal condition. Any other
// condition is evaluated and both branches are emitted, since the generated
// program has no conditional instructions.
func (ctx *Context) codegenIf(s *ast.IfStmt) {
	if lit, ok := s.Cond.(*ast.BoolLit); ok && ctx.cfg.IsFeatureEnabled(config.FeatDCE) {
		taken, dead := s.Then, s.Else
		if !lit.Value {
			taken, dead = s.Else, s.Then
		}
		if dead != nil && emitsCode(dead) {
			ctx.diags.Warnf(config.WarnDeadBranch, dead.Span(), "Branch is never taken and was removed")
		}
		if taken != nil {
			ctx.codegenStmt(taken)
		}
		return
	}

	ctx.codegenExpr(s.Cond)
	ctx.diags.Warnf(config.WarnUnpredicatedBranch, s.Cond.Span(), "Condition is not a compile-time constant; both branches are emitted unconditionally")
	ctx.codegenStmt(s.Then)
	if s.Else != nil {
		ctx.codegenStmt(s.Else)
	}
}

// emitsCode reports whether s holds any declaration or assignment.
func emitsCode(s ast.Stmt) bool {
	found := false
	ast.Inspect(s, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Declaration, *ast.AssignStmt:
			found = true
		}
		return !found
	})
	return found
}

func (ctx *Context) codegenConstructor(e *ast.ConstructorExpr) ir.Value {
	args := make([]ir.Value, len(e.Args))
	literal := true
	for i, a := range e.Args {
		args[i] = ctx.codegenExpr(a)
		if _, ok := args[i].(*ir.Const); !ok {
			literal = false
		}
	}
	if literal {
		values := make([]float64, len(args))
		for i, a := range args {
			values[i] = a.(*ir.Const).Value
		}
		return &ir.Tuple{Values: values}
	}

	res := ctx.newTemp()
	for i, a := range args {
		ctx.prog.Emit(ir.OpMov, &ir.Component{Reg: res, Index: i}, scalar(a))
	}
	return res
}

func (ctx *Context) codegenFuncCall(e *ast.CallExpr) ir.Value {
	args := make([]ir.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = ctx.codegenExpr(a)
	}
	res := ctx.newTemp()
	switch e.Func {
	case "rsq":
		ctx.prog.Emit(ir.OpRsq, res, scalar(args[0]))
	case "dp3":
		ctx.prog.Emit(ir.OpDp3, res, args[0], args[1])
	case "lit":
		ctx.prog.Emit(ir.OpLit, res, args[0])
	default:
		panic(fmt.Sprintf("codegen: unknown function '%s'", e.Func))
	}
	return res
}

func (ctx *Context) codegenUnaryOp(e *ast.UnaryExpr) ir.Value {
	x := ctx.codegenExpr(e.X)
	switch e.Op {
	case token.Minus:
		if c, ok := x.(*ir.Const); ok {
			return &ir.Const{Value: -c.Value}
		}
		res := ctx.newTemp()
		ctx.prog.Emit(ir.OpMov, res, &ir.Neg{Value: x})
		return res
	case token.Not:
		res := ctx.newTemp()
		ctx.prog.Emit(ir.OpSub, res, &ir.Const{Value: 1}, x)
		return res
	}
	panic(fmt.Sprintf("codegen: unknown unary operator %s", e.Op))
}

var simpleBinaryOps = map[token.Type]ir.Op{
	token.Star:   ir.OpMul,
	token.Plus:   ir.OpAdd,
	token.Minus:  ir.OpSub,
	token.Lt:     ir.OpSlt,
	token.Gte:    ir.OpSge,
	token.AndAnd: ir.OpMin,
	token.OrOr:   ir.OpMax,
}

func (ctx *Context) codegenBinaryOp(e *ast.BinaryExpr) ir.Value {
	x := ctx.codegenExpr(e.X)
	y := ctx.codegenExpr(e.Y)
	res := ctx.newTemp()

	if op, ok := simpleBinaryOps[e.Op]; ok {
		ctx.prog.Emit(op, res, x, y)
		return res
	}

	switch e.Op {
	case token.Gt:
		ctx.prog.Emit(ir.OpSlt, res, y, x)
	case token.Lte:
		ctx.prog.Emit(ir.OpSge, res, y, x)
	case token.Caret:
		ctx.prog.Emit(ir.OpPow, res, scalar(x), scalar(y))
	case token.Slash:
		recip := ctx.newTemp()
		ctx.prog.Emit(ir.OpRcp, recip, scalar(y))
		ctx.prog.Emit(ir.OpMul, res, x, recip)
		if ctx.info.TypeOf(e).Base() == ast.BaseInt {
			ctx.truncate(res)
		}
	case token.EqEq:
		// a == b  <=>  a >= b and b >= a
		other := ctx.newTemp()
		ctx.prog.Emit(ir.OpSge, res, x, y)
		ctx.prog.Emit(ir.OpSge, other, y, x)
		ctx.prog.Emit(ir.OpMul, res, res, other)
		ctx.foldComponents(ir.OpMin, res, ctx.info.TypeOf(e.X).Dim())
	case token.Neq:
		other := ctx.newTemp()
		ctx.prog.Emit(ir.OpSlt, res, x, y)
		ctx.prog.Emit(ir.OpSlt, other, y, x)
		ctx.prog.Emit(ir.OpMax, res, res, other)
		ctx.foldComponents(ir.OpMax, res, ctx.info.TypeOf(e.X).Dim())
	default:
		panic(fmt.Sprintf("codegen: unknown binary operator %s", e.Op))
	}
	return res
}

// truncate rounds r toward zero. FLR rounds toward negative infinity, so the
// magnitude is floored and the sign restored with CMP.
func (ctx *Context) truncate(r *ir.Register) {
	mag := ctx.newTemp()
	ctx.prog.Emit(ir.OpAbs, mag, r)
	ctx.prog.Emit(ir.OpFlr, mag, mag)
	ctx.prog.Emit(ir.OpCmp, r, r, &ir.Neg{Value: mag}, mag)
}

// foldComponents combines the first dim components of a per-component
// comparison into x with op and broadcasts it: MIN yields "all equal", MAX
// "any differs".
func (ctx *Context) foldComponents(op ir.Op, r *ir.Register, dim int) {
	if dim < 2 {
		return
	}
	x := &ir.Component{Reg: r, Index: 0}
	for i := 1; i < dim; i++ {
		ctx.prog.Emit(op, x, x, &ir.Component{Reg: r, Index: i})
	}
	ctx.prog.Emit(ir.OpMov, r, x)
}
