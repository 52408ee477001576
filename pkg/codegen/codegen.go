// Package codegen lowers a checked shader tree into ARB fragment-program
// instructions.
package codegen

import (
	"fmt"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/builtins"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/ir"
	"github.com/xplshn/arbc/pkg/typeChecker"
)

// ZeroVector is the PARAM every program declares first. Uninitialised
// variables are cleared from it.
const ZeroVector = "__zero__vector__"

// Context carries the state of one generation run. The tree and the checker's
// Info are only read; register assignments live in side tables here.
type Context struct {
	prog      *ir.Program
	info      *typeChecker.Info
	cfg       *config.Config
	diags     *diag.List
	tempCount int
	names     map[*ast.Declaration]string
	used      map[string]bool
	regs      map[ast.Expr]ir.Value
}

// NewContext prepares a generator. diags receives the code generator's
// warnings only; a tree reaching the generator must be free of errors.
func NewContext(cfg *config.Config, info *typeChecker.Info, diags *diag.List) *Context {
	return &Context{
		prog:  &ir.Program{},
		info:  info,
		cfg:   cfg,
		diags: diags,
		names: make(map[*ast.Declaration]string),
		used:  map[string]bool{ZeroVector: true},
		regs:  make(map[ast.Expr]ir.Value),
	}
}

// GenerateIR emits the zero-vector PARAM followed by the code of root.
// Contract violations (an identifier without a declaration, an expression
// without a value) panic.
func (ctx *Context) GenerateIR(root *ast.Scope) *ir.Program {
	zero := &ir.Tuple{Values: []float64{0, 0, 0, 0}}
	ctx.prog.Emit(ir.OpParam, &ir.Register{Name: ZeroVector}, zero)
	ctx.codegenScope(root)
	ctx.prog.TempCount = ctx.tempCount
	return ctx.prog
}

// Value returns the operand recorded for e during generation, or nil if e was
// never generated (for example because it sat in an eliminated branch).
func (ctx *Context) Value(e ast.Expr) ir.Value { return ctx.regs[e] }

// RegisterName returns the register allocated for a user declaration.
func (ctx *Context) RegisterName(d *ast.Declaration) (string, bool) {
	name, ok := ctx.names[d]
	return name, ok
}

func (ctx *Context) newTemp() *ir.Register {
	ctx.tempCount++
	t := &ir.Register{Name: fmt.Sprintf("temp%d", ctx.tempCount)}
	ctx.used[t.Name] = true
	ctx.prog.Emit(ir.OpTemp, t)
	return t
}

// allocName picks "__name__", or "__name_N__" when an outer declaration of the
// same name already owns the plain form.
func (ctx *Context) allocName(d *ast.Declaration) string {
	if _, ok := ctx.names[d]; ok {
		panic(fmt.Sprintf("codegen: declaration '%s' generated twice", d.Name))
	}
	name := "__" + d.Name + "__"
	for n := 1; ctx.used[name]; n++ {
		name = fmt.Sprintf("__%s_%d__", d.Name, n)
	}
	ctx.used[name] = true
	ctx.names[d] = name
	return name
}

func (ctx *Context) declRegister(d *ast.Declaration) *ir.Register {
	if d.Predefined {
		res, ok := builtins.Resource(d.Name)
		if !ok {
			panic(fmt.Sprintf("codegen: predefined variable '%s' has no resource", d.Name))
		}
		return &ir.Register{Name: res}
	}
	name, ok := ctx.names[d]
	if !ok {
		panic(fmt.Sprintf("codegen: no register allocated for '%s'", d.Name))
	}
	return &ir.Register{Name: name}
}

func (ctx *Context) codegenScope(s *ast.Scope) {
	for _, d := range s.Decls {
		ctx.codegenDecl(d)
	}
	for _, st := range s.Stmts {
		ctx.codegenStmt(st)
	}
}

func (ctx *Context) codegenDecl(d *ast.Declaration) {
	if d.Predefined {
		return
	}

	if d.IsConst {
		if d.Init == nil {
			panic(fmt.Sprintf("codegen: const '%s' without initializer", d.Name))
		}
		val := ctx.codegenExpr(d.Init)
		reg := &ir.Register{Name: ctx.allocName(d)}
		if _, ok := val.(*ir.Component); ok {
			// PARAM bindings cannot select a component
			ctx.prog.Emit(ir.OpTemp, reg)
			ctx.prog.Emit(ir.OpMov, reg, val)
			return
		}
		ctx.prog.Emit(ir.OpParam, reg, val)
		return
	}

	var src ir.Value
	if d.Init != nil {
		src = ctx.codegenExpr(d.Init)
	}
	reg := &ir.Register{Name: ctx.allocName(d)}
	ctx.prog.Emit(ir.OpTemp, reg)
	switch {
	case src != nil:
		ctx.prog.Emit(ir.OpMov, reg, src)
	case ctx.cfg.IsFeatureEnabled(config.FeatZeroInit):
		ctx.prog.Emit(ir.OpMov, reg, &ir.Register{Name: ZeroVector})
	}
}

func (ctx *Context) codegenStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		ctx.codegenAssign(s)
	case *ast.IfStmt:
		ctx.codegenIf(s)
	case *ast.NestedScope:
		ctx.codegenScope(s.Scope)
	case *ast.EmptyStmt:
	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T", s))
	}
}

func (ctx *Context) codegenExpr(e ast.Expr) ir.Value {
	var v ir.Value
	switch e := e.(type) {
	case *ast.IntLit:
		v = &ir.Const{Value: float64(e.Value)}
	case *ast.FloatLit:
		v = &ir.Const{Value: e.Value}
	case *ast.BoolLit:
		v = boolConst(e.Value)
	case *ast.VariableExpr:
		v = ctx.codegenIdent(e.Ident)
	case *ast.CallExpr:
		v = ctx.codegenFuncCall(e)
	case *ast.ConstructorExpr:
		v = ctx.codegenConstructor(e)
	case *ast.UnaryExpr:
		v = ctx.codegenUnaryOp(e)
	case *ast.BinaryExpr:
		v = ctx.codegenBinaryOp(e)
	default:
		panic(fmt.Sprintf("codegen: unexpected expression %T", e))
	}
	if v == nil {
		panic(fmt.Sprintf("codegen: expression at %v produced no value", e.Span()))
	}
	ctx.regs[e] = v
	return v
}

func boolConst(b bool) *ir.Const {
	if b {
		return &ir.Const{Value: 1}
	}
	return &ir.Const{Value: 0}
}
