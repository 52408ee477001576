package typeChecker

import (
	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/symbol"
)

// resolver links every identifier to its declaration.
type resolver struct {
	table *symbol.Table
	info  *Info
	diags *diag.List
}

func (r *resolver) scope(s *ast.Scope) {
	r.table.EnterScope()
	for _, d := range s.Decls {
		r.declaration(d)
	}
	for _, st := range s.Stmts {
		r.stmt(st)
	}
	r.table.ExitScope()
}

func (r *resolver) declaration(d *ast.Declaration) {
	// The initializer is resolved before the name is registered, so a
	// declaration never sees itself.
	if d.Init != nil {
		r.expr(d.Init)
	}
	if !d.Predefined {
		if outer := r.table.LookupOuter(d.Name); outer != nil {
			r.diags.Warnf(config.WarnShadow, d.NameSpan, "Declaration of '%s' shadows a declaration in an enclosing scope", d.Name)
		}
	}
	if existing := r.table.Declare(d); existing != nil {
		r.diags.Errorf(diag.Redeclaration, d.NameSpan, "Redeclaration of symbol '%s' (already declared with type '%s')", d.Name, existing.Type)
		return
	}
	r.info.Decls = append(r.info.Decls, d)
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		r.ident(s.Target)
		r.expr(s.Value)
	case *ast.IfStmt:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.NestedScope:
		r.scope(s.Scope)
	case *ast.EmptyStmt:
	}
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.FloatLit:
	case *ast.VariableExpr:
		r.ident(e.Ident)
	case *ast.CallExpr:
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.ConstructorExpr:
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.UnaryExpr:
		r.expr(e.X)
	case *ast.BinaryExpr:
		r.expr(e.X)
		r.expr(e.Y)
	}
}

func (r *resolver) ident(id ast.Identifier) {
	decl := r.table.Lookup(id.Name())
	if decl == nil {
		r.diags.Errorf(diag.MissingDecl, id.Span(), "Missing declaration for symbol '%s'", id.Name())
		return
	}
	r.info.Uses[id] = decl
}
