// Package symbol implements a lexically scoped name → declaration table.
package symbol

import "github.com/xplshn/arbc/pkg/ast"

// Table is a stack of scopes; the innermost scope is the last element. The
// table never owns the declarations it maps to.
type Table struct {
	scopes []map[string]*ast.Declaration
}

func NewTable() *Table { return &Table{} }

func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, make(map[string]*ast.Declaration))
}

// ExitScope pops the innermost scope. Exiting more scopes than were entered is
// a traversal bug and panics.
func (t *Table) ExitScope() {
	if len(t.scopes) == 0 {
		panic("symbol: ExitScope without matching EnterScope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth is the number of open scopes.
func (t *Table) Depth() int { return len(t.scopes) }

// Declare inserts decl into the innermost scope. If that scope already holds
// the name, the existing declaration is returned and decl is not inserted.
// Outer scopes are not consulted, so shadowing is allowed.
func (t *Table) Declare(decl *ast.Declaration) *ast.Declaration {
	if len(t.scopes) == 0 {
		panic("symbol: Declare outside of any scope")
	}
	current := t.scopes[len(t.scopes)-1]
	if existing, ok := current[decl.Name]; ok {
		return existing
	}
	current[decl.Name] = decl
	return nil
}

// Lookup searches from the innermost scope outwards.
func (t *Table) Lookup(name string) *ast.Declaration {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if decl, ok := t.scopes[i][name]; ok {
			return decl
		}
	}
	return nil
}

// LookupOuter is Lookup restricted to the scopes enclosing the innermost one.
func (t *Table) LookupOuter(name string) *ast.Declaration {
	for i := len(t.scopes) - 2; i >= 0; i-- {
		if decl, ok := t.scopes[i][name]; ok {
			return decl
		}
	}
	return nil
}
