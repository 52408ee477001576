package typeChecker

import (
	"fmt"

	"github.com/xplshn/arbc/pkg/ast"
)

// Info holds everything the checker learns about a tree. Code generation
// reads it; nothing writes to it after Check returns.
type Info struct {
	// Uses maps each resolved identifier to the declaration it refers to.
	// Unresolved identifiers have no entry.
	Uses map[ast.Identifier]*ast.Declaration
	// Types records the inferred type of expressions and component
	// selections. Nodes that could not be typed have no entry.
	Types map[ast.Node]ast.Type
	// Decls lists every declaration in the order the resolver registered it.
	Decls []*ast.Declaration
}

func newInfo() *Info {
	return &Info{
		Uses:  make(map[ast.Identifier]*ast.Declaration),
		Types: make(map[ast.Node]ast.Type),
	}
}

// TypeOf returns the inferred type of n, or ast.Invalid.
func (i *Info) TypeOf(n ast.Node) ast.Type { return i.Types[n] }

// DeclOf returns the declaration id resolves to, or nil.
func (i *Info) DeclOf(id ast.Identifier) *ast.Declaration { return i.Uses[id] }

func (i *Info) setType(n ast.Node, t ast.Type) {
	if !t.IsValid() {
		return
	}
	if prev, ok := i.Types[n]; ok {
		panic(fmt.Sprintf("typeChecker: type of %T at %v set twice (%s, then %s)", n, n.Span(), prev, t))
	}
	i.Types[n] = t
}
