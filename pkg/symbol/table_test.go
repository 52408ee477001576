package symbol

import (
	"testing"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/token"
)

func decl(name string, typ ast.Type) *ast.Declaration {
	return ast.NewDeclaration(token.Span{}, name, token.Span{}, typ, nil, false)
}

func TestTable_Shadowing(t *testing.T) {
	tab := NewTable()
	tab.EnterScope()
	outer := decl("a", ast.TypeInt)
	if prev := tab.Declare(outer); prev != nil {
		t.Fatalf("first Declare returned %v, want nil", prev)
	}

	tab.EnterScope()
	if tab.Lookup("a") != outer {
		t.Error("inner scope should see the outer declaration")
	}
	inner := decl("a", ast.TypeVec4)
	if prev := tab.Declare(inner); prev != nil {
		t.Fatalf("shadowing Declare returned %v, want nil", prev)
	}
	if tab.Lookup("a") != inner {
		t.Error("Lookup should find the innermost declaration")
	}
	if tab.LookupOuter("a") != outer {
		t.Error("LookupOuter should skip the innermost scope")
	}
	if tab.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", tab.Depth())
	}

	tab.ExitScope()
	if tab.Lookup("a") != outer {
		t.Error("outer declaration should be visible again after ExitScope")
	}
	tab.ExitScope()
	if tab.Lookup("a") != nil {
		t.Error("Lookup on an empty table should return nil")
	}
}

func TestTable_Redeclaration(t *testing.T) {
	tab := NewTable()
	tab.EnterScope()
	first := decl("x", ast.TypeFloat)
	tab.Declare(first)
	if prev := tab.Declare(decl("x", ast.TypeBool)); prev != first {
		t.Errorf("Declare returned %v, want the first declaration", prev)
	}
	if tab.Lookup("x") != first {
		t.Error("a rejected redeclaration must not replace the original")
	}
	if tab.LookupOuter("x") != nil {
		t.Error("LookupOuter with a single scope should return nil")
	}
}

func TestTable_Misuse(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Table)
	}{
		{"exit without enter", func(tab *Table) { tab.ExitScope() }},
		{"declare without scope", func(tab *Table) { tab.Declare(decl("a", ast.TypeInt)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			tt.fn(NewTable())
		})
	}
}
