package typeChecker

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/builtins"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/lexer"
	"github.com/xplshn/arbc/pkg/parser"
	"github.com/xplshn/arbc/pkg/token"
)

func check(t *testing.T, src string, cfg *config.Config) (*ast.Scope, *Info, *diag.List) {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	diags := diag.NewList(cfg)
	tokens := lexer.NewLexer([]rune(src), 0, cfg, diags).Tokenize()
	root := parser.NewParser(tokens, cfg, diags).Parse()
	if diags.HasErrors() {
		t.Fatalf("unexpected syntax errors: %v", diags.Items())
	}
	if err := builtins.Inject(root); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	info := NewTypeChecker(cfg, diags).Check(root)
	return root, info, diags
}

func containsError(items []diag.Diagnostic, substring string) bool {
	for _, d := range items {
		if strings.Contains(d.Msg, substring) {
			return true
		}
	}
	return false
}

func expectErrors(t *testing.T, src string, expectedSubstrings ...string) {
	t.Helper()
	_, _, diags := check(t, src, nil)
	errs := diags.Errors()
	if len(expectedSubstrings) == 0 {
		if len(errs) != 0 {
			t.Fatalf("expected no errors, got: %v", errs)
		}
		return
	}
	if len(errs) == 0 {
		t.Fatal("expected errors, got none")
	}
	for _, sub := range expectedSubstrings {
		if !containsError(errs, sub) {
			t.Errorf("expected error containing %q, got errors: %v", sub, errs)
		}
	}
}

func TestCheck_Valid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "{ }"},
		{"attribute to result", "{ vec4 c = gl_Color; gl_FragColor = c; }"},
		{"nested shadow", "{ int a; { float a; a = 1.0; } }"},
		{"scalar index zero", "{ float f; float g = f[0]; }"},
		{"vector index", "{ vec4 v; float g = v[3]; }"},
		{"scalar times vector", "{ vec2 a; vec2 c = 2.0 * a; vec2 d = a * 2.0; }"},
		{"vector equality", "{ vec2 a; vec2 b; bool c = a == b; }"},
		{"bool vectors", "{ bvec2 a; bvec2 b; bvec2 c = a || b; }"},
		{"comparison", "{ int i; bool b = i < 3 && !(i >= 1); }"},
		{"power", "{ float f = 2.0 ^ 3.0; }"},
		{"const literals", "{ const float f = -1.0; const vec2 v = vec2(-1.0, 2.0); const bool b = true; }"},
		{"const uniform", "{ const vec4 l = gl_Light_Half; }"},
		{"const uniform component", "{ const float e = env1.x; const float s = gl_Material_Shininess[0]; }"},
		{"builtin functions", "{ float f = rsq(4.0); vec4 l = lit(gl_Color); float d = dp3(gl_Color, gl_Color); }"},
		{"rsq of int", "{ float f = rsq(4); }"},
		{"dp3 of ivec3", "{ ivec3 a; float d = dp3(a, a); }"},
		{"result outside if", "{ if (true) { } gl_FragColor = gl_Color; gl_FragDepth = true; }"},
		{"if else", "{ float f; if (f < 1.0) f = 1.0; else f = 2.0; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectErrors(t, tt.src)
		})
	}
}

func TestCheck_Resolution(t *testing.T) {
	expectErrors(t, "{ x = 1; }", "Missing declaration for symbol 'x'")
	expectErrors(t, "{ int a; float a; }", "Redeclaration of symbol 'a' (already declared with type 'int')")
	expectErrors(t, "{ vec4 gl_Color; }", "Redeclaration of symbol 'gl_Color'")
	expectErrors(t, "{ int a = a; }", "Missing declaration for symbol 'a'")
	expectErrors(t, "{ { int a; } a = 1; }", "Missing declaration for symbol 'a'")
}

func TestCheck_RedeclarationKeepsFirst(t *testing.T) {
	root, info, diags := check(t, "{ int x; float x; x = 1; }", nil)
	if n := diags.ErrorCount(); n != 1 {
		t.Fatalf("got %d errors, want exactly one: %v", n, diags.Errors())
	}
	first := root.Decls[len(builtins.Variables)]
	assign := root.Stmts[0].(*ast.AssignStmt)
	got := info.DeclOf(assign.Target)
	if got != first {
		t.Fatalf("use of x resolved to %+v, want the first declaration", got)
	}
	if got.Type != ast.TypeInt {
		t.Errorf("x resolved with type %s, want int", got.Type)
	}
}

func TestCheck_OutOfBoundsLeavesUntyped(t *testing.T) {
	root, info, diags := check(t, "{ vec2 v; float f = v[2]; }", nil)
	if n := diags.ErrorCount(); n != 1 {
		t.Fatalf("got %d errors, want only the bounds error: %v", n, diags.Errors())
	}
	init := root.Decls[len(builtins.Variables)+1].Init.(*ast.VariableExpr)
	if got := info.TypeOf(init.Ident); got != ast.Invalid {
		t.Errorf("component selection typed %s, want unresolved", got)
	}
	if got := info.TypeOf(init); got != ast.Invalid {
		t.Errorf("variable expression typed %s, want unresolved", got)
	}
}

func TestCheck_Bounds(t *testing.T) {
	expectErrors(t, "{ vec2 v; float f = v[2]; }", "Vector index out of bounds", "valid range 0-1")
	expectErrors(t, "{ float f; float g = f[1]; }", "index 1, valid range 0-0")
	expectErrors(t, "{ vec3 v; v[3] = 1.0; }", "Vector index out of bounds")
}

func TestCheck_Constructors(t *testing.T) {
	expectErrors(t, "{ vec3 v = vec3(1.0, 2.0); }", "Constructor 'vec3' expects 3 arguments, got 2")
	expectErrors(t, "{ vec2 v = vec2(1, 2.0); }", "Argument 1 of constructor 'vec2' must be of type 'float', found 'int'")
	expectErrors(t, "{ ivec2 v = ivec2(1, 2, 3); }", "expects 2 arguments, got 3")
}

func TestCheck_Initializers(t *testing.T) {
	expectErrors(t, "{ int i = 1.0; }", "Cannot initialize 'i' of type 'int' with a value of type 'float'")
	expectErrors(t, "{ const int i; }", "Const declaration 'i' requires an initializer")
	expectErrors(t, "{ int a = 1; const int b = a; }", "Initializer of const 'b'")
	expectErrors(t, "{ const vec4 c = gl_Color; }", "Initializer of const 'c'")
	expectErrors(t, "{ const float f = 1.0 + 2.0; }", "Initializer of const 'f'")
}

func TestCheck_Qualifiers(t *testing.T) {
	expectErrors(t, "{ const int a = 1; a = 1; }", "Cannot assign to const variable 'a'")
	expectErrors(t, "{ const int a = 1; a = 1.0; }", "Cannot assign to const variable 'a'")
	expectErrors(t, "{ env1 = vec4(1.0, 1.0, 1.0, 1.0); }", "Cannot assign to const variable 'env1'")
	expectErrors(t, "{ gl_Color = gl_Color; }", "Cannot assign to read-only variable 'gl_Color'")
	expectErrors(t, "{ vec4 c = gl_FragColor; }", "Cannot read result variable 'gl_FragColor'")
	expectErrors(t, "{ if (true) gl_FragColor = gl_Color; }", "Cannot assign to result variable 'gl_FragColor' inside an if statement")
	expectErrors(t, "{ if (true) { } else { gl_FragDepth = false; } }", "inside an if statement")
}

func TestCheck_Conditions(t *testing.T) {
	expectErrors(t, "{ if (1) ; }", "Condition has to be of type 'bool', found 'int'")
	expectErrors(t, "{ bvec2 b; if (b) ; }", "found 'bvec2'")
}

func TestCheck_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bool addition", "{ bool b = true + false; }", "Operator '+' requires arithmetic operands"},
		{"dimension mismatch", "{ vec2 a; vec3 b; vec2 c = a + b; }", "Operator '+' requires operands of equal dimension"},
		{"vector product", "{ vec2 a; vec3 b; vec2 c = a * b; }", "Operator '*' requires vectors of equal dimension"},
		{"vector division", "{ vec2 a; float f = a / 2.0; }", "Operator '/' requires scalar operands"},
		{"vector power", "{ vec2 a; float f = a ^ 2.0; }", "Operator '^' requires scalar operands"},
		{"mixed comparison", "{ float a; bool b = a < 1; }", "Operator '<' requires arithmetic operands of the same base type"},
		{"vector comparison", "{ vec2 a; bool b = a >= a; }", "Operator '>=' requires scalar operands"},
		{"logical int", "{ int i; bool b = i && true; }", "Operator '&&' requires boolean operands"},
		{"logical dims", "{ bvec2 a; bool b; bvec2 c = a && b; }", "Operator '&&' requires operands of equal dimension"},
		{"equality types", "{ int i; float f; bool b = i == f; }", "Operator '==' requires operands of the same type"},
		{"not int", "{ int i; bool b = !i; }", "Operator '!' requires a boolean operand, found 'int'"},
		{"negate bool", "{ bool b = -true; }", "Operator '-' requires an arithmetic operand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectErrors(t, tt.src, tt.want)
		})
	}
}

func TestCheck_Functions(t *testing.T) {
	expectErrors(t, "{ float f = rsq(gl_Color); }", "Function 'rsq' expects a 'float' or 'int' argument, found 'vec4'")
	expectErrors(t, "{ float f = rsq(1.0, 2.0); }", "Function 'rsq' expects 1 arguments, got 2")
	expectErrors(t, "{ float d = dp3(gl_Color, vec3(1.0, 1.0, 1.0)); }", "Arguments of 'dp3' must have the same type")
	expectErrors(t, "{ vec2 a; float d = dp3(a, a); }", "Function 'dp3' expects vec3, vec4, ivec3 or ivec4 arguments")
	expectErrors(t, "{ vec4 l = lit(vec3(1.0, 1.0, 1.0)); }", "Function 'lit' expects a 'vec4' argument, found 'vec3'")
	expectErrors(t, "{ float f = sin(1.0); }", "Unknown function 'sin'")
}

func TestCheck_UnresolvedDoesNotCascade(t *testing.T) {
	tests := []string{
		"{ float f = x + 1.0; }",
		"{ vec4 v = vec4(x, 1.0, 1.0, 1.0); }",
		"{ bool b = !(x < 1.0); if (x) ; }",
		"{ float f = rsq(x); vec4 l = lit(x); }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, _, diags := check(t, src, nil)
			for _, d := range diags.Errors() {
				if d.Kind != diag.MissingDecl {
					t.Errorf("unexpected follow-on error: %v", d)
				}
			}
			if diags.ErrorCount() == 0 {
				t.Fatal("expected a missing declaration error")
			}
		})
	}
}

func TestInfo_Types(t *testing.T) {
	root, info, diags := check(t, "{ vec4 c = gl_Color * 2.0; float x = c[1]; bool b = x < 1.0; }", nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	user := root.Decls[len(builtins.Variables):]
	var got []string
	for _, d := range user {
		got = append(got, info.TypeOf(d.Init).String())
	}
	want := []string{"vec4", "float", "bool"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("initializer types mismatch (-want +got):\n%s", diff)
	}

	mul := user[0].Init.(*ast.BinaryExpr)
	ref := mul.X.(*ast.VariableExpr)
	decl := info.DeclOf(ref.Ident)
	if decl == nil || decl.Name != "gl_Color" || !decl.Predefined {
		t.Errorf("gl_Color resolved to %+v", decl)
	}
	if got := info.TypeOf(mul.Y); got != ast.TypeFloat {
		t.Errorf("literal type = %s, want float", got)
	}
}

func TestInfo_ShadowResolvesInnermost(t *testing.T) {
	root, info, _ := check(t, "{ int a; { float a; a = 1.0; } }", nil)
	outer := root.Decls[len(builtins.Variables)]
	inner := root.Stmts[0].(*ast.NestedScope).Scope
	assign := inner.Stmts[0].(*ast.AssignStmt)
	if got := info.DeclOf(assign.Target); got != inner.Decls[0] || got == outer {
		t.Errorf("assignment resolved to %+v, want inner declaration", got)
	}
}

func TestInfo_SetTypeTwicePanics(t *testing.T) {
	info := newInfo()
	lit := ast.NewIntLit(token.Span{}, 1)
	info.setType(lit, ast.TypeInt)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on second setType")
		}
	}()
	info.setType(lit, ast.TypeInt)
}

func TestCheck_Warnings(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnShadow, true)
	cfg.SetWarning(config.WarnUnused, true)
	_, _, diags := check(t, "{ int a; int b = 1; { float a = 1.0; gl_FragColor = vec4(a, a, a, a); } b = a; }", cfg)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	var got []string
	for _, d := range diags.Items() {
		got = append(got, d.Flag+": "+d.Msg)
	}
	want := []string{
		"shadow: Declaration of 'a' shadows a declaration in an enclosing scope",
		"unused: Variable 'b' is declared but never read",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}
