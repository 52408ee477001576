package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/token"
)

type tok struct {
	Type  token.Type
	Value string
}

func lex(t *testing.T, src string, cfg *config.Config) ([]tok, *diag.List) {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	diags := diag.NewList(cfg)
	var out []tok
	for _, tk := range NewLexer([]rune(src), 0, cfg, diags).Tokenize() {
		out = append(out, tok{tk.Type, tk.Value})
	}
	return out, diags
}

func TestTokenize(t *testing.T) {
	got, diags := lex(t, "{ const vec4 c = vec4(1.5, .5, 2, 1e3); if (a <= b && !c || d != e) x[1] = -y.z ^ 2; else ; }", nil)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	want := []tok{
		{token.LBrace, ""}, {token.Const, ""}, {token.TypeName, "vec4"}, {token.Ident, "c"}, {token.Eq, ""},
		{token.TypeName, "vec4"}, {token.LParen, ""}, {token.FloatNumber, "1.5"}, {token.Comma, ""},
		{token.FloatNumber, ".5"}, {token.Comma, ""}, {token.IntNumber, "2"}, {token.Comma, ""},
		{token.FloatNumber, "1e3"}, {token.RParen, ""}, {token.Semi, ""},
		{token.If, ""}, {token.LParen, ""}, {token.Ident, "a"}, {token.Lte, ""}, {token.Ident, "b"},
		{token.AndAnd, ""}, {token.Not, ""}, {token.Ident, "c"}, {token.OrOr, ""}, {token.Ident, "d"},
		{token.Neq, ""}, {token.Ident, "e"}, {token.RParen, ""},
		{token.Ident, "x"}, {token.LBracket, ""}, {token.IntNumber, "1"}, {token.RBracket, ""}, {token.Eq, ""},
		{token.Minus, ""}, {token.Ident, "y"}, {token.Dot, ""}, {token.Ident, "z"}, {token.Caret, ""},
		{token.IntNumber, "2"}, {token.Semi, ""}, {token.Else, ""}, {token.Semi, ""},
		{token.RBrace, ""}, {token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_Keywords(t *testing.T) {
	got, _ := lex(t, "true false int ivec3 bool bvec2 float vec3 constant iff", nil)
	want := []tok{
		{token.True, ""}, {token.False, ""},
		{token.TypeName, "int"}, {token.TypeName, "ivec3"}, {token.TypeName, "bool"},
		{token.TypeName, "bvec2"}, {token.TypeName, "float"}, {token.TypeName, "vec3"},
		{token.Ident, "constant"}, {token.Ident, "iff"}, {token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_Comments(t *testing.T) {
	got, diags := lex(t, "a /* block\n comment */ b // line\n c", nil)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	want := []tok{{token.Ident, "a"}, {token.Ident, "b"}, {token.Ident, "c"}, {token.EOF, ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCComments, false)
	got, _ = lex(t, "a // b", cfg)
	want = []tok{{token.Ident, "a"}, {token.Slash, ""}, {token.Slash, ""}, {token.Ident, "b"}, {token.EOF, ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens without c-comments mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unterminated comment", "a /* never closed", "Unterminated block comment"},
		{"single ampersand", "a & b", "Unexpected character: '&'"},
		{"single bar", "a | b", "Unexpected character: '|'"},
		{"unknown character", "a # b", "Unexpected character: '#'"},
		{"int overflow", "4294967296", "Integer constant out of range"},
		{"exponent", "1e+", "exponent has no digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := lex(t, tt.src, nil)
			errs := diags.Errors()
			if len(errs) != 1 || !strings.Contains(errs[0].Msg, tt.want) {
				t.Errorf("expected one error containing %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	cfg := config.NewConfig()
	toks := NewLexer([]rune("{\n  foo >= 12;\n}"), 3, cfg, diag.NewList(cfg)).Tokenize()
	type pos struct{ Line, Column, Len, File int }
	var got []pos
	for _, tk := range toks {
		got = append(got, pos{tk.Line, tk.Column, tk.Len, tk.FileIndex})
	}
	want := []pos{
		{1, 1, 1, 3},  // {
		{2, 3, 3, 3},  // foo
		{2, 7, 2, 3},  // >=
		{2, 10, 2, 3}, // 12
		{2, 12, 1, 3}, // ;
		{3, 1, 1, 3},  // }
		{3, 2, 0, 3},  // EOF
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}
