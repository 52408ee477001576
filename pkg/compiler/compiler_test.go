package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
)

const phong = `{
	vec4 temp;
	const vec4 half = gl_Light_Half;
	float shine = gl_Material_Shininess[0];

	temp = gl_Color * env1;
	if (true) {
		temp[3] = 1.0;
	} else {
		temp[3] = 0.0;
	}
	gl_FragColor = temp;
}`

func TestCompile(t *testing.T) {
	res, err := Compile([]byte(phong), Options{})
	if err != nil {
		t.Fatalf("Compile: %v (%v)", err, res.Diagnostics.Items())
	}
	want := []string{
		"!!ARBfp1.0",
		"",
		"PARAM __zero__vector__ = {0.0, 0.0, 0.0, 0.0};",
		"TEMP __temp__;",
		"MOV __temp__, __zero__vector__;",
		"PARAM __half__ = state.light[0].half;",
		"TEMP __shine__;",
		"MOV __shine__, state.material.shininess.x;",
		"TEMP temp1;",
		"MUL temp1, fragment.color, program.env[1];",
		"MOV __temp__, temp1;",
		"MOV __temp__.w, 1.0;",
		"MOV result.color, __temp__;",
		"END",
	}
	if diff := cmp.Diff(want, res.Assembly); diff != "" {
		t.Errorf("assembly mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(res.Text(), "END\n") {
		t.Errorf("Text() should end with END and a newline, got %q", res.Text())
	}
	if res.Hash != xxhash.Sum64String(phong) {
		t.Errorf("Hash = %x, want xxhash of the source", res.Hash)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
	}{
		{"syntax", "{ float a = ; }", diag.Syntax},
		{"missing declaration", "{ a = 1.0; }", diag.MissingDecl},
		{"qualifier", "{ gl_Color = gl_Color; }", diag.Qualifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile([]byte(tt.src), Options{})
			if !errors.Is(err, ErrFailed) {
				t.Fatalf("expected ErrFailed, got %v", err)
			}
			if res.Program != nil || res.Assembly != nil {
				t.Error("no code should be generated when errors were reported")
			}
			errs := res.Diagnostics.Errors()
			if len(errs) == 0 || errs[0].Kind != tt.kind {
				t.Errorf("expected first error of kind %s, got %v", tt.kind, errs)
			}
		})
	}
}

func TestCompile_WarningsDoNotBlock(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetAllWarnings(true)
	res, err := Compile([]byte("{ float a; bool b = true; if (b) a = 1.0; }"), Options{Config: cfg})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Diagnostics.Len() == 0 || res.Diagnostics.HasErrors() {
		t.Errorf("expected warnings only, got %v", res.Diagnostics.Items())
	}
	if res.Program == nil {
		t.Error("expected a program")
	}
}

func TestCheck_DoesNotGenerate(t *testing.T) {
	var stages []string
	res, err := Check([]byte("{ }"), Options{Progress: func(s Stage) { stages = append(stages, s.String()) }})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Program != nil {
		t.Error("Check should not generate code")
	}
	want := []string{"Tokenizing", "Parsing", "Type checking"}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_FileIndex(t *testing.T) {
	res, _ := Compile([]byte("{\n  x = 1.0;\n}"), Options{FileIndex: 2})
	errs := res.Diagnostics.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	span := errs[0].Span
	if span.FileIndex != 2 || span.Start.Line != 2 || span.Start.Column != 3 {
		t.Errorf("unexpected span %+v", span)
	}
}
