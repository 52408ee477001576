package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlagSet_Parse(t *testing.T) {
	var (
		output, std string
		check       bool
		defines     []string
	)
	fs := NewFlagSet("arbc")
	fs.String(&output, "output", "o", "-", "Output file", "file")
	fs.String(&std, "std", "", "GLSL", "Language standard", "std")
	fs.Bool(&check, "check", "c", false, "Only check")
	fs.Special(&defines, "D", "Define", "name")

	args := []string{"-o", "out.arb", "--std=MiniGLSL", "-c", "-DFOO", "a.frag", "--", "-b.frag"}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if output != "out.arb" || std != "MiniGLSL" || !check {
		t.Errorf("output=%q std=%q check=%v", output, std, check)
	}
	if diff := cmp.Diff([]string{"FOO"}, defines); diff != "" {
		t.Errorf("special flag mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.frag", "-b.frag"}, fs.Args()); diff != "" {
		t.Errorf("positional args mismatch (-want +got):\n%s", diff)
	}
	if !fs.Visited("std") || fs.Visited("help") {
		t.Error("Visited does not track the given flags")
	}
	if fs.Lookup("output").DefValue != "-" {
		t.Errorf("default value = %q", fs.Lookup("output").DefValue)
	}
}

func TestFlagSet_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown long", []string{"--nope"}, "unknown flag: --nope"},
		{"unknown short", []string{"-z"}, "unknown shorthand flag: -z"},
		{"missing value", []string{"--output"}, "flag needs an argument: --output"},
		{"bad bool", []string{"--check=maybe"}, "invalid boolean value 'maybe'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output string
			var check bool
			fs := NewFlagSet("arbc")
			fs.String(&output, "output", "o", "-", "Output file", "file")
			fs.Bool(&check, "check", "c", false, "Only check")
			err := fs.Parse(tt.args)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := err.Error(); len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
				t.Errorf("error = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("enable the dead branch warning", 12)
	for _, line := range got {
		if len(line) > 12 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if len(got) < 2 {
		t.Errorf("expected wrapping, got %v", got)
	}
}

func TestHelpPage(t *testing.T) {
	var output string
	on, off := new(bool), new(bool)
	app := NewApp("arbc")
	app.Synopsis = "[options] <shader.frag>"
	app.Since = 2025
	app.Authors = []string{"xplshn"}
	app.FlagSet.String(&output, "output", "o", "-", "Output file", "file")
	app.FlagSet.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available Features:", []FlagGroupEntry{
		{Name: "dce", Prefix: "F", Usage: "Drop dead branches", Default: true, Enabled: on, Disabled: off},
	})

	var buf bytes.Buffer
	app.generateHelpPage(&buf)
	page := buf.String()
	for _, want := range []string{
		"-o <file>, --output <file>", "|-|", "Feature Flags", "-Fno-<feature>", "Available Features:", "dce", "|x|",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("help page is missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "-Fdce ") {
		t.Error("group members must not be listed as plain options")
	}
}
