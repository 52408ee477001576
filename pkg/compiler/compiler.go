// Package compiler wires the passes together: lexing, parsing, injection of
// the predefined variables, checking and ARB code generation.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/builtins"
	"github.com/xplshn/arbc/pkg/codegen"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/ir"
	"github.com/xplshn/arbc/pkg/lexer"
	"github.com/xplshn/arbc/pkg/parser"
	"github.com/xplshn/arbc/pkg/typeChecker"
)

// ErrFailed is wrapped by the error Compile and Check return when the source
// produced error diagnostics.
var ErrFailed = errors.New("compilation failed")

// Stage names a pipeline step, for progress reporting.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageCheck
	StageGenerate
)

func (s Stage) String() string {
	return [...]string{"Tokenizing", "Parsing", "Type checking", "Generating ARB assembly"}[s]
}

type Options struct {
	Config *config.Config
	// FileIndex tags every span with the index of the source in the
	// caller's file list.
	FileIndex int
	// Progress, if set, is called before each stage runs.
	Progress func(Stage)
}

type Result struct {
	Diagnostics *diag.List
	Tree        *ast.Scope
	Info        *typeChecker.Info
	Program     *ir.Program
	// Assembly holds one entry per output line, header and END included.
	Assembly []string
	// Hash is the xxhash of the source text.
	Hash uint64
}

// Text returns the assembly as it would be written to a file.
func (r *Result) Text() string {
	if len(r.Assembly) == 0 {
		return ""
	}
	return strings.Join(r.Assembly, "\n") + "\n"
}

// Check runs every pass up to and including the type checker. The returned
// Result is non-nil even when err is.
func Check(src []byte, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(Stage) {}
	}

	res := &Result{Diagnostics: diag.NewList(cfg), Hash: xxhash.Sum64(src)}
	diags := res.Diagnostics

	progress(StageLex)
	tokens := lexer.NewLexer(bytes.Runes(src), opts.FileIndex, cfg, diags).Tokenize()

	progress(StageParse)
	res.Tree = parser.NewParser(tokens, cfg, diags).Parse()
	if diags.HasErrors() {
		return res, failed(diags)
	}
	if err := builtins.Inject(res.Tree); err != nil {
		return res, err
	}

	progress(StageCheck)
	res.Info = typeChecker.NewTypeChecker(cfg, diags).Check(res.Tree)
	if diags.HasErrors() {
		return res, failed(diags)
	}
	return res, nil
}

// Compile checks src and, if no error was reported, generates its ARB
// fragment program. Warnings never stop generation.
func Compile(src []byte, opts Options) (*Result, error) {
	res, err := Check(src, opts)
	if err != nil {
		return res, err
	}
	cfg := res.Diagnostics.Config()

	if opts.Progress != nil {
		opts.Progress(StageGenerate)
	}
	res.Program = codegen.NewContext(cfg, res.Info, res.Diagnostics).GenerateIR(res.Tree)
	res.Assembly = codegen.Lines(res.Program)
	return res, nil
}

func failed(diags *diag.List) error {
	return fmt.Errorf("%w: %d error(s)", ErrFailed, diags.ErrorCount())
}
