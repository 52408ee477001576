package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xplshn/arbc/pkg/cli"
	"github.com/xplshn/arbc/pkg/codegen"
	"github.com/xplshn/arbc/pkg/compiler"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
)

func main() {
	app := cli.NewApp("arbc")
	app.Synopsis = "[options] <shader.frag> ..."
	app.Description = "A compiler for a small GLSL dialect that emits ARB fragment programs. Fixed-function hardware never looked so programmable."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/arbc>"
	app.Since = 2025

	var (
		outFile   string
		std       string
		checkOnly bool
		verbose   bool
		pedantic  bool
		wall      bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "-", "Place the output into <file> ('-' writes to stdout).", "file")
	fs.String(&std, "std", "", config.DefaultStd, "Specify language standard (MiniGLSL, GLSL)", "std")
	fs.Bool(&checkOnly, "check", "c", false, "Check the input and report diagnostics without generating code.")
	fs.Bool(&verbose, "verbose", "v", false, "Report each compilation stage on stderr.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue all warnings demanded by the current std.")
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		// Pedantic flag affects everything else
		if pedantic {
			cfg.SetWarning(config.WarnPedantic, true)
		}

		// Apply language standard first
		if err := cfg.ApplyStd(std); err != nil {
			return report(err)
		}
		if wall {
			cfg.SetAllWarnings(true)
		}

		// Explicit -W/-F flags override the standard
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		if len(inputFiles) == 0 {
			return report(errors.New("no input files specified"))
		}
		if len(inputFiles) > 1 && outFile != "-" {
			return report(errors.New("-o cannot be used with more than one input file"))
		}

		files, err := readSourceFiles(inputFiles)
		if err != nil {
			return report(err)
		}
		printer := diag.NewPrinter(files, os.Stderr)

		var failed int
		for i, file := range files {
			if err := compileFile(file, i, cfg, printer, outFile, checkOnly, verbose); err != nil {
				if !errors.Is(err, compiler.ErrFailed) {
					return report(err)
				}
				fmt.Fprintf(os.Stderr, "%s: %v\n", file.Name, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func report(err error) error {
	fmt.Fprintf(os.Stderr, "arbc: %v\n", err)
	return err
}

func readSourceFiles(paths []string) ([]diag.SourceFile, error) {
	files := make([]diag.SourceFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read file '%s': %w", path, err)
		}
		files = append(files, diag.SourceFile{Name: path, Content: []rune(string(content))})
	}
	return files, nil
}

func compileFile(file diag.SourceFile, index int, cfg *config.Config, printer *diag.Printer, outFile string, checkOnly, verbose bool) error {
	opts := compiler.Options{Config: cfg, FileIndex: index}
	if verbose {
		fmt.Fprintln(os.Stderr, "----------------------")
		opts.Progress = func(s compiler.Stage) {
			fmt.Fprintf(os.Stderr, "%s '%s'...\n", s, file.Name)
		}
	}

	src := []byte(string(file.Content))
	var (
		res *compiler.Result
		err error
	)
	if checkOnly {
		res, err = compiler.Check(src, opts)
	} else {
		res, err = compiler.Compile(src, opts)
	}
	printer.PrintAll(os.Stderr, res.Diagnostics)
	if err != nil {
		return err
	}
	if checkOnly {
		if verbose {
			fmt.Fprintf(os.Stderr, "'%s' is valid (source hash %016x)\n", file.Name, res.Hash)
		}
		return nil
	}

	out, err := codegen.NewARBBackend().Generate(res.Program, cfg)
	if err != nil {
		return fmt.Errorf("backend code generation failed: %w", err)
	}
	if err := writeOutput(outFile, out.Bytes()); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %d instruction(s) using %d temporary register(s) for '%s' (source hash %016x)\n",
			len(res.Program.Instructions), res.Program.TempCount, file.Name, res.Hash)
		fmt.Fprintln(os.Stderr, "----------------------")
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create '%s': %w", path, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}
