package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/xplshn/arbc/pkg/compiler"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
)

// sourcePlaceholder replaces the source path in recorded output so golden
// files do not depend on where the repository is checked out.
const sourcePlaceholder = "__SOURCE__"

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// runner compiles one source file and reports what a user of arbc would see.
type runner interface {
	Name() string
	Args() []string
	Run(ctx context.Context, sourceFile string) Execution
}

// newRunner returns an in-process runner when path is empty, and a
// binaryRunner otherwise. A path that cannot be found on disk or in PATH
// falls back to the in-process compiler.
func newRunner(path, args string) runner {
	fields := strings.Fields(args)
	if path == "" {
		return &inProcessRunner{args: fields}
	}
	if _, err := exec.LookPath(path); err != nil {
		log.Printf("%s[WARN]%s '%s' not found, compiling in-process", cYellow, cNone, path)
		return &inProcessRunner{args: fields}
	}
	return &binaryRunner{path: path, args: fields}
}

type binaryRunner struct {
	path string
	args []string
}

func (r *binaryRunner) Name() string   { return filepath.Base(r.path) }
func (r *binaryRunner) Args() []string { return r.args }

func (r *binaryRunner) Run(ctx context.Context, sourceFile string) Execution {
	start := time.Now()
	cmd := exec.CommandContext(ctx, r.path, append(append([]string{}, r.args...), sourceFile)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()

	res := Execution{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut, res.ExitCode = true, -1
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		res.ExitCode = -2
		res.Stderr += "\nExecution error: " + err.Error()
	}
	return res
}

// inProcessRunner drives pkg/compiler directly and formats its result the
// way cmd/arbc does: assembly on stdout, rendered diagnostics on stderr and
// exit code 1 on errors.
type inProcessRunner struct {
	args []string
}

func (r *inProcessRunner) Name() string   { return "arbc (in-process)" }
func (r *inProcessRunner) Args() []string { return r.args }

func (r *inProcessRunner) Run(_ context.Context, sourceFile string) Execution {
	start := time.Now()
	var res Execution
	cfg, err := configFromArgs(r.args)
	if err != nil {
		return Execution{Stderr: fmt.Sprintf("arbc: %v\n", err), ExitCode: 1}
	}
	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return Execution{Stderr: fmt.Sprintf("arbc: %v\n", err), ExitCode: 1}
	}

	out, cerr := compiler.Compile(src, compiler.Options{Config: cfg})
	var stderr bytes.Buffer
	printer := &diag.Printer{Files: []diag.SourceFile{{Name: sourceFile, Content: bytes.Runes(src)}}}
	printer.PrintAll(&stderr, out.Diagnostics)
	if cerr != nil {
		fmt.Fprintf(&stderr, "%s: %v\n", sourceFile, cerr)
		res.ExitCode = 1
	}
	res.Stdout = out.Text()
	res.Stderr = stderr.String()
	res.Duration = time.Since(start)
	return res
}

// configFromArgs understands the subset of arbc flags that shape output:
// --std, --pedantic, -Wall and the -W/-F groups.
func configFromArgs(args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	std := config.DefaultStd
	var flags []string
	for _, a := range args {
		switch {
		case a == "--pedantic" || a == "-pedantic":
			cfg.SetWarning(config.WarnPedantic, true)
		case strings.HasPrefix(a, "--std="):
			std = strings.TrimPrefix(a, "--std=")
		case strings.HasPrefix(a, "-W") || strings.HasPrefix(a, "-F"):
			flags = append(flags, a)
		default:
			return nil, fmt.Errorf("unsupported argument for in-process runs: %s", a)
		}
	}
	if err := cfg.ApplyStd(std); err != nil {
		return nil, err
	}
	for _, f := range flags {
		if err := cfg.ApplyFlag(f); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// record compiles sourceFile *runs times, keeping the first run's output and
// the fastest duration, and normalizes the source path away.
func record(r runner, sourceFile, hash string) *Golden {
	var best Execution
	for i := range *runs {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		res := r.Run(ctx, sourceFile)
		cancel()

		if i == 0 {
			best = res
		} else {
			best.Duration = min(best.Duration, res.Duration)
		}
		if res.TimedOut {
			break
		}
	}

	best.Stdout = normalize(best.Stdout, sourceFile)
	best.Stderr = normalize(best.Stderr, sourceFile)
	if *verbose {
		log.Printf("[%s] %s exited with %d in %s", filepath.Base(sourceFile), r.Name(), best.ExitCode, best.Duration)
	}
	return &Golden{SourceHash: hash, Args: r.Args(), Compile: best}
}

func normalize(output, sourceFile string) string {
	output = strings.ReplaceAll(output, sourceFile, sourcePlaceholder)
	return strings.ReplaceAll(output, filepath.Base(sourceFile), sourcePlaceholder)
}

// filterOutput drops lines containing any of the ignored substrings.
func filterOutput(output string, ignored []string) string {
	if len(ignored) == 0 || output == "" {
		return output
	}
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		drop := false
		for _, sub := range ignored {
			if sub != "" && strings.Contains(line, sub) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
