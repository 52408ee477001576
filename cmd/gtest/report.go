package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

const (
	cRed     = "\x1b[91m"
	cYellow  = "\x1b[93m"
	cGreen   = "\x1b[92m"
	cCyan    = "\x1b[96m"
	cMagenta = "\x1b[95m"
	cBold    = "\x1b[1m"
	cNone    = "\x1b[0m"
)

type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusStale Status = "STALE"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

func (s Status) color() string {
	switch s {
	case StatusPass:
		return cGreen
	case StatusStale, StatusSkip:
		return cYellow
	}
	return cRed
}

// Golden is the recorded compiler behaviour for one source file.
type Golden struct {
	SourceHash string    `json:"source_hash"`
	Args       []string  `json:"args,omitempty"`
	Compile    Execution `json:"compile"`
}

type FileTestResult struct {
	File      string  `json:"file"`
	Status    Status  `json:"status"`
	Message   string  `json:"message,omitempty"`
	Diff      string  `json:"diff,omitempty"`
	Reference *Golden `json:"reference,omitempty"`
	Target    *Golden `json:"target,omitempty"`
}

// goldenPath is ".<name>.json" next to the source, or in -dir.
func goldenPath(sourceFile string) string {
	name := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, name)
	}
	return filepath.Join(filepath.Dir(sourceFile), name)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func writeGolden(r runner, sourceFile string) error {
	hash, err := hashFile(sourceFile)
	if err != nil {
		return fmt.Errorf("could not hash source file: %w", err)
	}
	data, err := json.MarshalIndent(record(r, sourceFile, hash), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal golden data to JSON: %w", err)
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", *jsonDir, err)
		}
	}
	return os.WriteFile(goldenPath(sourceFile), data, 0o644)
}

func testWithGoldenFile(target runner, file, hash string) *FileTestResult {
	result := func(s Status, format string, args ...any) *FileTestResult {
		return &FileTestResult{File: file, Status: s, Message: fmt.Sprintf(format, args...)}
	}
	path := goldenPath(file)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if !*update {
			return result(StatusSkip, "Cannot test without a corresponding .json golden file (use --update)")
		}
		if err := writeGolden(target, file); err != nil {
			return result(StatusError, "Could not create golden file: %v", err)
		}
		return result(StatusPass, "Golden file created")
	}
	if err != nil {
		return result(StatusError, "Could not read golden file %s: %v", path, err)
	}

	var golden Golden
	if err := json.Unmarshal(data, &golden); err != nil {
		return result(StatusError, "Could not parse golden file %s: %v", path, err)
	}
	if golden.SourceHash != hash {
		if !*update {
			return result(StatusStale, "Source changed since the golden file was recorded (%s != %s)", golden.SourceHash, hash)
		}
		if err := writeGolden(target, file); err != nil {
			return result(StatusError, "Could not refresh golden file: %v", err)
		}
		return result(StatusPass, "Stale golden file regenerated")
	}
	return compareResults(file, &golden, record(target, file, hash))
}

// compareResults diffs exit code, assembly and diagnostics line by line.
func compareResults(file string, ref, target *Golden) *FileTestResult {
	var ignored []string
	if *ignoreLines != "" {
		ignored = strings.Split(*ignoreLines, ",")
	}

	var diffs strings.Builder
	if target.Compile.TimedOut {
		diffs.WriteString("Target compiler timed out.\n")
	}
	if ref.Compile.ExitCode != target.Compile.ExitCode {
		fmt.Fprintf(&diffs, "Exit Code mismatch:\n  - Ref:    %d\n  - Target: %d\n", ref.Compile.ExitCode, target.Compile.ExitCode)
	}
	streams := []struct{ name, ref, target string }{
		{"STDOUT", ref.Compile.Stdout, target.Compile.Stdout},
		{"STDERR", ref.Compile.Stderr, target.Compile.Stderr},
	}
	for _, s := range streams {
		want := strings.Split(filterOutput(s.ref, ignored), "\n")
		got := strings.Split(filterOutput(s.target, ignored), "\n")
		if d := cmp.Diff(want, got); d != "" {
			fmt.Fprintf(&diffs, "%s mismatch:\n%s", s.name, d)
		}
	}

	res := &FileTestResult{File: file, Reference: ref, Target: target}
	switch {
	case diffs.Len() > 0:
		res.Status, res.Message, res.Diff = StatusFail, "Assembly, diagnostics or exit code mismatch", diffs.String()
	case target.Compile.ExitCode != 0:
		res.Status, res.Message = StatusPass, "Rejected with the expected diagnostics"
	default:
		res.Status, res.Message = StatusPass, "Assembly and diagnostics match"
	}
	return res
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%6dµs", d.Microseconds())
	}
	return fmt.Sprintf("%6dms", d.Milliseconds())
}

const rule = "----------------------------------------------------------------------"

func printSummary(results []*FileTestResult, target, ref runner) {
	counts := make(map[Status]int)
	targetName, refName := target.Name(), "golden"
	if ref != nil {
		refName = ref.Name()
	}
	width := max(len(targetName), len(refName))

	var totalTarget, totalRef time.Duration
	compared := 0
	for _, r := range results {
		counts[r.Status]++
		fmt.Println(rule)
		fmt.Printf("Testing %s%s%s...\n", cCyan, r.File, cNone)
		fmt.Printf("  [%s%s%s] %s\n", r.Status.color(), r.Status, cNone, r.Message)
		if r.Status == StatusFail {
			fmt.Println(formatDiff(r.Diff))
		}
		if r.Target == nil || r.Reference == nil {
			continue
		}

		td, rd := r.Target.Compile.Duration, r.Reference.Compile.Duration
		compared++
		totalTarget += td
		totalRef += rd
		if *verbose {
			tc, rc := cNone, cNone
			if td < rd {
				tc = cMagenta
			} else if rd < td {
				rc = cMagenta
			}
			fmt.Printf("  [%-*s: %s%s%s | %-*s: %s%s%s]\n",
				width, targetName, tc, formatDuration(td), cNone, width, refName, rc, formatDuration(rd), cNone)
		}
	}

	fmt.Println(rule)
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Stale%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, counts[StatusPass], cNone, cRed, counts[StatusFail], cNone,
		cYellow, counts[StatusStale], cNone, cYellow, counts[StatusSkip], cNone, cRed, counts[StatusError], cNone, len(results))

	if compared == 0 || totalRef == 0 || totalTarget == 0 {
		return
	}
	ratio := float64(totalTarget) / float64(totalRef)
	fmt.Println("---")
	switch {
	case ratio > 1:
		fmt.Printf("On average, %s%s%s was %s%.2fx%s slower to compile than %s.\n", cBold, targetName, cNone, cRed, ratio, cNone, refName)
	case ratio < 1:
		fmt.Printf("On average, %s%s%s was %s%.2fx%s faster to compile than %s.\n", cBold, targetName, cNone, cGreen, 1/ratio, cNone, refName)
	}
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		switch t := strings.TrimSpace(line); {
		case strings.HasPrefix(t, "-"):
			b.WriteString(cRed)
		case strings.HasPrefix(t, "+"):
			b.WriteString(cGreen)
		}
		b.WriteString("    " + line + cNone + "\n")
	}
	return b.String()
}

func writeJSONReport(results []*FileTestResult) {
	byFile := make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		byFile[r.File] = r
	}
	data, err := json.MarshalIndent(byFile, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v", cRed, cNone, err)
		return
	}

	path := *outputJSON
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0o755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v", cRed, cNone, *jsonDir, err)
		}
		path = filepath.Join(*jsonDir, *outputJSON)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v", cRed, cNone, path, err)
		return
	}
	fmt.Printf("Full test report saved to %s\n", path)
}

func hasFailures(results []*FileTestResult) bool {
	for _, r := range results {
		switch r.Status {
		case StatusFail, StatusStale, StatusError:
			return true
		}
	}
	return false
}
