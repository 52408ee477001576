// gtest runs the compiler over a set of shader sources and compares its
// output against golden JSON records or against a reference build.
//
// By default the compiler is run in-process; -target-compiler selects an
// external binary instead.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	refCompiler    = flag.String("ref-compiler", "", "Path to a reference compiler build to compare against instead of golden files.")
	refArgs        = flag.String("ref-args", "", "Arguments for the reference compiler (space-separated).")
	targetCompiler = flag.String("target-compiler", "", "Path to an arbc binary to test (default: compile in-process).")
	targetArgs     = flag.String("target-args", "", "Arguments for the target compiler, e.g. '-Wall -Fno-dce' (space-separated).")
	generateGolden = flag.String("generate-golden", "", "Generate a golden .json file for a given source file.")
	update         = flag.Bool("update", false, "Regenerate golden files that are missing or stale instead of failing.")
	testFiles      = flag.String("test-files", "tests/*.frag", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each compiler invocation.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	runs           = flag.Int("runs", 3, "Number of times to compile each file to find the minimum duration.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	ignoreLines    = flag.String("ignore-lines", "", "Comma-separated substrings to ignore during output comparison.")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	*runs = max(*runs, 1)
	*jobs = max(*jobs, 1)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}()

	target := newRunner(*targetCompiler, *targetArgs)
	if *generateGolden != "" {
		if err := writeGolden(target, *generateGolden); err != nil {
			log.Fatalf("%s[ERROR]%s Could not generate golden file for %s: %v", cRed, cNone, *generateGolden, err)
		}
		log.Printf("%s[SUCCESS]%s Golden file created at %s", cGreen, cNone, goldenPath(*generateGolden))
		return
	}

	var ref runner
	if *refCompiler != "" {
		if _, err := exec.LookPath(*refCompiler); err != nil {
			log.Printf("%s[WARN]%s Reference compiler '%s' not found. Will rely on golden files.", cYellow, cNone, *refCompiler)
		} else {
			ref = &binaryRunner{path: *refCompiler, args: strings.Fields(*refArgs)}
		}
	}

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	results := runSuite(files, target, ref)
	printSummary(results, target, ref)
	writeJSONReport(results)
	if hasFailures(results) {
		os.Exit(1)
	}
}

// runSuite tests files on *jobs workers. Files whose content duplicates an
// earlier file are skipped.
func runSuite(files []string, target, ref runner) []*FileTestResult {
	skip := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skip[f] = true
	}

	tasks := make(chan string)
	out := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup
	for range *jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				out <- testFile(file, target, ref)
			}
		}()
	}

	seen := make(map[string]string)
	for _, file := range files {
		if skip[file] || skip[filepath.Base(file)] {
			out <- &FileTestResult{File: file, Status: StatusSkip, Message: "Explicitly skipped"}
			continue
		}
		hash, err := hashFile(file)
		if err != nil {
			out <- &FileTestResult{File: file, Status: StatusError, Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if first, dup := seen[hash]; dup {
			out <- &FileTestResult{File: file, Status: StatusSkip, Message: "Content is identical to " + first}
			continue
		}
		seen[hash] = file
		tasks <- file
	}
	close(tasks)
	wg.Wait()
	close(out)

	var results []*FileTestResult
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

func testFile(file string, target, ref runner) *FileTestResult {
	hash, err := hashFile(file)
	if err != nil {
		return &FileTestResult{File: file, Status: StatusError, Message: "Failed to hash source file"}
	}
	if ref == nil {
		return testWithGoldenFile(target, file, hash)
	}

	var refRec, targetRec *Golden
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); refRec = record(ref, file, hash) }()
	go func() { defer wg.Done(); targetRec = record(target, file, hash) }()
	wg.Wait()
	return compareResults(file, refRec, targetRec)
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil || seen[abs] {
				continue
			}
			if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
				out = append(out, abs)
				seen[abs] = true
			}
		}
	}
	return out, nil
}
