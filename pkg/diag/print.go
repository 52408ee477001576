package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	cRed    = "\033[31m"
	cYellow = "\033[33m"
	cGreen  = "\033[32m"
	cNone   = "\033[0m"
)

// SourceFile tracks the name and content of a single source file.
type SourceFile struct {
	Name    string
	Content []rune
}

// Printer renders diagnostics as "file:line:col: error: msg" followed by the
// offending source line and a caret underline.
type Printer struct {
	Files []SourceFile
	Color bool
}

// NewPrinter returns a printer that colors its output only when out is a terminal.
func NewPrinter(files []SourceFile, out *os.File) *Printer {
	return &Printer{Files: files, Color: out != nil && term.IsTerminal(int(out.Fd()))}
}

func (p *Printer) paint(color, s string) string {
	if !p.Color {
		return s
	}
	return color + s + cNone
}

func (p *Printer) fileName(fileIndex int) string {
	if fileIndex < 0 || fileIndex >= len(p.Files) {
		return "unknown"
	}
	return p.Files[fileIndex].Name
}

func (p *Printer) Print(w io.Writer, d Diagnostic) {
	label := p.paint(cRed, "error:")
	if d.Severity == SeverityWarning {
		label = p.paint(cYellow, "warning:")
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s", p.fileName(d.Span.FileIndex), d.Span.Start.Line, d.Span.Start.Column, label, d.Msg)
	if d.Severity == SeverityWarning {
		fmt.Fprintf(w, " [-W%s]", d.Flag)
	}
	fmt.Fprintln(w)
	p.printErrorLine(w, d)
}

func (p *Printer) PrintAll(w io.Writer, l *List) {
	for _, d := range l.Sorted() {
		p.Print(w, d)
	}
}

func (p *Printer) printErrorLine(w io.Writer, d Diagnostic) {
	fi := d.Span.FileIndex
	if fi < 0 || fi >= len(p.Files) || d.Span.Start.Line == 0 {
		return
	}

	content := p.Files[fi].Content
	lineNum := d.Span.Start.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(w, "  %s\n", string(content[lineStart:lineEnd]))

	col := d.Span.Start.Column
	if col < 1 {
		col = 1
	}
	width := 1
	if d.Span.End.Line == d.Span.Start.Line && d.Span.End.Column > col {
		width = d.Span.End.Column - col
	} else if d.Span.End.Line > d.Span.Start.Line {
		width = lineEnd - lineStart - (col - 1)
	}
	if width < 1 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", col-1), p.paint(cGreen, underline))
}
