// Package diag collects compiler diagnostics and renders them for a terminal.
package diag

import (
	"fmt"
	"sort"

	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/token"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind classifies a diagnostic.
type Kind int

const (
	Syntax Kind = iota
	MissingDecl
	Redeclaration
	IndexOutOfBounds
	Constructor
	Operator
	Function
	ConstInit
	Qualifier
	TypeMismatch
	Condition
	UnknownOperator
	Lint // warnings gated by config.Warning
)

var kindNames = [...]string{
	Syntax:           "syntax",
	MissingDecl:      "missing-declaration",
	Redeclaration:    "redeclaration",
	IndexOutOfBounds: "index-out-of-bounds",
	Constructor:      "constructor",
	Operator:         "operator",
	Function:         "function",
	ConstInit:        "const-initializer",
	Qualifier:        "qualifier",
	TypeMismatch:     "type-mismatch",
	Condition:        "condition",
	UnknownOperator:  "unknown-operator",
	Lint:             "lint",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     token.Span
	Msg      string
	Warning  config.Warning // only meaningful when Severity == SeverityWarning
	Flag     string         // warning flag name, e.g. "shadow"
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Span.Start.Line, d.Span.Start.Column, d.Severity, d.Msg)
}

// List accumulates diagnostics across compiler passes. The zero value is not
// usable; create one with NewList.
type List struct {
	cfg   *config.Config
	items []Diagnostic
}

func NewList(cfg *config.Config) *List {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &List{cfg: cfg}
}

func (l *List) Errorf(kind Kind, span token.Span, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{
		Kind: kind, Severity: SeverityError, Span: span, Msg: fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning if wt is enabled in the configuration.
func (l *List) Warnf(wt config.Warning, span token.Span, format string, args ...interface{}) {
	if !l.cfg.IsWarningEnabled(wt) {
		return
	}
	l.items = append(l.items, Diagnostic{
		Kind: Lint, Severity: SeverityWarning, Span: span, Msg: fmt.Sprintf(format, args...),
		Warning: wt, Flag: l.cfg.Warnings[wt].Name,
	})
}

func (l *List) Items() []Diagnostic { return l.items }

func (l *List) Len() int { return len(l.items) }

func (l *List) ErrorCount() int {
	n := 0
	for _, d := range l.items {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (l *List) HasErrors() bool { return l.ErrorCount() > 0 }

// Errors returns only the error-severity diagnostics, in emission order.
func (l *List) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Sorted returns the diagnostics ordered by source position. Diagnostics on the
// same position keep their emission order.
func (l *List) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

func (l *List) Config() *config.Config { return l.cfg }
