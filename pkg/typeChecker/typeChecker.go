// Package typeChecker resolves identifiers and infers types for a parsed
// shader. It runs in two passes over the tree: the first links every
// identifier to its declaration through a scoped symbol table, the second
// infers expression types bottom-up and enforces the qualifier rules of the
// predefined variables. Results are recorded in an Info side table.
package typeChecker

import (
	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/symbol"
)

type TypeChecker struct {
	cfg   *config.Config
	diags *diag.List
}

func NewTypeChecker(cfg *config.Config, diags *diag.List) *TypeChecker {
	if cfg == nil {
		cfg = diags.Config()
	}
	return &TypeChecker{cfg: cfg, diags: diags}
}

// Check runs both passes over root. Diagnostics are appended to the list the
// checker was created with; the returned Info is always non-nil and holds
// whatever could be resolved.
func (tc *TypeChecker) Check(root *ast.Scope) *Info {
	info := tc.Resolve(root)
	tc.Infer(root, info)
	return info
}

// Resolve runs the first pass only.
func (tc *TypeChecker) Resolve(root *ast.Scope) *Info {
	info := newInfo()
	r := &resolver{table: symbol.NewTable(), info: info, diags: tc.diags}
	r.scope(root)
	return info
}

// Infer runs the second pass over a tree already resolved into info.
func (tc *TypeChecker) Infer(root *ast.Scope, info *Info) {
	c := &inferrer{info: info, diags: tc.diags, reads: make(map[*ast.Declaration]int)}
	c.scope(root)

	if tc.cfg.IsWarningEnabled(config.WarnUnused) {
		for _, d := range info.Decls {
			if !d.Predefined && c.reads[d] == 0 {
				tc.diags.Warnf(config.WarnUnused, d.NameSpan, "Variable '%s' is declared but never read", d.Name)
			}
		}
	}
}
