// Package linter finds hook calls that are still present in a file, which
// after a rewrite means the call had a shape the rewriter does not handle.
package linter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/rewrite"
	"github.com/agentic-research/usemodel/internal/source"
)

const hookCallQuery = `(call_expression function: (identifier) @fn) @call`

// Lint reports every call to useModel or useModelState in content as a
// warning. Content that does not parse yields no diagnostics; syntax is
// the rewriter's concern.
func Lint(content []byte, filename string) ([]diag.Diagnostic, error) {
	f, err := source.Parse(context.Background(), content, filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if f.Root().HasError() {
		return nil, nil
	}

	matches, err := f.Query(hookCallQuery)
	if err != nil {
		return nil, err
	}

	var diags []diag.Diagnostic
	for _, m := range matches {
		name := f.Text(m["fn"])
		if name != rewrite.StateHook && name != rewrite.ModelHook {
			continue
		}
		call := m["call"]
		pos := call.StartPoint()
		diags = append(diags, diag.Diagnostic{
			Severity: diag.Warning,
			File:     filename,
			Line:     pos.Row,
			Column:   pos.Column,
			Message:  fmt.Sprintf("%s call left unchanged: %s", name, reason(f, name, call)),
			Fragment: f.Text(call),
		})
	}
	return diags, nil
}

func reason(f *source.File, hook string, call *sitter.Node) string {
	parent := call.Parent()
	if parent == nil || parent.Type() != "variable_declarator" {
		return "not the initializer of a declaration"
	}
	switch parent.ChildByFieldName("name").Type() {
	case "identifier":
		return "result is not destructured"
	case "array_pattern":
		return "array binding must hold an object pattern and at most one dispatch name"
	}
	args := source.NamedChildren(call.ChildByFieldName("arguments"))
	if len(args) == 0 || args[0].Type() != "string" {
		return "model name is not a string literal"
	}
	if lit := f.Text(args[0]); len(lit) < 2 || !rewrite.IsIdentifier(lit[1:len(lit)-1]) {
		return "model name is not an identifier"
	}
	if hook == rewrite.ModelHook {
		return "result must be destructured as an array"
	}
	return "unsupported binding"
}
