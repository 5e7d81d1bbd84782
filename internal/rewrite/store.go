package rewrite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/source"
)

const importQuery = `(import_statement (import_clause) @clause) @import`

// storeBinding is the file-scoped name of the shared store. It is resolved
// from the imports before any call site is visited; an injected default
// import is only written once a call site actually needs it.
type storeBinding struct {
	name string
	// imported is set when some import brings in one of the hooks.
	imported bool
	// inject is set when name must be added as a default import at insertAt.
	inject   bool
	insertAt uint32
	used     bool
}

// resolveStore scans import declarations. The first import of a hook that
// already has a default specifier lends its local name; otherwise the
// configured store name will be prepended to the first hook import.
func (fr *fileRewrite) resolveStore() error {
	fr.store = storeBinding{name: fr.r.storeName}

	matches, err := fr.f.Query(importQuery)
	if err != nil {
		return err
	}
	var adopted bool
	for _, m := range matches {
		clause := m["clause"]
		if typeOnly(m["import"]) || !importsHook(fr.f, clause) {
			continue
		}
		if def := defaultSpecifier(clause); def != nil {
			if !adopted {
				fr.store.name = fr.f.Text(def)
				adopted = true
			}
		} else if !fr.store.imported {
			fr.store.inject = true
			fr.store.insertAt = clause.StartByte()
		}
		fr.store.imported = true
	}
	if adopted {
		fr.store.inject = false
	}
	return nil
}

// useStore returns the store name for a call site being rewritten, queuing
// the default import on first use.
func (fr *fileRewrite) useStore() string {
	s := &fr.store
	if !s.used {
		s.used = true
		switch {
		case s.inject:
			fr.buf.Insert(s.insertAt, s.name+", ")
		case !s.imported:
			fr.r.report(fr.res, diag.Diagnostic{
				Severity: diag.Warning,
				File:     fr.f.Name,
				Message:  "no import of " + ModelHook + " or " + StateHook + " found; " + s.name + " is referenced without importing it",
			})
		}
	}
	return s.name
}

// typeOnly reports whether an import statement or specifier carries the
// TypeScript `type` modifier, which erases it at runtime.
func typeOnly(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == "type" {
			return true
		}
	}
	return false
}

// importsHook reports whether an import clause names one of the hooks
// among its value imports.
func importsHook(f *source.File, clause *sitter.Node) bool {
	for _, child := range source.NamedChildren(clause) {
		if child.Type() != "named_imports" {
			continue
		}
		for _, spec := range source.NamedChildren(child) {
			if spec.Type() != "import_specifier" || typeOnly(spec) {
				continue
			}
			switch f.Text(spec.ChildByFieldName("name")) {
			case ModelHook, StateHook:
				return true
			}
		}
	}
	return false
}

// defaultSpecifier returns the default import identifier of a clause, if any.
func defaultSpecifier(clause *sitter.Node) *sitter.Node {
	for _, child := range source.NamedChildren(clause) {
		if child.Type() == "identifier" {
			return child
		}
	}
	return nil
}
