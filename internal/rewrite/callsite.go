package rewrite

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/pattern"
	"github.com/agentic-research/usemodel/internal/selector"
	"github.com/agentic-research/usemodel/internal/source"
	"github.com/agentic-research/usemodel/internal/writeback"
)

// callQuery finds hook-shaped calls that initialize a destructuring
// declarator. The callee name is checked in Go.
const callQuery = `
(variable_declarator
	name: [(object_pattern) (array_pattern)] @binding
	value: (call_expression
		function: (identifier) @callee
		arguments: (arguments) @args) @call)
`

// fileRewrite is the state of one Rewrite call.
type fileRewrite struct {
	r     *Rewriter
	res   *Result
	f     *source.File
	buf   *writeback.Buffer
	store storeBinding
	sites int
}

// callSite is one recognized call with its binding pattern.
type callSite struct {
	hook    string
	model   string
	binding *sitter.Node
	call    *sitter.Node
	callee  *sitter.Node
	arg     *sitter.Node // first argument, the model name literal
}

func (fr *fileRewrite) rewriteCalls() error {
	matches, err := fr.f.Query(callQuery)
	if err != nil {
		return err
	}
	for _, m := range matches {
		site, ok := fr.match(m)
		if !ok {
			continue
		}
		if err := fr.dispatch(site); err != nil {
			return err
		}
	}
	return nil
}

// match turns a query match into a call site, or reports false when the
// call is not one of the hooks with a model name literal.
func (fr *fileRewrite) match(m source.Match) (*callSite, bool) {
	hook := fr.f.Text(m["callee"])
	if hook != ModelHook && hook != StateHook {
		return nil, false
	}
	args := source.NamedChildren(m["args"])
	if len(args) == 0 || args[0].Type() != "string" {
		return nil, false
	}
	model := unquote(fr.f.Text(args[0]))
	if !IsIdentifier(model) {
		fr.warn(args[0], "model name is not an identifier; call left unchanged")
		return nil, false
	}
	return &callSite{
		hook:    hook,
		model:   model,
		binding: m["binding"],
		call:    m["call"],
		callee:  m["callee"],
		arg:     args[0],
	}, true
}

// dispatch rewrites a call site according to its hook and binding shape.
// Shapes that do not fit are left alone.
func (fr *fileRewrite) dispatch(site *callSite) error {
	switch site.hook {
	case StateHook:
		// const { a } = useModelState('main')
		if site.binding.Type() != "object_pattern" {
			return nil
		}
		return fr.rewriteState(site, site.binding, site.binding)

	case ModelHook:
		if site.binding.Type() != "array_pattern" {
			return nil
		}
		elems := source.ArrayElements(site.binding)
		if len(elems) == 0 || elems[0] == nil || elems[0].Type() != "object_pattern" {
			return nil
		}
		switch len(elems) {
		case 1:
			// const [{ a }] = useModel('main')
			return fr.rewriteState(site, site.binding, elems[0])
		case 2:
			// const [{ a }, dispatch] = useModel('main')
			return fr.rewriteDual(site, elems[0])
		}
	}
	return nil
}

// rewriteState replaces target with the flattened pattern, the callee with
// <store>.useSelector and the model name with the selector.
func (fr *fileRewrite) rewriteState(site *callSite, target, pat *sitter.Node) error {
	x, err := fr.extract(pat)
	if err != nil {
		return err
	}
	store := fr.useStore()

	fr.replace(target, flatten(x))
	fr.replace(site.callee, selector.Print(useSelector(store)))
	fr.replace(site.arg, selector.Print(selector.Synthesize(site.model, x.Paths())))
	fr.done(site, x)
	return nil
}

// rewriteDual replaces the state element with the flattened pattern and the
// whole call with [<store>.useSelector(selector), <store>.dispatch.<model>].
func (fr *fileRewrite) rewriteDual(site *callSite, state *sitter.Node) error {
	x, err := fr.extract(state)
	if err != nil {
		return err
	}
	store := fr.useStore()

	pair := &selector.Array{Elems: []selector.Expr{
		&selector.Call{
			Callee: useSelector(store),
			Args:   []selector.Expr{selector.Synthesize(site.model, x.Paths())},
		},
		selector.Compile(store+".dispatch."+site.model, false),
	}}
	fr.replace(state, flatten(x))
	fr.replace(site.call, selector.Print(pair))
	fr.done(site, x)
	return nil
}

// extract flattens pat and reports degraded leaves as warnings.
func (fr *fileRewrite) extract(pat *sitter.Node) (*pattern.Extraction, error) {
	x, err := pattern.Extract(pat, fr.f.Source)
	if err != nil {
		return nil, err
	}
	for _, leaf := range x.Degraded {
		fr.warn(leaf.Node, "nested pattern cannot be flattened and is selected whole")
	}
	return x, nil
}

func (fr *fileRewrite) replace(n *sitter.Node, text string) {
	fr.buf.Replace(n.StartByte(), n.EndByte(), text)
}

func (fr *fileRewrite) done(site *callSite, x *pattern.Extraction) {
	fr.sites++
	fr.r.logger.Debug("rewrote call site",
		"file", fr.f.Name,
		"line", site.call.StartPoint().Row+1,
		"hook", site.hook,
		"model", site.model,
		"leaves", len(x.Leaves))
}

func (fr *fileRewrite) warn(n *sitter.Node, msg string) {
	p := n.StartPoint()
	fr.r.report(fr.res, diag.Diagnostic{
		Severity: diag.Warning,
		File:     fr.f.Name,
		Line:     p.Row,
		Column:   p.Column,
		Message:  msg,
		Fragment: fr.f.Text(n),
	})
}

func useSelector(store string) selector.Expr {
	return selector.Compile(store+".useSelector", false)
}

// flatten renders the leaves as a single-level object pattern.
func flatten(x *pattern.Extraction) string {
	if len(x.Leaves) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(x.Texts(), ", ") + " }"
}

// unquote strips the quotes of a string literal.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
