package source

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// File is a parsed source file: the tree-sitter tree plus the bytes and
// language it was parsed with. Node text is always sliced out of Source.
type File struct {
	Name     string
	Source   []byte
	Language string

	lang *sitter.Language
	tree *sitter.Tree
}

// Parse parses content with the grammar selected by filename.
// JavaScript that does not parse cleanly is retried with the TSX grammar,
// which accepts type annotations in .js files; the TSX tree is kept only
// when it is error free. Callers must Close the returned File.
func Parse(ctx context.Context, content []byte, filename string) (*File, error) {
	name, lang := LanguageFor(filename)
	f, err := parseWith(ctx, content, filename, name, lang)
	if err != nil || name != JavaScript || !f.Root().HasError() {
		return f, err
	}

	alt, err := parseWith(ctx, content, filename, TSX, tsx.GetLanguage())
	if err != nil {
		return f, nil
	}
	if alt.Root().HasError() {
		alt.Close()
		return f, nil
	}
	f.Close()
	return alt, nil
}

func parseWith(ctx context.Context, content []byte, filename, name string, lang *sitter.Language) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed for %s: %w", filename, err)
	}
	return &File{
		Name:     filename,
		Source:   content,
		Language: name,
		lang:     lang,
		tree:     tree,
	}, nil
}

// Root returns the program node.
func (f *File) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the source text covered by n.
func (f *File) Text(n *sitter.Node) string {
	return Text(n, f.Source)
}

// Close releases the tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Match is one query match: capture name to captured node.
type Match map[string]*sitter.Node

// Query runs a tree-sitter query over the whole file and returns the matches
// in document order.
func (f *File) Query(query string) ([]Match, error) {
	q, err := sitter.NewQuery([]byte(query), f.lang)
	if err != nil {
		return nil, fmt.Errorf("invalid query '%s': %w", query, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, f.Root())

	var matches []Match
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		match := make(Match, len(m.Captures))
		for _, c := range m.Captures {
			match[q.CaptureNameForId(c.Index)] = c.Node
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Text returns the slice of src covered by n, or "" if the node range does
// not fit src.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint32(len(src)) {
		return ""
	}
	return string(src[start:end])
}

// NamedChildren returns the named children of n, skipping comments.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// ArrayElements returns the element slots of an array_pattern or array node.
// Holes (`[, b]`) are reported as nil entries; a single trailing comma does
// not add a slot.
func ArrayElements(n *sitter.Node) []*sitter.Node {
	var (
		elems   []*sitter.Node
		pending *sitter.Node
		seen    bool
	)
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "[", "comment":
		case ",":
			elems = append(elems, pending)
			pending, seen = nil, false
		case "]":
			if seen {
				elems = append(elems, pending)
			}
		default:
			pending, seen = child, true
		}
	}
	return elems
}
