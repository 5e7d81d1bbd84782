// Package pattern flattens object destructuring patterns into the dotted
// paths a caller reads and the leaf bindings that receive them.
package pattern

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/usemodel/internal/source"
)

var (
	// ErrRestBinding is returned for `...rest` entries; rest semantics have
	// no path representation.
	ErrRestBinding = errors.New("rest bindings are not supported")
	// ErrUnsupportedKey is returned for computed, string or numeric keys.
	ErrUnsupportedKey = errors.New("only plain property keys are supported")
	// ErrUnsupportedBinding is returned for entry shapes the extractor does
	// not know how to flatten.
	ErrUnsupportedBinding = errors.New("unsupported destructuring entry")
)

// Error locates an extraction failure in the source.
type Error struct {
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Fragment string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %v: %s", e.Line+1, e.Column+1, e.Err, e.Fragment)
}

func (e *Error) Unwrap() error { return e.Err }

// Leaf is a destructuring entry that survives into the flattened pattern.
type Leaf struct {
	Path string       // dotted path from the pattern root, e.g. "b.c"
	Node *sitter.Node // the entry inside its object_pattern
	Text string       // entry source, emitted verbatim
}

// Extraction is the result of flattening one pattern.
type Extraction struct {
	Leaves []Leaf
	// Degraded holds leaves whose nested structure was kept whole because
	// its default is not an empty object (or it destructures an array).
	// Every degraded leaf is also present in Leaves.
	Degraded []Leaf
}

// Paths returns the leaf paths in discovery order.
func (x *Extraction) Paths() []string {
	paths := make([]string, len(x.Leaves))
	for i, l := range x.Leaves {
		paths[i] = l.Path
	}
	return paths
}

// Texts returns the leaf entry texts in discovery order.
func (x *Extraction) Texts() []string {
	texts := make([]string, len(x.Leaves))
	for i, l := range x.Leaves {
		texts[i] = l.Text
	}
	return texts
}

type pending struct {
	prefix  string
	pattern *sitter.Node
}

// Extract walks root, an object_pattern, breadth first. Entries of one level
// are visited left to right; nested patterns are queued and expanded after
// the current level, so leaf order is deterministic.
func Extract(root *sitter.Node, src []byte) (*Extraction, error) {
	x := &Extraction{}
	queue := []pending{{prefix: "", pattern: root}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.pattern.Type() != "object_pattern" {
			return nil, fail(cur.pattern, src, ErrUnsupportedBinding)
		}

		for _, entry := range source.NamedChildren(cur.pattern) {
			leaf := func(path string) {
				x.Leaves = append(x.Leaves, Leaf{Path: path, Node: entry, Text: source.Text(entry, src)})
			}
			degraded := func(path string) {
				leaf(path)
				x.Degraded = append(x.Degraded, x.Leaves[len(x.Leaves)-1])
			}

			switch entry.Type() {
			case "rest_pattern":
				return nil, fail(entry, src, ErrRestBinding)

			case "shorthand_property_identifier_pattern":
				// { a }
				leaf(join(cur.prefix, source.Text(entry, src)))

			case "object_assignment_pattern":
				// { a = 1 }
				left := entry.ChildByFieldName("left")
				if left == nil || left.Type() != "shorthand_property_identifier_pattern" {
					return nil, fail(entry, src, ErrUnsupportedBinding)
				}
				leaf(join(cur.prefix, source.Text(left, src)))

			case "pair_pattern":
				key := entry.ChildByFieldName("key")
				if key == nil || key.Type() != "property_identifier" {
					return nil, fail(entry, src, ErrUnsupportedKey)
				}
				path := join(cur.prefix, source.Text(key, src))

				value := entry.ChildByFieldName("value")
				if value == nil {
					return nil, fail(entry, src, ErrUnsupportedBinding)
				}
				switch value.Type() {
				case "identifier":
					// { a: b }
					leaf(path)
				case "assignment_pattern":
					left := value.ChildByFieldName("left")
					right := value.ChildByFieldName("right")
					switch {
					case left == nil || right == nil:
						return nil, fail(entry, src, ErrUnsupportedBinding)
					case left.Type() == "identifier":
						// { a: b = 1 }
						leaf(path)
					case left.Type() == "object_pattern" && isEmptyObject(right):
						// { a: { b } = {} } keeps descending through the default.
						queue = append(queue, pending{prefix: path, pattern: left})
					default:
						// { a: { b } = { b: 1 } }
						degraded(path)
					}
				case "object_pattern":
					// { a: { b } }
					queue = append(queue, pending{prefix: path, pattern: value})
				case "array_pattern":
					// { a: [b] }
					degraded(path)
				default:
					return nil, fail(entry, src, ErrUnsupportedBinding)
				}

			default:
				return nil, fail(entry, src, ErrUnsupportedBinding)
			}
		}
	}
	return x, nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// isEmptyObject reports whether n is the literal `{}` (comments allowed).
func isEmptyObject(n *sitter.Node) bool {
	return n.Type() == "object" && len(source.NamedChildren(n)) == 0
}

func fail(n *sitter.Node, src []byte, err error) *Error {
	p := n.StartPoint()
	return &Error{
		Line:     p.Row,
		Column:   p.Column,
		Fragment: source.Text(n, src),
		Err:      err,
	}
}
