package writeback

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/usemodel/internal/source"
)

// ValidationError contains structured information about a syntax error.
type ValidationError struct {
	FilePath string
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line+1, e.Column+1, e.Message)
}

// Validate parses content with the grammar picked for filePath and returns
// a *ValidationError for the first syntax error in the tree.
func Validate(content []byte, filePath string) error {
	f, err := source.Parse(context.Background(), content, filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return Check(f)
}

// Check reports the first syntax error of an already parsed file.
func Check(f *source.File) error {
	root := f.Root()
	if root == nil {
		return fmt.Errorf("tree-sitter returned nil root for %s", f.Name)
	}
	if !root.HasError() {
		return nil
	}

	// Walk tree to find first ERROR node for a useful error message
	if errNode := findFirstError(root); errNode != nil {
		return &ValidationError{
			FilePath: f.Name,
			Line:     errNode.StartPoint().Row,
			Column:   errNode.StartPoint().Column,
			Message:  "syntax error in AST",
		}
	}
	return &ValidationError{FilePath: f.Name, Message: "AST contains errors"}
}

// findFirstError does a depth-first search for the first ERROR node.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := findFirstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}
