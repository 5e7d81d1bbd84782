package source

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language names returned by LanguageFor.
const (
	JavaScript = "javascript"
	TypeScript = "typescript"
	TSX        = "tsx"
)

// Extensions lists every file extension the rewriter understands.
var Extensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".mts", ".cts", ".tsx"}

// LanguageFor returns the language name and tree-sitter Language for a file
// name. The JavaScript grammar includes JSX, so it is also the fallback for
// stdin and unknown extensions.
func LanguageFor(filename string) (string, *sitter.Language) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return TypeScript, typescript.GetLanguage()
	case ".tsx":
		return TSX, tsx.GetLanguage()
	default:
		return JavaScript, javascript.GetLanguage()
	}
}

// Supported reports whether filename has one of the known extensions.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
