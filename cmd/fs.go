package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
)

// hostFS sees the OS filesystem with relative names resolved against the
// working directory.
var hostFS = osfs.New("")

// hostPaths makes paths usable on hostFS, which refuses names that climb
// above its root.
func hostPaths(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, p := range args {
		clean := filepath.Clean(p)
		if !filepath.IsAbs(clean) && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
			abs, err := filepath.Abs(clean)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", p, err)
			}
			clean = abs
		}
		out[i] = clean
	}
	return out, nil
}
