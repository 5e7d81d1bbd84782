package writeback

import (
	"fmt"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// WriteFile replaces the content of name on fs. The write is atomic:
// content goes to a temp file in the same directory, which is then renamed
// over the original. The original file mode is carried over when fs
// supports it.
func WriteFile(fs billy.Filesystem, name string, content []byte) error {
	info, statErr := fs.Stat(name)

	tmp, err := util.TempFile(fs, path.Dir(name), ".usemodel-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if ch, ok := fs.(billy.Change); ok && statErr == nil {
		_ = ch.Chmod(tmpName, info.Mode().Perm()) // best-effort permission sync
	}

	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
