// Package batch rewrites many files at once on a billy filesystem.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/usemodel/api"
	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/linter"
	"github.com/agentic-research/usemodel/internal/rewrite"
	"github.com/agentic-research/usemodel/internal/source"
	"github.com/agentic-research/usemodel/internal/writeback"
)

// Runner drives the rewrite of a set of paths.
type Runner struct {
	FS       billy.Filesystem
	Rewriter *rewrite.Rewriter
	Config   api.Config
	Logger   *slog.Logger

	// Write stores changed files back to FS. Without it Run is a dry run.
	Write bool

	// Lint reports hook calls still present after the rewrite.
	Lint bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string
	Original    []byte
	Output      []byte
	Changed     bool
	Sites       int
	Diagnostics []diag.Diagnostic

	// Leftovers are hook calls the rewrite did not touch, when linting.
	Leftovers []diag.Diagnostic

	// Err is set when the rewrite of this file was abandoned.
	Err error
}

// Run expands paths (directories are walked), rewrites every file and
// returns the results sorted by path. Files given explicitly are rewritten
// whatever their extension. A returned error means I/O failed; rewrite
// failures are reported per file.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "batch")

	files, err := r.collect(paths, logger)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	workers := r.Config.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.process(name)
			if err != nil {
				return err
			}
			results[i] = *res
			logger.Debug("processed file", "path", name, "changed", res.Changed, "sites", res.Sites)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Report{Files: results}, nil
}

func (r *Runner) process(name string) (*FileResult, error) {
	src, err := util.ReadFile(r.FS, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	res := r.Rewriter.Rewrite(src, name)

	fr := &FileResult{
		Path:        name,
		Original:    src,
		Output:      res.Output,
		Changed:     res.Changed,
		Sites:       res.Sites,
		Diagnostics: res.Diagnostics,
		Err:         res.Err,
	}
	if r.Lint && res.Err == nil {
		fr.Leftovers, err = linter.Lint(res.Output, name)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", name, err)
		}
	}
	if r.Write && res.Changed {
		if err := writeback.WriteFile(r.FS, name, res.Output); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return fr, nil
}

// collect resolves paths into a sorted, de-duplicated file list.
func (r *Runner) collect(paths []string, logger *slog.Logger) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	for _, p := range paths {
		info, err := r.FS.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if !source.Supported(p) {
				logger.Warn("unknown extension, parsing as JavaScript", "path", p)
			}
			add(p)
			continue
		}
		err = util.Walk(r.FS, p, func(name string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if name != p && r.excluded(info.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if r.wanted(info.Name()) {
				add(name)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *Runner) excluded(base string) bool {
	for _, pat := range r.Config.Exclude {
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func (r *Runner) wanted(base string) bool {
	if r.excluded(base) {
		return false
	}
	ext := strings.ToLower(path.Ext(base))
	for _, e := range r.Config.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
