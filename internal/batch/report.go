package batch

import (
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/agentic-research/usemodel/internal/diag"
)

// Report collects the results of a Run.
type Report struct {
	Files []FileResult
}

// Changed returns the results whose output differs from the input.
func (r *Report) Changed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Changed {
			out = append(out, f)
		}
	}
	return out
}

// Failed returns the results whose rewrite was abandoned.
func (r *Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Sites is the number of rewritten call sites over all files.
func (r *Report) Sites() int {
	n := 0
	for _, f := range r.Files {
		n += f.Sites
	}
	return n
}

// Generic converts the report into plain maps and slices.
func (r *Report) Generic() map[string]any {
	files := make([]any, 0, len(r.Files))
	for _, f := range r.Files {
		entry := map[string]any{
			"path":    f.Path,
			"changed": f.Changed,
			"sites":   int64(f.Sites),
		}
		if f.Err != nil {
			entry["error"] = f.Err.Error()
		}
		ds := make([]any, 0, len(f.Diagnostics))
		for _, d := range f.Diagnostics {
			ds = append(ds, diagnostic(d))
		}
		entry["diagnostics"] = ds
		entry["warnings"] = int64(diag.Count(f.Diagnostics, diag.Warning))
		entry["errors"] = int64(diag.Count(f.Diagnostics, diag.Error))
		if f.Leftovers != nil {
			left := make([]any, 0, len(f.Leftovers))
			for _, d := range f.Leftovers {
				left = append(left, diagnostic(d))
			}
			entry["leftovers"] = left
		}
		files = append(files, entry)
	}
	return map[string]any{
		"files":   files,
		"changed": int64(len(r.Changed())),
		"failed":  int64(len(r.Failed())),
		"sites":   int64(r.Sites()),
	}
}

// JSON renders the report with sorted keys.
func (r *Report) JSON() string {
	return oj.JSON(r.Generic(), &ojg.Options{Indent: 2, Sort: true})
}

func diagnostic(d diag.Diagnostic) map[string]any {
	m := map[string]any{
		"severity": d.Severity.String(),
		"line":     int64(d.Line + 1),
		"column":   int64(d.Column + 1),
		"message":  d.Message,
	}
	if d.Fragment != "" {
		m["fragment"] = d.Fragment
	}
	return m
}

// Diff returns a unified diff between the original and rewritten file, or
// "" when nothing changed.
func (f *FileResult) Diff() (string, error) {
	if !f.Changed {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(f.Original),
		B:        splitLines(f.Output),
		FromFile: "a/" + f.Path,
		ToFile:   "b/" + f.Path,
		Context:  3,
	})
}

// splitLines cuts text into newline-terminated lines. A final newline does
// not start another line; an unterminated last line gets one so every diff
// line ends in "\n".
func splitLines(text []byte) []string {
	lines := strings.SplitAfter(string(text), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
