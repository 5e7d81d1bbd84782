// Package rewrite turns destructured useModel / useModelState calls into
// explicit useSelector accesses on the shared store.
//
// A file is rewritten all or nothing: if any call site uses a pattern the
// rewriter cannot express, or anything else goes wrong, Rewrite returns the
// input bytes untouched together with an error diagnostic.
package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/source"
	"github.com/agentic-research/usemodel/internal/writeback"
)

const (
	// StateHook is the single-state accessor: const { a } = useModelState('m').
	StateHook = "useModelState"
	// ModelHook is the state-plus-dispatch accessor: const [{ a }, d] = useModel('m').
	ModelHook = "useModel"

	// DefaultStoreName is the default import injected when a file does not
	// already import the store. Collisions with user identifiers of the same
	// name are not detected.
	DefaultStoreName = "__btripStore__"
)

var (
	// ErrSyntax means the input did not parse cleanly.
	ErrSyntax = errors.New("source does not parse")
	// ErrInternal wraps unexpected failures, including recovered panics.
	ErrInternal = errors.New("internal rewrite failure")
)

var identRE = regexp.MustCompile(`^[\p{L}\p{Nl}_$][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}$\x{200C}\x{200D}]*$`)

// IsIdentifier reports whether s can be used as a plain JavaScript identifier.
// Unicode letters are accepted; escapes and reserved words are not checked.
func IsIdentifier(s string) bool {
	return identRE.MatchString(s)
}

// Options configures a Rewriter.
type Options struct {
	// StoreName is the local name given to an injected store default import.
	// Empty means DefaultStoreName.
	StoreName string
	// Logger receives every diagnostic. Nil discards them.
	Logger *slog.Logger
}

// Rewriter is safe for concurrent use; every Rewrite call owns its state.
type Rewriter struct {
	storeName string
	logger    *slog.Logger
}

func New(opts Options) *Rewriter {
	r := &Rewriter{
		storeName: opts.StoreName,
		logger:    opts.Logger,
	}
	if r.storeName == "" {
		r.storeName = DefaultStoreName
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.logger = r.logger.With("component", "rewrite")
	return r
}

// Result describes one Rewrite call.
type Result struct {
	// Output is the rewritten text, or the input bytes when Err is set or
	// nothing matched.
	Output []byte
	// Changed reports whether Output differs from the input.
	Changed bool
	// Sites is the number of call sites rewritten.
	Sites       int
	Diagnostics []diag.Diagnostic
	// Err is set when the rewrite was abandoned.
	Err error
}

// Rewrite processes one file. It never fails: on any error the result
// carries the original text and Err explains why.
func (r *Rewriter) Rewrite(src []byte, filename string) (res *Result) {
	res = &Result{Output: src}

	// Files that never mention the hooks cannot match.
	if !bytes.Contains(src, []byte(ModelHook)) {
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			r.abandon(res, src, filename, diag.Diagnostic{}, fmt.Errorf("%w: %v", ErrInternal, p))
		}
	}()

	out, sites, err := r.rewrite(res, src, filename)
	if err != nil {
		r.abandon(res, src, filename, errorDiagnostic(filename, err), err)
		return res
	}
	res.Sites = sites
	if sites > 0 {
		res.Output = out
		res.Changed = !bytes.Equal(out, src)
	}
	return res
}

func (r *Rewriter) rewrite(res *Result, src []byte, filename string) ([]byte, int, error) {
	f, err := source.Parse(context.Background(), src, filename)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	defer f.Close()

	if err := writeback.Check(f); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	fr := &fileRewrite{
		r:   r,
		res: res,
		f:   f,
		buf: writeback.NewBuffer(src),
	}
	if err := fr.resolveStore(); err != nil {
		return nil, 0, err
	}
	if err := fr.rewriteCalls(); err != nil {
		return nil, 0, err
	}
	if fr.sites == 0 {
		return src, 0, nil
	}

	out, err := fr.buf.Bytes()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if err := writeback.Validate(out, filename); err != nil {
		return nil, 0, fmt.Errorf("%w: rewritten source does not parse: %w", ErrInternal, err)
	}
	return out, fr.sites, nil
}

// abandon resets res to the original text and records why.
func (r *Rewriter) abandon(res *Result, src []byte, filename string, d diag.Diagnostic, err error) {
	res.Output = src
	res.Changed = false
	res.Sites = 0
	res.Err = err
	if d.Message == "" {
		d = diag.Diagnostic{Severity: diag.Error, File: filename, Message: err.Error()}
	}
	r.report(res, d)
}

func (r *Rewriter) report(res *Result, d diag.Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
	diag.Log(r.logger, d)
}
