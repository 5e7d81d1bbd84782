// Package diag carries the rewriter's advisory messages. Diagnostics never
// change whether a file is rewritten; they only explain what happened.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one message tied to a source position.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Message  string
	Fragment string // offending source text, may be empty
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		b.WriteByte(':')
	}
	fmt.Fprintf(&b, "%d:%d: %s: %s", d.Line+1, d.Column+1, d.Severity, d.Message)
	if d.Fragment != "" {
		fmt.Fprintf(&b, ": %s", oneLine(d.Fragment))
	}
	return b.String()
}

// Log writes d to logger at the level matching its severity.
func Log(logger *slog.Logger, d Diagnostic) {
	level := slog.LevelWarn
	if d.Severity == Error {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("file", d.File),
		slog.Int("line", int(d.Line)+1),
		slog.Int("column", int(d.Column)+1),
	}
	if d.Fragment != "" {
		attrs = append(attrs, slog.String("fragment", oneLine(d.Fragment)))
	}
	logger.LogAttrs(context.Background(), level, d.Message, attrs...)
}

// Count returns how many diagnostics in ds have severity s.
func Count(ds []Diagnostic, s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// oneLine collapses whitespace runs so multi-line fragments stay on one log line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
