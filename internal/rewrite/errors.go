package rewrite

import (
	"errors"

	"github.com/agentic-research/usemodel/internal/diag"
	"github.com/agentic-research/usemodel/internal/pattern"
	"github.com/agentic-research/usemodel/internal/writeback"
)

// errorDiagnostic turns the error that abandoned a file into a diagnostic,
// keeping the position and offending fragment when the error carries them.
func errorDiagnostic(filename string, err error) diag.Diagnostic {
	d := diag.Diagnostic{Severity: diag.Error, File: filename, Message: err.Error()}

	var pe *pattern.Error
	if errors.As(err, &pe) {
		d.Line, d.Column = pe.Line, pe.Column
		d.Message = pe.Err.Error()
		d.Fragment = pe.Fragment
		return d
	}
	var ve *writeback.ValidationError
	if errors.As(err, &ve) {
		d.Line, d.Column = ve.Line, ve.Column
	}
	return d
}
