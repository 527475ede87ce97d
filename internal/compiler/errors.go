package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a template compilation error with source position.
//
// CUE sources carry a full token.Pos. YAML sources only know File and Line.
type CompileError struct {
	Template string
	Field    string
	Message  string
	Pos      token.Pos
	File     string
	Line     int
}

func (e *CompileError) Error() string {
	where := ""
	switch {
	case e.Pos.IsValid():
		where = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	case e.File != "" && e.Line > 0:
		where = fmt.Sprintf("%s:%d: ", e.File, e.Line)
	case e.File != "":
		where = e.File + ": "
	}

	if e.Template != "" {
		return fmt.Sprintf("%stemplate %s: %s: %s", where, e.Template, e.Field, e.Message)
	}
	return fmt.Sprintf("%s%s: %s", where, e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(template string, err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	ce := &CompileError{
		Template: template,
		Field:    "cue",
		Message:  first.Error(),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
