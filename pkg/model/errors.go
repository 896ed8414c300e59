package model

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/manifestkit/manifest-go/pkg/markup"
)

// Model errors.
var (
	ErrEditNotPermitted = errors.New("model is not editable")
	ErrNotFound         = errors.New("node is not a member of the container")
	ErrInvalidChild     = errors.New("container does not accept this kind of child")
	ErrUnknownProperty  = errors.New("unknown property")
	ErrPropertyType     = errors.New("property value has the wrong type")
	ErrAbbreviated      = errors.New("model was loaded abbreviated")
	ErrNotLoaded        = errors.New("model is not loaded")
	ErrNotFragment      = errors.New("manifest root is not a fragment")
	ErrNotPlugin        = errors.New("manifest root is not a plugin")
	ErrParse            = errors.New("manifest parse failed")
)

// ErrReentrantMutation is the panic value raised when an observer mutates the
// model while a change is being dispatched.
var ErrReentrantMutation = errors.New("model mutated during change dispatch")

// ParseErrors is returned when a load finds syntax or encoding errors.
// The model is left exactly as it was before the load.
type ParseErrors struct {
	// Errors is the number of recoverable errors.
	Errors int

	// Fatal is the number of errors that stopped the scan.
	Fatal int

	// Diagnostics lists every problem in discovery order.
	Diagnostics []markup.Diagnostic

	lines []int
	err   error
}

func newParseErrors(c *markup.Collector) *ParseErrors {
	return &ParseErrors{
		Errors:      c.ErrorCount(),
		Fatal:       c.FatalCount(),
		Diagnostics: c.Diagnostics(),
		lines:       c.Lines(),
		err:         c.Err(),
	}
}

// Count returns the total number of errors.
func (e *ParseErrors) Count() int {
	return e.Errors + e.Fatal
}

// Lines returns the line numbers captured for the errors, best effort.
func (e *ParseErrors) Lines() []int {
	return append([]int(nil), e.lines...)
}

// Error implements the error interface.
func (e *ParseErrors) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%s: %d error(s)", ErrParse, e.Count())
	}
	return fmt.Sprintf("%s: %d error(s), first: %s", ErrParse, e.Count(), e.Diagnostics[0])
}

// Is makes errors.Is(err, ErrParse) true.
func (e *ParseErrors) Is(target error) bool {
	return target == ErrParse
}

// Unwrap returns the individual diagnostics.
func (e *ParseErrors) Unwrap() []error {
	return multierr.Errors(e.err)
}
