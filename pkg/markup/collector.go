package markup

import (
	"fmt"

	"go.uber.org/multierr"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError is a recoverable syntax error; scanning continued.
	SeverityError Severity = 0
	// SeverityFatal stopped the scan.
	SeverityFatal Severity = 1
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is a single syntax problem found while scanning.
type Diagnostic struct {
	// Line is the 1-based line number (0 if unknown).
	Line int

	// Severity tells whether the scan continued.
	Severity Severity

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Collector accumulates diagnostics for one scan.
type Collector struct {
	diags  []Diagnostic
	errors int
	fatal  int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Errorf records a recoverable error at the given line.
func (c *Collector) Errorf(line int, format string, args ...any) {
	c.errors++
	c.diags = append(c.diags, Diagnostic{
		Line:     line,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Fatalf records a fatal error at the given line.
func (c *Collector) Fatalf(line int, format string, args ...any) {
	c.fatal++
	c.diags = append(c.diags, Diagnostic{
		Line:     line,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ErrorCount returns the number of recoverable errors.
func (c *Collector) ErrorCount() int {
	return c.errors
}

// FatalCount returns the number of fatal errors.
func (c *Collector) FatalCount() int {
	return c.fatal
}

// Count returns the total number of diagnostics.
func (c *Collector) Count() int {
	return c.errors + c.fatal
}

// HasErrors reports whether anything was recorded.
func (c *Collector) HasErrors() bool {
	return c.Count() > 0
}

// Diagnostics returns a copy of the recorded diagnostics in discovery order.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Lines returns the line numbers of all diagnostics that have one.
func (c *Collector) Lines() []int {
	lines := make([]int, 0, len(c.diags))
	for _, d := range c.diags {
		if d.Line > 0 {
			lines = append(lines, d.Line)
		}
	}
	return lines
}

// Err returns all diagnostics combined into one error, or nil.
func (c *Collector) Err() error {
	var err error
	for _, d := range c.diags {
		err = multierr.Append(err, d)
	}
	return err
}
