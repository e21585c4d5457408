// Package errors defines the two error categories the emitter can raise:
// user-visible compile fatals and internal consistency failures.
package errors

import (
	"fmt"
	"strings"
)

// Position identifies a source location a diagnostic is attached to.
type Position struct {
	Line   int
	Column int
}

// ErrorType distinguishes a user-visible compile error from an internal
// consistency failure of the emitter itself.
type ErrorType int

const (
	// CompileFatal is a user compile error (e.g. "break 3" with only two
	// enclosing loops). It is embedded in the output as a fatal
	// pseudo-instruction; compilation of the rest of the unit continues.
	CompileFatal ErrorType = iota
	// InternalError is an unrecoverable inconsistency in the emitter
	// itself (an instruction variant the scanner never expected to see).
	// It aborts compilation of the unit.
	InternalError
)

// Error represents a single diagnostic raised by the emitter.
type Error struct {
	Type     ErrorType
	Message  string
	Position Position
	Source   string
}

// NewCompileFatal creates a user-facing compile error.
func NewCompileFatal(message string, pos Position) *Error {
	return &Error{Type: CompileFatal, Message: message, Position: pos}
}

// NewInternalError creates an internal consistency error.
func NewInternalError(message string, pos Position) *Error {
	return &Error{Type: InternalError, Message: message, Position: pos}
}

func (e *Error) String() string {
	var typeStr string
	switch e.Type {
	case CompileFatal:
		typeStr = "Fatal error"
	case InternalError:
		typeStr = "Internal error"
	}
	return fmt.Sprintf("%s at line %d, column %d: %s",
		typeStr, e.Position.Line, e.Position.Column, e.Message)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.String()
}

// WithSource attaches the originating source text for formatted printing.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// PrintFormatted renders the error with the offending source line, when
// source text has been attached.
func (e *Error) PrintFormatted() string {
	if e.Source == "" {
		return e.String()
	}

	lines := strings.Split(e.Source, "\n")
	if e.Position.Line <= 0 || e.Position.Line > len(lines) {
		return e.String()
	}

	var b strings.Builder
	b.WriteString(e.String())
	b.WriteString("\n")

	errorLine := lines[e.Position.Line-1]
	fmt.Fprintf(&b, "  %d | %s\n", e.Position.Line, errorLine)

	b.WriteString("      | ")
	for i := 0; i < e.Position.Column; i++ {
		b.WriteString(" ")
	}
	b.WriteString("^\n")

	return b.String()
}

// ErrorList accumulates diagnostics raised while compiling one unit.
type ErrorList []*Error

func (el *ErrorList) Add(err *Error) {
	*el = append(*el, err)
}

func (el *ErrorList) AddCompileFatal(message string, pos Position) {
	el.Add(NewCompileFatal(message, pos))
}

func (el *ErrorList) AddInternalError(message string, pos Position) {
	el.Add(NewInternalError(message, pos))
}

func (el ErrorList) HasErrors() bool {
	return len(el) > 0
}

func (el ErrorList) Count() int {
	return len(el)
}

func (el ErrorList) String() string {
	var b strings.Builder
	for i, err := range el {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(err.String())
	}
	return b.String()
}

func (el ErrorList) Error() string {
	return el.String()
}

func (el ErrorList) FilterByType(errorType ErrorType) ErrorList {
	var filtered ErrorList
	for _, err := range el {
		if err.Type == errorType {
			filtered = append(filtered, err)
		}
	}
	return filtered
}

func (el ErrorList) GetCompileFatals() ErrorList {
	return el.FilterByType(CompileFatal)
}

func (el ErrorList) GetInternalErrors() ErrorList {
	return el.FilterByType(InternalError)
}

// ErrorReporter collects diagnostics for one compilation unit.
type ErrorReporter struct {
	errors ErrorList
	source string
}

func NewErrorReporter(source string) *ErrorReporter {
	return &ErrorReporter{errors: make(ErrorList, 0), source: source}
}

func (er *ErrorReporter) Report(err *Error) {
	if er.source != "" {
		err.WithSource(er.source)
	}
	er.errors.Add(err)
}

func (er *ErrorReporter) ReportCompileFatal(message string, pos Position) {
	er.Report(NewCompileFatal(message, pos))
}

func (er *ErrorReporter) ReportInternalError(message string, pos Position) {
	er.Report(NewInternalError(message, pos))
}

func (er *ErrorReporter) GetErrors() ErrorList {
	return er.errors
}

func (er *ErrorReporter) HasErrors() bool {
	return er.errors.HasErrors()
}

func (er *ErrorReporter) Clear() {
	er.errors = make(ErrorList, 0)
}

func (er *ErrorReporter) GetErrorCount() int {
	return er.errors.Count()
}
