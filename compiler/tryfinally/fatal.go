package tryfinally

import "github.com/mshen63/hhvm/errors"

// NewFatalEmitter returns a FunctionState.Fatal callback that records the
// diagnostic on reporter and produces the fatal pseudo-instruction
// sequence substituted for the break/continue that could not be
// resolved, so the surrounding emitter can keep compiling the rest of
// the function.
func NewFatalEmitter(reporter *errors.ErrorReporter) func(message string, pos Position) *InstructionSequence {
	return func(message string, pos Position) *InstructionSequence {
		reporter.ReportCompileFatal(message, toErrorsPosition(pos))
		return NewSequence(Fatal{Message: message, Pos: pos})
	}
}
