package tryfinally

import "github.com/mshen63/hhvm/errors"

// FunctionState bundles the per-function collaborators EmitReturn,
// EmitBreakOrContinue, and EmitFinallyEpilogue need but do not own:
// label/local generators, the shared exit-id allocator (see
// ExitIdAllocator's doc comment on why it is function-, not
// region-scoped), the function's declared return type, and the reified
// generics helper standing in for the surrounding emitter.
type FunctionState struct {
	Labels *LabelGenerator
	Locals *LocalGenerator
	Exits  *ExitIdAllocator

	// NumOut is the arity of a multi-value return (RetM); zero means the
	// function returns a single value via RetC.
	NumOut int

	// VerifyOut is an opaque, precomputed sequence verifying by-ref
	// output parameters, supplied by the surrounding emitter and
	// appended verbatim after return-type verification and before the
	// actual return op. Empty (the default NewSequence()) for functions
	// with no output parameters.
	VerifyOut *InstructionSequence

	// ReturnTypeHint is the function's declared return type, or empty
	// for no hint. Passed to Reified.Classify to decide verification
	// strategy in EmitReturn.
	ReturnTypeHint string
	Reified        ReifiedGenericsHelper

	// Fatal reports a compile fatal at pos (e.g. break/continue past the
	// function boundary) and returns the fatal pseudo-instruction sequence
	// to substitute for the break/continue that could not be resolved.
	// It does not stop emission: the caller embeds the returned sequence
	// in the output and keeps going, collecting further diagnostics in
	// the same pass.
	Fatal func(message string, pos Position) *InstructionSequence
}

// NewFunctionState returns a FunctionState with fresh generators and no
// return type hint, reporting fatals through fatal.
func NewFunctionState(fatal func(message string, pos Position) *InstructionSequence) *FunctionState {
	return &FunctionState{
		Labels:    NewLabelGenerator(),
		Locals:    NewLocalGenerator(),
		Exits:     NewExitIdAllocator(),
		VerifyOut: NewSequence(),
		Reified:   NoReifiedGenerics{},
		Fatal:     fatal,
	}
}

func toErrorsPosition(p Position) errors.Position {
	return errors.Position{Line: p.Line, Column: p.Column}
}
