package tryfinally

// fatalRecorder is a test double for FunctionState.Fatal that records
// every call instead of reporting through the errors package, and
// returns the same fatal pseudo-sequence the production emitter would.
type fatalRecorder struct {
	messages []string
}

func (r *fatalRecorder) record(message string, pos Position) *InstructionSequence {
	r.messages = append(r.messages, message)
	return NewSequence(Fatal{Message: message, Pos: pos})
}

func newTestFunctionState() (*FunctionState, *fatalRecorder) {
	rec := &fatalRecorder{}
	env := NewFunctionState(rec.record)
	return env, rec
}
