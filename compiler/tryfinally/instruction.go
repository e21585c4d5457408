// Package tryfinally implements the try/finally lowering core of a
// bytecode emitter: it rewrites return/break/continue exits that cross a
// finally boundary into a jump into the finally body, an exit-id save,
// and a post-finally dispatch epilogue.
//
// The package does not parse, type-check, or emit ordinary expressions;
// it consumes already-emitted instruction sequences for a try body and a
// finally body and hands back rewritten sequences. See the five
// exported entry points: CollectExits, CleanupTryBody, EmitReturn,
// EmitBreakOrContinue, EmitFinallyEpilogue.
package tryfinally

import "github.com/mshen63/hhvm/opcodes"

// Instruction is a tagged sum over the VM instructions and pseudo-ops
// this core cares about. Concrete variants below are small structs that
// the scanner and cleaner tell apart with type switches; Tag reports the
// opcode each variant maps to (Raw and SrcLoc both report OP_NOP).
type Instruction interface {
	Tag() opcodes.Opcode
}

// Raw wraps an already-emitted instruction this core does not interpret
// (ordinary arithmetic, assignment, calls, inner control flow wholly
// contained within the try body). It passes through the scanner and
// cleaner untouched.
type Raw struct {
	Op *opcodes.Instruction
}

func (Raw) Tag() opcodes.Opcode { return opcodes.OP_NOP }

// RetC returns the single value on top of the stack.
type RetC struct{}

func (RetC) Tag() opcodes.Opcode { return opcodes.OP_RET_C }

// RetCSuspended returns the stack top from a suspended (async) frame.
type RetCSuspended struct{}

func (RetCSuspended) Tag() opcodes.Opcode { return opcodes.OP_RET_C_SUSPENDED }

// RetM returns N+1 values from the stack.
type RetM struct{ N int }

func (RetM) Tag() opcodes.Opcode { return opcodes.OP_RET_M }

// Break is the pseudo-instruction for a source `break Level`. It is
// never real bytecode: it exists only between statement emission and
// this rewriter, and cleanup_try_body always removes it.
type Break struct{ Level int }

func (Break) Tag() opcodes.Opcode { return opcodes.OP_BREAK_PSEUDO }

// Continue is the pseudo-instruction for a source `continue Level`.
type Continue struct{ Level int }

func (Continue) Tag() opcodes.Opcode { return opcodes.OP_CONTINUE_PSEUDO }

// Jmp is an unconditional jump to a label.
type Jmp struct{ Target Label }

func (Jmp) Tag() opcodes.Opcode { return opcodes.OP_GOTO }

// JmpZ jumps to Target if the popped stack top is falsy.
type JmpZ struct{ Target Label }

func (JmpZ) Tag() opcodes.Opcode { return opcodes.OP_JMPZ }

// IterBreak jumps to Target, releasing the given iterators on the way.
type IterBreak struct {
	Target Label
	Iters  []IterId
}

func (IterBreak) Tag() opcodes.Opcode { return opcodes.OP_ITER_BREAK }

// LabelInstr marks a branch target at this position in the sequence.
type LabelInstr struct{ Name Label }

func (LabelInstr) Tag() opcodes.Opcode { return opcodes.OP_LABEL }

// Switch is a dense jump table indexed by the integer on top of the
// stack (already loaded via CGetL by the caller).
type Switch struct{ Targets []Label }

func (Switch) Tag() opcodes.Opcode { return opcodes.OP_SWITCH_LONG }

// SetL stores the stack top into Local, leaving the value on the stack.
type SetL struct{ Local Local }

func (SetL) Tag() opcodes.Opcode { return opcodes.OP_SET_L }

// CGetL pushes Local's current value onto the stack.
type CGetL struct{ Local Local }

func (CGetL) Tag() opcodes.Opcode { return opcodes.OP_CGET_L }

// IsSetL pushes whether Local is currently set.
type IsSetL struct{ Local Local }

func (IsSetL) Tag() opcodes.Opcode { return opcodes.OP_ISSET_L }

// UnsetL clears Local.
type UnsetL struct{ Local Local }

func (UnsetL) Tag() opcodes.Opcode { return opcodes.OP_UNSET_L }

// PopC discards the stack top.
type PopC struct{}

func (PopC) Tag() opcodes.Opcode { return opcodes.OP_POP_C }

// Int pushes an integer literal.
type Int struct{ Value int64 }

func (Int) Tag() opcodes.Opcode { return opcodes.OP_INT }

// IterFree releases a loop iterator directly (not via a jump).
type IterFree struct{ Iter IterId }

func (IterFree) Tag() opcodes.Opcode { return opcodes.OP_ITER_FREE }

// VerifyRetTypeC verifies the stack top against an unreified return type.
type VerifyRetTypeC struct{}

func (VerifyRetTypeC) Tag() opcodes.Opcode { return opcodes.OP_VERIFY_RETURN_TYPE_C }

// VerifyRetTypeTS verifies the stack top against a reified type
// structure already pushed by the caller.
type VerifyRetTypeTS struct{}

func (VerifyRetTypeTS) Tag() opcodes.Opcode { return opcodes.OP_VERIFY_RETURN_TYPE_TS }

// Dup duplicates the stack top.
type Dup struct{}

func (Dup) Tag() opcodes.Opcode { return opcodes.OP_DUP }

// PrimitiveType is the operand of IsTypeC.
type PrimitiveType int

const (
	TypeNull PrimitiveType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeArray
	TypeObject
)

// IsTypeC pops the stack top and pushes whether it matched Of.
type IsTypeC struct{ Of PrimitiveType }

func (IsTypeC) Tag() opcodes.Opcode { return opcodes.OP_IS_TYPE_C }

// SrcLoc is a bookmark carrying a source position, emitted before a
// meaningful instruction for diagnostics.
type SrcLoc struct{ Pos Position }

func (SrcLoc) Tag() opcodes.Opcode { return opcodes.OP_NOP }

// Fatal is the pseudo-instruction substituted for a break/continue that
// could not be resolved against the enclosing frames (e.g. `break 3`
// with only two enclosing loops). It carries the diagnostic message so
// the fatal is raised at runtime, when the function is actually called,
// rather than aborting the rest of compilation.
type Fatal struct {
	Message string
	Pos     Position
}

func (Fatal) Tag() opcodes.Opcode { return opcodes.OP_FATAL_PSEUDO }

// Position is a source location with the same fields as
// errors.Position; toErrorsPosition converts it when a diagnostic is
// reported through the errors package.
type Position struct {
	Line   int
	Column int
}

// InstructionSequence is an ordered, splice-able list of instructions.
type InstructionSequence struct {
	instrs []Instruction
}

// NewSequence builds a sequence from the given instructions in order.
func NewSequence(instrs ...Instruction) *InstructionSequence {
	return &InstructionSequence{instrs: append([]Instruction{}, instrs...)}
}

// Empty reports whether the sequence has no instructions.
func (s *InstructionSequence) Empty() bool {
	return s == nil || len(s.instrs) == 0
}

// Len returns the instruction count.
func (s *InstructionSequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.instrs)
}

// Each calls fn for every instruction in order.
func (s *InstructionSequence) Each(fn func(Instruction)) {
	if s == nil {
		return
	}
	for _, i := range s.instrs {
		fn(i)
	}
}

// Slice returns the underlying instructions in order. Callers must not
// mutate the returned slice.
func (s *InstructionSequence) Slice() []Instruction {
	if s == nil {
		return nil
	}
	return s.instrs
}

// Append adds instructions to the end of the sequence.
func (s *InstructionSequence) Append(instrs ...Instruction) {
	s.instrs = append(s.instrs, instrs...)
}

// Retain keeps only the instructions for which keep returns true,
// preserving relative order.
func (s *InstructionSequence) Retain(keep func(Instruction) bool) {
	if s == nil {
		return
	}
	out := s.instrs[:0]
	for _, i := range s.instrs {
		if keep(i) {
			out = append(out, i)
		}
	}
	s.instrs = out
}

// Gather flattens a list of sequences (some possibly nil/empty) into one.
func Gather(seqs ...*InstructionSequence) *InstructionSequence {
	out := &InstructionSequence{}
	for _, s := range seqs {
		if s == nil {
			continue
		}
		out.instrs = append(out.instrs, s.instrs...)
	}
	return out
}

// IterId identifies a loop iterator live on the jump-target stack.
type IterId int
