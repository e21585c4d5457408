package tryfinally

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitReturn_NoEnclosingFinally(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack()

	seq := EmitReturn(false, env, stack)

	assert.Equal(t, []Instruction{RetC{}}, seq.Slice())
}

func TestEmitReturn_NoEnclosingFinally_ReleasesLiveIterators(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack()
	stack.Push(LoopFrame{IteratorsOnStack: []IterId{2, 5}})

	seq := EmitReturn(false, env, stack)

	assert.Equal(t, []Instruction{
		IterFree{Iter: 2},
		IterFree{Iter: 5},
		RetC{},
	}, seq.Slice())
}

func TestEmitReturn_ViaEnclosingFinally(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack()
	finallyLabel := Label{id: 9}
	stack.Push(FinallyFrame{FinallyLabel: finallyLabel})

	seq := EmitReturn(false, env, stack)

	want := []Instruction{
		Int{Value: int64(env.Exits.IdForReturn())},
		SetL{Local: env.Locals.Label()},
		PopC{},
		SetL{Local: env.Locals.Retval()},
		PopC{},
		Jmp{Target: finallyLabel},
		RetC{},
	}
	assert.Equal(t, want, seq.Slice())
}

func TestEmitReturn_ViaEnclosingFinally_ReleasesIteratorsWithIterBreak(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack()
	finallyLabel := Label{id: 9}
	stack.Push(FinallyFrame{FinallyLabel: finallyLabel})
	stack.Push(LoopFrame{IteratorsOnStack: []IterId{1}})

	seq := EmitReturn(false, env, stack)

	last := seq.Slice()[len(seq.Slice())-2]
	assert.Equal(t, IterBreak{Target: finallyLabel, Iters: []IterId{1}}, last)
}

func TestEmitReturn_InEpilogue_NoFurtherFinally(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack() // this finally's own frame already popped by the caller

	seq := EmitReturn(true, env, stack)

	assert.Equal(t, []Instruction{
		CGetL{Local: env.Locals.Retval()},
		RetC{},
	}, seq.Slice())
}

func TestEmitReturn_InEpilogue_PropagatesToOuterFinally(t *testing.T) {
	env, _ := newTestFunctionState()
	stack := NewJumpTargetStack()
	outerFinally := Label{id: 3}
	stack.Push(FinallyFrame{FinallyLabel: outerFinally})

	seq := EmitReturn(true, env, stack)

	instrs := seq.Slice()
	assert.Equal(t, CGetL{Local: env.Locals.Retval()}, instrs[0])
	assert.Equal(t, Jmp{Target: outerFinally}, instrs[len(instrs)-2])
	assert.Equal(t, RetC{}, instrs[len(instrs)-1])
}

func TestEmitReturn_VerifyRetTypeC(t *testing.T) {
	env, _ := newTestFunctionState()
	env.ReturnTypeHint = "int"
	stack := NewJumpTargetStack()

	seq := EmitReturn(false, env, stack)

	assert.Equal(t, []Instruction{VerifyRetTypeC{}, RetC{}}, seq.Slice())
}

type reifiedHelperStub struct {
	level Reification
}

func (s reifiedHelperStub) Classify(string) Reification { return s.level }

func (s reifiedHelperStub) PushTypeStructure(string) *InstructionSequence {
	return NewSequence(Raw{})
}

func TestEmitReturn_DefinitelyReified_HasNullBypass(t *testing.T) {
	env, _ := newTestFunctionState()
	env.ReturnTypeHint = "T"
	env.Reified = reifiedHelperStub{level: DefinitelyReified}
	stack := NewJumpTargetStack()

	seq := EmitReturn(false, env, stack)

	instrs := seq.Slice()
	assert.Equal(t, Dup{}, instrs[0])
	assert.Equal(t, IsTypeC{Of: TypeNull}, instrs[1])
	assert.IsType(t, JmpZ{}, instrs[2])
	assert.Equal(t, RetC{}, instrs[len(instrs)-1])
}

func TestEmitReturn_MultiValueReturn(t *testing.T) {
	env, _ := newTestFunctionState()
	env.NumOut = 2
	stack := NewJumpTargetStack()

	seq := EmitReturn(false, env, stack)

	assert.Equal(t, []Instruction{RetM{N: 2}}, seq.Slice())
}
