package tryfinally

// EmitReturn lowers a source `return` statement. Two call sites use it:
//
//   - inFinallyEpilogue == false: the statement emitter reached a
//     `return` with the value already on the stack. If no finally
//     encloses this point, it verifies, runs verify-outputs, frees any
//     iterators still live on the stack, and returns directly. If a
//     finally does enclose, the value and the distinguished return exit
//     id are stashed into retval_local/label_local, control jumps into
//     the finally, and a trailing RetC sentinel is appended so that an
//     outer try/finally's own scanner can detect the crossing (see
//     CollectExits) even though the sentinel itself never executes.
//   - inFinallyEpilogue == true: EmitFinallyEpilogue calls back into
//     this function to build the return case of its dispatch, after the
//     finally body has already run to completion. The value is reloaded
//     from retval_local first. If another finally still encloses (stack
//     here has this finally's own frame already popped), the same
//     save-and-jump happens again, hopping the value to the next
//     finally out; otherwise this is the real return.
func EmitReturn(inFinallyEpilogue bool, env *FunctionState, stack *JumpTargetStack) *InstructionSequence {
	finallyLabel, iters, ok := stack.GetClosestEnclosingFinallyLabel()
	if !ok {
		return emitDirectReturn(env, inFinallyEpilogue, stack)
	}

	seq := NewSequence()
	if inFinallyEpilogue {
		// The value just finished round-tripping through retval_local for
		// the finally this epilogue belongs to; reload it before stashing
		// it again for the next finally out.
		seq.Append(CGetL{Local: env.Locals.Retval()})
	}
	seq.Append(emitReturnViaFinally(env, finallyLabel, iters).Slice()...)
	return seq
}

func emitReturnViaFinally(env *FunctionState, finallyLabel Label, iters []IterId) *InstructionSequence {
	id := env.Exits.IdForReturn()
	labelLocal := env.Locals.Label()
	retval := env.Locals.Retval()

	seq := NewSequence(
		Int{Value: int64(id)}, SetL{Local: labelLocal}, PopC{},
		SetL{Local: retval}, PopC{},
	)
	if len(iters) > 0 {
		seq.Append(IterBreak{Target: finallyLabel, Iters: iters})
	} else {
		seq.Append(Jmp{Target: finallyLabel})
	}
	// Dead once the jump above runs; kept so a scanner over an outer
	// try body that embeds this sequence still sees a return-family
	// instruction to key an exit id on.
	seq.Append(RetC{})
	return seq
}

func emitDirectReturn(env *FunctionState, inFinallyEpilogue bool, stack *JumpTargetStack) *InstructionSequence {
	seq := NewSequence()
	if inFinallyEpilogue {
		seq.Append(CGetL{Local: env.Locals.Retval()})
	}
	seq.Append(verifyReturnType(env)...)
	seq.Append(env.VerifyOut.Slice()...)
	for _, it := range stack.AllLiveIterators() {
		seq.Append(IterFree{Iter: it})
	}
	seq.Append(returnOp(env))
	return seq
}

// verifyReturnType builds the instructions that check the value already
// on the stack against env's declared return type, choosing the plain,
// nullable-reified, or unconditionally-reified verify strategy.
func verifyReturnType(env *FunctionState) []Instruction {
	switch env.Reified.Classify(env.ReturnTypeHint) {
	case Unconstrained:
		return nil
	case NotReified:
		return []Instruction{VerifyRetTypeC{}}
	case MaybeReified:
		ts := env.Reified.PushTypeStructure(env.ReturnTypeHint).Slice()
		return append(append([]Instruction{}, ts...), VerifyRetTypeTS{})
	case DefinitelyReified:
		// A nullable reified return skips verification entirely when the
		// value is null, rather than pushing a type structure that would
		// reject it.
		skip := env.Labels.Next()
		after := env.Labels.Next()
		out := []Instruction{Dup{}, IsTypeC{Of: TypeNull}, JmpZ{Target: skip}}
		out = append(out, Jmp{Target: after})
		out = append(out, LabelInstr{Name: skip})
		out = append(out, env.Reified.PushTypeStructure(env.ReturnTypeHint).Slice()...)
		out = append(out, VerifyRetTypeTS{})
		out = append(out, LabelInstr{Name: after})
		return out
	default:
		return nil
	}
}

// returnOp is the actual machine return, chosen by arity; the value (or
// values, for RetM) must already be on the stack.
func returnOp(env *FunctionState) Instruction {
	if env.NumOut > 0 {
		return RetM{N: env.NumOut}
	}
	return RetC{}
}
