package tryfinally

import "strconv"

// EmitBreakOrContinue lowers a source `break level` (isBreak true) or
// `continue level` statement. Like EmitReturn, it is called both at the
// original statement site (inFinallyEpilogue false, stack is the live
// enclosing-frame stack) and from EmitFinallyEpilogue while building one
// finally's dispatch (inFinallyEpilogue true, stack has that finally's
// own frame already popped).
func EmitBreakOrContinue(isBreak bool, inFinallyEpilogue bool, env *FunctionState, pos Position, level int, stack *JumpTargetStack) *InstructionSequence {
	resolved := stack.GetTargetForLevel(isBreak, level)

	switch resolved.Kind {
	case KindNotFound:
		kind := "continue"
		if isBreak {
			kind = "break"
		}
		return env.Fatal("cannot "+kind+" "+strconv.Itoa(level)+" level(s)", pos)

	case KindRegular:
		seq := NewSequence()
		if inFinallyEpilogue && level == 1 {
			// This exit is about to leave the epilogue via its terminal
			// jump; the saved exit id has served its purpose and must be
			// disposed before control leaves.
			seq.Append(UnsetL{Local: env.Locals.Label()})
		}
		seq.Append(SrcLoc{Pos: pos})
		seq.Append(emitJumpToLabel(resolved.TargetLabel, resolved.IteratorsToRelease).Slice()...)
		return seq

	case KindTryFinally:
		seq := NewSequence()
		if !inFinallyEpilogue {
			// Already-saved (re-lowered from an inner epilogue) or about to
			// be saved now.
			seq.Append(emitSaveLabelId(env, resolved.TargetLabel).Slice()...)
		}
		seq.Append(emitJumpToLabel(resolved.FinallyLabel, resolved.IteratorsToRelease).Slice()...)
		seq.Append(SrcLoc{Pos: pos})
		// Dead once the jump above runs; kept so a scanner over an outer
		// try body that embeds this sequence still sees a pending
		// break/continue to key an exit id on.
		if isBreak {
			seq.Append(Break{Level: resolved.AdjustedLevel})
		} else {
			seq.Append(Continue{Level: resolved.AdjustedLevel})
		}
		return seq

	default:
		return NewSequence()
	}
}

// emitJumpToLabel is the ordinary (non-finally-crossing) lowering: an
// IterBreak if loop iterators need releasing on the way out, else a
// plain Jmp.
func emitJumpToLabel(target Label, iters []IterId) *InstructionSequence {
	if len(iters) > 0 {
		return NewSequence(IterBreak{Target: target, Iters: iters})
	}
	return NewSequence(Jmp{Target: target})
}

// emitSaveLabelId stashes the exit id for target into label_local.
func emitSaveLabelId(env *FunctionState, target Label) *InstructionSequence {
	id := env.Exits.IdForLabel(target)
	return NewSequence(Int{Value: int64(id)}, SetL{Local: env.Locals.Label()}, PopC{})
}
