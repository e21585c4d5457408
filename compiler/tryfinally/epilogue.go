package tryfinally

// EmitFinallyEpilogue builds the dispatch that runs immediately after a
// finally body falls off its end: it inspects label_local (set only if
// control reached the finally via a crossing return/break/continue
// rather than by falling into the try normally) and routes to whichever
// exit that id names, or falls through to finallyEnd for ordinary
// completion.
//
// stack must already have this finally's own frame popped (see
// JumpTargetStack.Clone), since every case body re-resolves its
// break/continue/return against whatever still encloses this finally.
func EmitFinallyEpilogue(env *FunctionState, pos Position, exitSet *ExitSet, finallyEnd Label, stack *JumpTargetStack) (*InstructionSequence, error) {
	records := exitSet.Sorted()
	if len(records) == 0 {
		return NewSequence(), nil
	}

	labelLocal := env.Locals.Label()

	if len(records) == 1 {
		seq := NewSequence(SrcLoc{Pos: pos}, IsSetL{Local: labelLocal}, JmpZ{Target: finallyEnd})
		body, err := buildExitCase(env, pos, records[0], stack)
		if err != nil {
			return nil, err
		}
		seq.Append(body.Slice()...)
		return seq, nil
	}

	maxId := records[len(records)-1].Id
	targets := make([]Label, maxId+1)
	for i := range targets {
		targets[i] = finallyEnd
	}
	caseLabels := make(map[ExitId]Label, len(records))
	for _, r := range records {
		l := env.Labels.Next()
		caseLabels[r.Id] = l
		targets[r.Id] = l
	}

	seq := NewSequence(SrcLoc{Pos: pos}, IsSetL{Local: labelLocal}, JmpZ{Target: finallyEnd}, CGetL{Local: labelLocal}, Switch{Targets: targets})
	for _, r := range records {
		seq.Append(LabelInstr{Name: caseLabels[r.Id]})
		body, err := buildExitCase(env, pos, r, stack)
		if err != nil {
			return nil, err
		}
		seq.Append(body.Slice()...)
	}
	// label_local is left set after dispatch rather than unset here: a
	// further-out finally's own epilogue reloads it fresh via its own
	// save before ever reading it, so the stale value is harmless, just
	// not tidied up.
	return seq, nil
}

func buildExitCase(env *FunctionState, pos Position, r ExitRecord, stack *JumpTargetStack) (*InstructionSequence, error) {
	if r.Kind == ExitReturn {
		return EmitReturn(true, env, stack), nil
	}
	return EmitBreakOrContinue(r.IsBreak, true, env, pos, r.Level, stack), nil
}
