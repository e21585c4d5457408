package tryfinally

import (
	"sort"

	"github.com/mshen63/hhvm/errors"
)

// ExitKind distinguishes a jump exit (break/continue that resolved past
// the enclosing finally) from the distinguished return exit.
type ExitKind int

const (
	ExitJump ExitKind = iota
	ExitReturn
)

// ExitRecord is one entry of an ExitSet: everything the epilogue builder
// needs to re-lower a single exit id. Jump exits keep the *original*
// isBreak/level rather than a precomputed target: EmitFinallyEpilogue
// re-resolves them against the stack with this finally's own frame
// already popped, which is what correctly turns a break that needed to
// cross this finally into either a direct jump (nothing further
// encloses it) or a propagated pseudo (another finally still does).
type ExitRecord struct {
	Id      ExitId
	Kind    ExitKind
	IsBreak bool // valid when Kind == ExitJump
	Level   int  // valid when Kind == ExitJump
}

// ExitSet is the result of scanning a try body: one record per distinct
// ExitId reachable out of it, ascending by id. Two break/continue
// instructions that resolve to the same target label collapse to a
// single record, keyed by the first one scanned.
type ExitSet struct {
	byId map[ExitId]ExitRecord
}

// Len returns the number of distinct exits.
func (e *ExitSet) Len() int {
	if e == nil {
		return 0
	}
	return len(e.byId)
}

// Sorted returns the records in ascending id order. Gaps between ids are
// expected: the allocator is shared across a function's try/finally
// regions, so an id consumed elsewhere never appears here.
func (e *ExitSet) Sorted() []ExitRecord {
	if e == nil {
		return nil
	}
	out := make([]ExitRecord, 0, len(e.byId))
	for _, r := range e.byId {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (e *ExitSet) insert(r ExitRecord) {
	if _, ok := e.byId[r.Id]; ok {
		return
	}
	e.byId[r.Id] = r
}

// CollectExits walks a try body, already emitted and possibly containing
// Break/Continue pseudo-instructions and RetC/RetCSuspended/RetM
// instructions left behind as sentinels by EmitBreakOrContinue/EmitReturn
// (at this level or in a nested finally's epilogue), and resolves each
// one against stack to assign it an exit id via allocator. Every
// Break/Continue that resolves, whether as KindRegular or as
// KindTryFinally, is recorded; only KindNotFound is skipped (see
// recordJumpExit). Call it before CleanupTryBody, which removes these
// instructions.
func CollectExits(body *InstructionSequence, allocator *ExitIdAllocator, stack *JumpTargetStack) (*ExitSet, error) {
	set := &ExitSet{byId: make(map[ExitId]ExitRecord)}
	var scanErr error
	body.Each(func(instr Instruction) {
		if scanErr != nil {
			return
		}
		switch v := instr.(type) {
		case Break:
			resolved := stack.GetTargetForLevel(true, v.Level)
			recordJumpExit(set, allocator, resolved, true, v.Level)
		case Continue:
			resolved := stack.GetTargetForLevel(false, v.Level)
			recordJumpExit(set, allocator, resolved, false, v.Level)
		case RetC:
			set.insert(ExitRecord{Id: allocator.IdForReturn(), Kind: ExitReturn})
		case RetCSuspended:
			set.insert(ExitRecord{Id: allocator.IdForReturn(), Kind: ExitReturn})
		case RetM:
			set.insert(ExitRecord{Id: allocator.IdForReturn(), Kind: ExitReturn})
		case Raw, Jmp, JmpZ, IterBreak, LabelInstr, Switch, SetL, CGetL, IsSetL,
			UnsetL, PopC, Int, IterFree, VerifyRetTypeC, VerifyRetTypeTS, Dup,
			IsTypeC, SrcLoc, Fatal:
			// ordinary instructions, or control flow already resolved by an
			// earlier pass; nothing for this scan to do.
		default:
			scanErr = errors.NewInternalError("collect_exits: unrecognized instruction variant", errors.Position{})
		}
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return set, nil
}

func recordJumpExit(set *ExitSet, allocator *ExitIdAllocator, resolved ResolvedJumpTarget, isBreak bool, level int) {
	if resolved.Kind == KindNotFound {
		// A Break/Continue pseudo only ever reaches a try body because an
		// inner finally's epilogue already proved it crosses at least one
		// more finally; a stack that can't resolve it here is a bug in the
		// emitter driving this package, not a user error. The scanner has
		// no position to attach, so it leaves the fatal to the caller
		// that built the stack incorrectly rather than panicking here.
		return
	}
	id := allocator.IdForLabel(resolved.TargetLabel)
	set.insert(ExitRecord{Id: id, Kind: ExitJump, IsBreak: isBreak, Level: level})
}

// CleanupTryBody removes the pseudo-instructions and bare returns that
// EmitBreakOrContinue/EmitReturn leave behind as sentinels: once the
// enclosing finally has a full exit set, the try body itself must never
// execute a real return or an unresolved break/continue, since control
// always has to pass through the finally first.
func CleanupTryBody(body *InstructionSequence) *InstructionSequence {
	body.Retain(func(instr Instruction) bool {
		switch instr.(type) {
		case Break, Continue, RetC, RetCSuspended, RetM:
			return false
		default:
			return true
		}
	})
	return body
}
