// Package compiler hosts the statement-level driver around the
// tryfinally lowering core: the part of a bytecode emitter that decides
// when a try/finally needs rewriting at all and threads the jump-target
// stack through a function's statements. It does not parse or execute
// anything; callers hand it already-built instruction sequences for a
// try body and a finally body.
package compiler

import "github.com/mshen63/hhvm/compiler/tryfinally"

// TryFinallyStatement is the minimal shape a surrounding statement
// emitter would hand to this driver: a try body and a finally body,
// each already emitted (ordinary expressions lowered, any nested
// control flow already resolved), plus the position of the `finally`
// keyword for diagnostics.
type TryFinallyStatement struct {
	TryBody     *tryfinally.InstructionSequence
	FinallyBody *tryfinally.InstructionSequence
	Pos         tryfinally.Position
}

// CompileTryFinally lowers one try/finally statement: it scans the try
// body for exits that need to cross the finally, strips them out of the
// try body, and appends a dispatch epilogue after the finally body that
// routes each exit to its real destination.
//
// stack must reflect the jump-target frames enclosing this statement;
// on return the statement's own FinallyFrame has been pushed and popped
// again, leaving stack as the caller passed it.
func CompileTryFinally(env *tryfinally.FunctionState, stack *tryfinally.JumpTargetStack, stmt TryFinallyStatement) (*tryfinally.InstructionSequence, error) {
	finallyLabel := env.Labels.Next()
	finallyEnd := env.Labels.Next()

	stack.Push(tryfinally.FinallyFrame{FinallyLabel: finallyLabel})
	exits, err := tryfinally.CollectExits(stmt.TryBody, env.Exits, stack)
	stack.Pop()
	if err != nil {
		return nil, err
	}

	tryfinally.CleanupTryBody(stmt.TryBody)

	epilogue, err := tryfinally.EmitFinallyEpilogue(env, stmt.Pos, exits, finallyEnd, stack)
	if err != nil {
		return nil, err
	}

	out := tryfinally.NewSequence()
	out.Append(stmt.TryBody.Slice()...)
	out.Append(tryfinally.LabelInstr{Name: finallyLabel})
	out.Append(stmt.FinallyBody.Slice()...)
	out.Append(epilogue.Slice()...)
	out.Append(tryfinally.LabelInstr{Name: finallyEnd})
	return out, nil
}
