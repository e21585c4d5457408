package tryfinally

import "fmt"

// Local is a slot in the function's local-variable table.
type Local struct {
	id int
}

func (l Local) String() string {
	return fmt.Sprintf("$tf_local%d", l.id)
}

// LocalGenerator allocates function-scoped temporaries, and lazily
// caches the two specials this core needs: label_local (the exit-id
// save slot) and retval_local (the pending return value). Both are
// allocated on first use and reused thereafter within the function.
type LocalGenerator struct {
	next   int
	label  *Local
	retval *Local
}

// NewLocalGenerator returns a generator with no locals allocated.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

// Fresh allocates a new, never-reused local slot.
func (g *LocalGenerator) Fresh() Local {
	l := Local{id: g.next}
	g.next++
	return l
}

// Label returns the function's label_local, allocating it on first call.
func (g *LocalGenerator) Label() Local {
	if g.label == nil {
		l := g.Fresh()
		g.label = &l
	}
	return *g.label
}

// Retval returns the function's retval_local, allocating it on first call.
func (g *LocalGenerator) Retval() Local {
	if g.retval == nil {
		l := g.Fresh()
		g.retval = &l
	}
	return *g.retval
}
