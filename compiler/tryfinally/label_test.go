package tryfinally

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelGenerator_Next(t *testing.T) {
	g := NewLabelGenerator()
	l0 := g.Next()
	l1 := g.Next()
	l2 := g.Next()

	assert.Equal(t, "L0", l0.String())
	assert.Equal(t, "L1", l1.String())
	assert.Equal(t, "L2", l2.String())
	assert.NotEqual(t, l0, l1)
}

func TestLocalGenerator_LabelAndRetvalAreStable(t *testing.T) {
	g := NewLocalGenerator()

	label1 := g.Label()
	label2 := g.Label()
	assert.Equal(t, label1, label2, "label_local must be the same slot on every call")

	retval1 := g.Retval()
	retval2 := g.Retval()
	assert.Equal(t, retval1, retval2, "retval_local must be the same slot on every call")

	assert.NotEqual(t, label1, retval1, "label_local and retval_local must be distinct slots")

	fresh := g.Fresh()
	assert.NotEqual(t, fresh, label1)
	assert.NotEqual(t, fresh, retval1)
}

func TestExitIdAllocator_IdForLabelIsStable(t *testing.T) {
	a := NewExitIdAllocator()
	g := NewLabelGenerator()
	l1 := g.Next()
	l2 := g.Next()

	id1a := a.IdForLabel(l1)
	id2 := a.IdForLabel(l2)
	id1b := a.IdForLabel(l1)

	assert.Equal(t, id1a, id1b, "requesting the same label twice must return the same id")
	assert.NotEqual(t, id1a, id2)
}

func TestExitIdAllocator_ReturnIdMayFollowLabels(t *testing.T) {
	a := NewExitIdAllocator()
	g := NewLabelGenerator()

	idBreak := a.IdForLabel(g.Next())
	idReturn := a.IdForReturn()
	idReturnAgain := a.IdForReturn()

	assert.Equal(t, idReturn, idReturnAgain)
	assert.NotEqual(t, idBreak, idReturn)
	assert.True(t, idReturn > idBreak, "the return id is allocated after the label already seen")
}
