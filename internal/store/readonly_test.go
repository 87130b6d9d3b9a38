package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadOnly_ForwardsReads(t *testing.T) {
	inner := New("config", "v1")
	view := ReadOnly[string](inner)

	assert.Equal(t, "config", view.ID())
	assert.Equal(t, "v1", view.Get())
	assert.True(t, view.IsReadOnly())
}

func TestReadOnly_RejectsActions(t *testing.T) {
	inner := New("config", "v1")
	view := ReadOnly[string](inner)

	assert.False(t, Setter(view)("v2"))
	assert.Equal(t, "v1", inner.Get())
}

func TestReadOnly_ObservesInnerWrites(t *testing.T) {
	inner := New("config", "v1")
	view := ReadOnly[string](inner)

	var seen []string
	view.Watch(func(state string, _ ActionInfo) { seen = append(seen, state) })

	Setter[string](inner)("v2")

	assert.Equal(t, []string{"v2"}, seen)
}
