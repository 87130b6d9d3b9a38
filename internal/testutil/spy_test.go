package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adv0cat/quench-store/internal/store"
)

func TestSpyStore_CountsWatchAndUnsubscribe(t *testing.T) {
	spy := NewSpyStore[int](store.New("a", 1))

	unsubscribe := spy.Watch(func(int, store.ActionInfo) {})
	assert.Equal(t, 1, spy.Watches())
	assert.Equal(t, 1, spy.ActiveWatches())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, spy.Watches())
	assert.Equal(t, 0, spy.ActiveWatches())
}

func TestSpyStore_RecordsActions(t *testing.T) {
	spy := NewSpyStore[int](store.New("a", 1))

	set := store.Setter[int](spy)
	inc := spy.Action(func(state int, _ ...any) store.Update[int] { return store.Set(state + 1) })

	assert.True(t, set(5))
	assert.True(t, inc())
	assert.Equal(t, []string{"a.#set", ""}, spy.Registrations())
	assert.Equal(t, 2, spy.Dispatches())
	assert.Equal(t, 6, spy.Get())
}

func TestRecorder_CollectsNotifications(t *testing.T) {
	s := store.New("a", 1)
	rec := Record[int](s)

	set := s.Action(func(_ int, args ...any) store.Update[int] {
		return store.Set(args[0].(int))
	}, store.WithActionID("set"))
	set(2)
	set(3)

	require.Equal(t, 2, rec.Len())
	assert.Equal(t, 3, rec.Last().State)
	assert.Equal(t, []string{"set", "set"}, rec.ActionIDs())
}
