package join

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adv0cat/quench-store/internal/store"
)

func TestComputeID(t *testing.T) {
	a := store.New("a", 1)
	b := store.New("b", 2)

	assert.Equal(t, "{a}", computeID([]Input{Bind[int]("x", a)}))
	assert.Equal(t, "{b;a}", computeID([]Input{Bind[int]("y", b), Bind[int]("x", a)}))
}

func TestStore_Classify(t *testing.T) {
	j := &Store{writing: map[string]int{}}

	assert.Equal(t, externalChange, j.classify(store.ActionInfo{ActionID: "a.#set"}))

	j.writing["a.#set"]++
	assert.Equal(t, selfWrite, j.classify(store.ActionInfo{ActionID: "a.#set"}))
	assert.Equal(t, externalChange, j.classify(store.ActionInfo{ActionID: "b.#set"}))
	assert.Equal(t, externalChange, j.classify(store.ActionInfo{ActionID: "other"}))
	assert.Equal(t, "self_write", selfWrite.String())
	assert.Equal(t, "external_change", externalChange.String())
}

func TestStore_WriteTracksSetterID(t *testing.T) {
	a := store.New("a", 1)
	j := MustNew([]Input{Bind[int]("x", a)})
	r := j.bindings[0]

	var during origin
	a.Watch(func(int, store.ActionInfo) {
		during = j.classify(store.ActionInfo{ActionID: "a.#set"})
	})

	assert.True(t, j.write(r, 2))
	assert.Equal(t, selfWrite, during)
	assert.Empty(t, j.writing)
	assert.Equal(t, externalChange, j.classify(store.ActionInfo{ActionID: "a.#set"}))
}
