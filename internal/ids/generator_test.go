package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Next(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, "#1", seq.Next())
	assert.Equal(t, "#2", seq.Next())
	assert.Equal(t, "#3", seq.Next())
}

func TestSequence_ResumesAt(t *testing.T) {
	seq := NewSequenceAt(41)
	assert.Equal(t, "#42", seq.Next())
}

func TestResolve_PrefersExplicitID(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, "rename", Resolve(seq, "rename"))
	// The sequence was not consumed.
	assert.Equal(t, "#1", Resolve(seq, ""))
}

func TestResolve_NilGeneratorUsesDefault(t *testing.T) {
	a := Resolve(nil, "")
	b := Resolve(nil, "")

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestUUIDv7_ValidFormat(t *testing.T) {
	id := UUIDv7{}.Next()

	assert.Len(t, id, 36)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7_Concurrent(t *testing.T) {
	gen := UUIDv7{}
	const goroutines = 100

	out := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- gen.Next()
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool)
	for id := range out {
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixed_Sequential(t *testing.T) {
	gen := NewFixed("edit-1", "edit-2")

	assert.Equal(t, "edit-1", gen.Next())
	assert.Equal(t, "edit-2", gen.Next())
}

func TestFixed_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixed("edit-1")
	gen.Next()

	assert.PanicsWithValue(t, "ids.Fixed: all ids exhausted", func() {
		gen.Next()
	})
}
