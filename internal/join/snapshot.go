package join

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Snapshot is an immutable, ordered mapping from key to value.
//
// A join replaces its snapshot on every accepted change; a Snapshot handed
// to a watcher stays valid and unchanged forever. The zero Snapshot is empty.
type Snapshot struct {
	data *snapshotData
}

type snapshotData struct {
	keys   []string
	values map[string]any
}

// Patch builds a Snapshot from values, with keys in sorted order. It is the
// usual way to return a partial result from a composite reducer.
func Patch(values map[string]any) Snapshot {
	keys := make([]string, 0, len(values))
	copied := make(map[string]any, len(values))
	for key, value := range values {
		keys = append(keys, key)
		copied[key] = value
	}
	slices.Sort(keys)
	return Snapshot{data: &snapshotData{keys: keys, values: copied}}
}

// Len returns the number of keys.
func (s Snapshot) Len() int {
	if s.data == nil {
		return 0
	}
	return len(s.data.keys)
}

// Keys returns the keys in order. The returned slice is a copy.
func (s Snapshot) Keys() []string {
	if s.data == nil {
		return nil
	}
	return append([]string(nil), s.data.keys...)
}

// Lookup returns the value for key and whether key is present.
func (s Snapshot) Lookup(key string) (any, bool) {
	if s.data == nil {
		return nil, false
	}
	value, ok := s.data.values[key]
	return value, ok
}

// Get returns the value for key, or nil.
func (s Snapshot) Get(key string) any {
	value, _ := s.Lookup(key)
	return value
}

// Has reports whether key is present.
func (s Snapshot) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// With returns a copy of s with key set to value. New keys are appended.
func (s Snapshot) With(key string, value any) Snapshot {
	keys := s.Keys()
	values := make(map[string]any, s.Len()+1)
	if s.data != nil {
		for k, v := range s.data.values {
			values[k] = v
		}
	}
	if _, ok := values[key]; !ok {
		keys = append(keys, key)
	}
	values[key] = value
	return Snapshot{data: &snapshotData{keys: keys, values: values}}
}

// Same reports whether s and other are the same snapshot instance.
func (s Snapshot) Same(other Snapshot) bool {
	return s.data == other.data
}

// ToMap returns a plain map copy. Nested snapshots are converted as well.
func (s Snapshot) ToMap() map[string]any {
	out := make(map[string]any, s.Len())
	if s.data == nil {
		return out
	}
	for key, value := range s.data.values {
		if nested, ok := value.(Snapshot); ok {
			out[key] = nested.ToMap()
			continue
		}
		out[key] = value
	}
	return out
}

// String renders the snapshot in key order, e.g. "{x:1 y:2}".
func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range s.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%v", key, s.data.values[key])
	}
	b.WriteByte('}')
	return b.String()
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, s.Len())
	for _, key := range s.Keys() {
		attrs = append(attrs, slog.Any(key, s.data.values[key]))
	}
	return slog.GroupValue(attrs...)
}

// Value returns the value under key as a T. It reports false when the key
// is missing or holds another type.
func Value[T any](s Snapshot, key string) (T, bool) {
	raw, ok := s.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	value, ok := raw.(T)
	return value, ok
}

// computeSnapshot reads every input once, in input order.
func (j *Store) computeSnapshot() Snapshot {
	keys := make([]string, len(j.inputs))
	values := make(map[string]any, len(j.inputs))
	for i, in := range j.inputs {
		keys[i] = in.Key
		values[in.Key] = in.source.get()
	}
	return Snapshot{data: &snapshotData{keys: keys, values: values}}
}
