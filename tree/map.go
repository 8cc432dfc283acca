package tree

import (
	"slices"
)

// Map is a string-keyed mapping that remembers declaration order.
//
// Values are nil, scalars (string, bool, int, int64, float64, ...),
// sequences ([]any), or nested *Map. The zero value is not usable; use New.
type Map struct {
	keys   []string
	values map[string]any
}

// New creates an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// NewWithCapacity creates an empty Map sized for n keys.
func NewWithCapacity(n int) *Map {
	return &Map{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Len returns the number of keys. A nil Map has length 0.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in declaration order, or nil when m is empty. The
// returned slice is a copy.
func (m *Map) Keys() []string {
	if m == nil || len(m.keys) == 0 {
		return nil
	}
	return slices.Clone(m.keys)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored under key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetMap returns the value under key when it is a *Map, or nil otherwise.
func (m *Map) GetMap(key string) *Map {
	v, _ := m.Get(key)
	child, _ := v.(*Map)
	return child
}

// GetString returns the value under key when it is a string.
func (m *Map) GetString(key string) (string, bool) {
	v, _ := m.Get(key)
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key, if present.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
}

// Range calls fn for each entry in declaration order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	cp := NewWithCapacity(len(m.keys))
	for _, k := range m.keys {
		cp.keys = append(cp.keys, k)
		cp.values[k] = Copy(m.values[k])
	}
	return cp
}

// FromMap converts plain Go maps into a Map, recursively. Keys of plain
// maps are sorted since they carry no declaration order.
func FromMap(in map[string]any) *Map {
	if in == nil {
		return nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := NewWithCapacity(len(keys))
	for _, k := range keys {
		m.Set(k, fromValue(in[k]))
	}
	return m
}

func fromValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = fromValue(item)
		}
		return out
	default:
		return v
	}
}

// ToMap converts m into plain Go maps, recursively. Order is lost.
func (m *Map) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = toValue(m.values[k])
	}
	return out
}

func toValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toValue(item)
		}
		return out
	default:
		return v
	}
}
