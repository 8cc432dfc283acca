package tree

import "reflect"

// Merge overlays overlay onto base and returns base.
//
// For each key of overlay: when base holds the key and both values are
// mappings, the two are merged recursively. In every other case the overlay
// value replaces the base value, so sequences are replaced wholesale.
//
// base is mutated in place; callers that must keep the original pass a
// Clone. A nil base yields a fresh Map. Overlay values are stored without
// copying.
func Merge(base, overlay *Map) *Map {
	if base == nil {
		base = New()
	}
	if overlay == nil {
		return base
	}
	for _, k := range overlay.keys {
		ov := overlay.values[k]
		if bv, ok := base.values[k]; ok {
			bm, baseIsMap := bv.(*Map)
			om, overlayIsMap := ov.(*Map)
			if baseIsMap && overlayIsMap && bm != nil && om != nil {
				Merge(bm, om)
				continue
			}
		}
		base.Set(k, ov)
	}
	return base
}

// Copy returns a deep copy of v. Mappings and sequences are duplicated;
// scalars are returned as-is.
func Copy(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		if t == nil {
			return t
		}
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = Copy(item)
		}
		return cp
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal. Mapping key order
// is ignored.
func Equal(a, b any) bool {
	switch at := a.(type) {
	case *Map:
		bt, ok := b.(*Map)
		if !ok {
			return false
		}
		if at.Len() != bt.Len() {
			return false
		}
		for _, k := range at.Keys() {
			av, _ := at.Get(k)
			bv, present := bt.Get(k)
			if !present || !Equal(av, bv) {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
