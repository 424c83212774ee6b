package audit

import (
	"reflect"
	"sort"
)

const (
	FieldAdded    = "added"
	FieldRemoved  = "removed"
	FieldModified = "modified"
)

type FieldChange struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Old   any    `json:"old,omitempty"`
	New   any    `json:"new,omitempty"`
}

// DiffValues computes the field-level changes between the old and new
// snapshots of a log record. Keys equal in both snapshots are omitted.
// Output order follows key discovery: old snapshot keys first, then
// keys only present in the new one.
func DiffValues(oldValue, newValue JSONMap) []FieldChange {
	changes := []FieldChange{}

	// iterate deterministically over the union of keys
	keys := make([]string, 0, len(oldValue)+len(newValue))
	seen := make(map[string]bool, len(oldValue)+len(newValue))

	for _, m := range []JSONMap{oldValue, newValue} {
		ordered := sortedKeys(m)
		for _, k := range ordered {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	for _, key := range keys {
		oldVal, inOld := oldValue[key]
		newVal, inNew := newValue[key]

		switch {
		case inOld && !inNew:
			changes = append(changes, FieldChange{Field: key, Type: FieldRemoved, Old: oldVal})
		case !inOld && inNew:
			changes = append(changes, FieldChange{Field: key, Type: FieldAdded, New: newVal})
		case !reflect.DeepEqual(oldVal, newVal):
			changes = append(changes, FieldChange{Field: key, Type: FieldModified, Old: oldVal, New: newVal})
		}
	}

	return changes
}

// Go maps have no insertion order, so key discovery sorts each
// snapshot's keys before taking their union.
func sortedKeys(m JSONMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
