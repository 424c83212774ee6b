package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffValuesModifiedAndAdded(t *testing.T) {
	oldValue := JSONMap{"a": 1.0, "b": 2.0}
	newValue := JSONMap{"a": 1.0, "b": 3.0, "c": 4.0}

	changes := DiffValues(oldValue, newValue)

	require.Len(t, changes, 2)
	require.Equal(t, FieldChange{Field: "b", Type: FieldModified, Old: 2.0, New: 3.0}, changes[0])
	require.Equal(t, FieldChange{Field: "c", Type: FieldAdded, New: 4.0}, changes[1])
}

func TestDiffValuesRemoved(t *testing.T) {
	changes := DiffValues(JSONMap{"plate": "ABC-1234"}, JSONMap{})

	require.Len(t, changes, 1)
	require.Equal(t, "plate", changes[0].Field)
	require.Equal(t, FieldRemoved, changes[0].Type)
	require.Equal(t, "ABC-1234", changes[0].Old)
}

func TestDiffValuesDeepEquality(t *testing.T) {
	oldValue := JSONMap{"address": map[string]any{"city": "Curitiba", "uf": "PR"}}
	newValue := JSONMap{"address": map[string]any{"city": "Curitiba", "uf": "PR"}}

	require.Empty(t, DiffValues(oldValue, newValue))

	newValue["address"].(map[string]any)["uf"] = "SP"
	changes := DiffValues(oldValue, newValue)
	require.Len(t, changes, 1)
	require.Equal(t, FieldModified, changes[0].Type)
}

func TestDiffValuesNilSnapshots(t *testing.T) {
	require.Empty(t, DiffValues(nil, nil))

	changes := DiffValues(nil, JSONMap{"status": "confirmed"})
	require.Len(t, changes, 1)
	require.Equal(t, FieldAdded, changes[0].Type)
}

func TestDiffValuesOldKeysFirst(t *testing.T) {
	oldValue := JSONMap{"venue": "a", "client": "b"}
	newValue := JSONMap{"budget": 100.0, "venue": "c"}

	changes := DiffValues(oldValue, newValue)

	require.Len(t, changes, 3)
	require.Equal(t, "client", changes[0].Field)
	require.Equal(t, "venue", changes[1].Field)
	require.Equal(t, "budget", changes[2].Field)
}
