package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEncodingIsDeterministic(t *testing.T) {
	current := HistoryEntry{ID: "3", View: "Detail", Query: "id=42"}
	snap := Snapshot{
		Name:    "main",
		Current: &current,
		Back: []HistoryEntry{
			{ID: "1", View: "Home"},
			{ID: "2", View: "Library", Query: "sort=name"},
		},
	}

	first, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	second, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	decoded, err := UnmarshalSnapshot(first)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestUnmarshalSnapshotRejectsGarbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte{0xff, 0x00, 0x13})
	assert.Error(t, err)
}
