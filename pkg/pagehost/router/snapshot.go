package router

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a frame's persisted history.
type Snapshot struct {
	Name    string         `cbor:"1,keyasint"`
	Current *HistoryEntry  `cbor:"2,keyasint,omitempty"`
	Back    []HistoryEntry `cbor:"3,keyasint,omitempty"`
	Forward []HistoryEntry `cbor:"4,keyasint,omitempty"`
}

// Snapshots use Core Deterministic Encoding so the same history always
// produces the same bytes.
var (
	snapshotEnc cbor.EncMode
	snapshotDec cbor.DecMode
)

func init() {
	var err error
	snapshotEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("router: CBOR encoder initialization failed: " + err.Error())
	}
	snapshotDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("router: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalSnapshot encodes a snapshot to CBOR.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	data, err := snapshotEnc.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode frame snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := snapshotDec.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode frame snapshot: %w", err)
	}
	return s, nil
}
