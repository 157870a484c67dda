package state

import (
	"encoding/json"
	"fmt"
	"io"
)

// DocumentVersion is written into every saved board.
const DocumentVersion = 1

// Snapshot is the whole board as it is saved to disk or sent to a joining
// peer. Lamport is the sender's clock, so a joiner's later ops sort after it.
type Snapshot struct {
	Version int     `json:"version"`
	Shapes  []Shape `json:"shapes"`
	Lamport uint64  `json:"lamport,omitempty"`
}

func Encode(w io.Writer, s Snapshot) error {
	if s.Version == 0 {
		s.Version = DocumentVersion
	}
	if s.Shapes == nil {
		s.Shapes = []Shape{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	return nil
}

func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode board: %w", err)
	}
	if s.Version != DocumentVersion {
		return Snapshot{}, fmt.Errorf("decode board version %d: %w", s.Version, ErrUnknownVersion)
	}
	return s, nil
}
