package router

import "github.com/google/uuid"

// HistoryEntry is one page in a frame's history. Query is the persisted
// parameter string; replaying the entry parses it back into Parameters.
type HistoryEntry struct {
	ID    string `cbor:"1,keyasint"`
	View  string `cbor:"2,keyasint"`
	Query string `cbor:"3,keyasint,omitempty"`
}

// NewHistoryEntry creates an entry with a fresh id.
func NewHistoryEntry(view string, params *Parameters) HistoryEntry {
	return HistoryEntry{
		ID:    uuid.NewString(),
		View:  view,
		Query: params.String(),
	}
}

// Parameters decodes the entry's persisted query string.
func (e HistoryEntry) Parameters() *Parameters {
	p, err := ParseParameters(e.Query)
	if err != nil {
		return NewParameters()
	}
	return p
}

// Stack is one direction of navigation history. The top of the stack is
// the most recently pushed entry.
type Stack struct {
	entries []HistoryEntry
}

// NewStack creates a new empty navigation stack.
func NewStack() *Stack {
	return &Stack{
		entries: make([]HistoryEntry, 0),
	}
}

// Push adds an entry on top of the stack.
func (s *Stack) Push(entry HistoryEntry) {
	s.entries = append(s.entries, entry)
}

// Pop removes and returns the top entry.
// Returns false if the stack is empty.
func (s *Stack) Pop() (HistoryEntry, bool) {
	if len(s.entries) == 0 {
		return HistoryEntry{}, false
	}
	entry := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return entry, true
}

// Peek returns the top entry without removing it.
func (s *Stack) Peek() (HistoryEntry, bool) {
	if len(s.entries) == 0 {
		return HistoryEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// IsEmpty returns true if the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Clear removes all entries from the stack and returns them, bottom first.
func (s *Stack) Clear() []HistoryEntry {
	removed := s.entries
	s.entries = make([]HistoryEntry, 0)
	return removed
}

// Entries returns a copy of the stack, bottom first.
func (s *Stack) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), s.entries...)
}

func (s *Stack) replace(entries []HistoryEntry) {
	s.entries = append(make([]HistoryEntry, 0, len(entries)), entries...)
}
