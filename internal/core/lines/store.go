// Package lines holds the results of the current search: an ordered, growable
// list of output lines and the scroll pane that windows into it.
package lines

import "strings"

// DefaultCapacity is the number of items a new Store reserves up front.
const DefaultCapacity = 500

// Item is a single line of search output.
type Item struct {
	Content  string `json:"line"`
	Selected bool   `json:"selected"`
}

// Pane is a window into the Store starting at Position. Length is always the
// number of items from Position to the end of the store.
type Pane struct {
	Position int
	Length   int
}

// Store is an append-only list of items with explicit capacity management.
// Capacity doubles whenever an insertion finds the store full, and Clear keeps
// the reserved capacity for the next search.
//
// Store is not safe for concurrent use.
type Store struct {
	items []Item
	pane  Pane
}

// NewStore returns an empty store with the given initial capacity. A
// non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{items: make([]Item, 0, capacity)}
}

// Len returns the number of stored items.
func (s *Store) Len() int { return len(s.items) }

// Cap returns the reserved capacity.
func (s *Store) Cap() int { return cap(s.items) }

// Add appends text as a new unselected item. At most maxLen bytes of text are
// kept; a non-positive maxLen keeps the whole string.
func (s *Store) Add(text string, maxLen int) {
	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen]
	}

	if len(s.items) == cap(s.items) {
		s.grow()
	}

	// Clone detaches the item from any larger read buffer.
	s.items = append(s.items, Item{Content: strings.Clone(text)})
	s.recompute()
}

// Clear drops every item and resets the pane to the top. Capacity is kept.
func (s *Store) Clear() {
	clear(s.items)
	s.items = s.items[:0]
	s.pane.Position = 0
	s.recompute()
}

// Items returns the backing items in arrival order. The slice is only valid
// until the next mutation.
func (s *Store) Items() []Item { return s.items }

// Pane returns the current pane.
func (s *Store) Pane() Pane { return s.pane }

// PaneItems returns the items visible through the pane, starting at its
// position.
func (s *Store) PaneItems() []Item {
	return s.items[s.pane.Position : s.pane.Position+s.pane.Length]
}

// Scroll moves the pane by delta. A move that would leave the pane before the
// first item or at/after the end of the store is rejected and Scroll returns
// false with the pane unchanged.
func (s *Store) Scroll(delta int) bool {
	next := s.pane.Position + delta
	if next < 0 || next >= len(s.items) {
		return false
	}
	s.pane.Position = next
	s.recompute()
	return true
}

// ToggleSelected flips the selection of the pane item at index i (relative to
// the pane position). Out of range indexes are ignored.
func (s *Store) ToggleSelected(i int) bool {
	if i < 0 || i >= s.pane.Length {
		return false
	}
	idx := s.pane.Position + i
	s.items[idx].Selected = !s.items[idx].Selected
	return true
}

// Selected returns copies of every selected item in arrival order.
func (s *Store) Selected() []Item {
	var out []Item
	for _, it := range s.items {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) grow() {
	next := cap(s.items) * 2
	if next == 0 {
		next = 1
	}
	grown := make([]Item, len(s.items), next)
	copy(grown, s.items)
	s.items = grown
}

func (s *Store) recompute() {
	if s.pane.Position > len(s.items) {
		s.pane.Position = len(s.items)
	}
	s.pane.Length = len(s.items) - s.pane.Position
}
