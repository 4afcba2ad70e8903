package feed

// HistoryCapacity bounds the history; inserting past it evicts the oldest
// entry.
const HistoryCapacity = 100

// History is an ordered, path-deduplicated record of displayed images,
// newest at position 0. Like Queue it is owned by the update loop and is
// not safe for concurrent use.
type History struct {
	entries []*Notification
	byPath  map[string]struct{}
	cap     int
}

// NewHistory creates a history with the given capacity. Non-positive
// values fall back to HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &History{
		byPath: make(map[string]struct{}),
		cap:    capacity,
	}
}

// Insert prepends n at position 0, shifting existing entries back and
// evicting the tail once length exceeds capacity. Inserting a path that
// is already present is a no-op. It reports whether the history changed.
func (h *History) Insert(n *Notification) bool {
	if _, ok := h.byPath[n.Path]; ok {
		return false
	}
	h.entries = append(h.entries, nil)
	copy(h.entries[1:], h.entries)
	h.entries[0] = n
	h.byPath[n.Path] = struct{}{}

	if len(h.entries) > h.cap {
		oldest := h.entries[len(h.entries)-1]
		delete(h.byPath, oldest.Path)
		h.entries = h.entries[:len(h.entries)-1]
	}
	return true
}

// Get returns the entry at the given position (0 = newest), or nil when
// the position is out of range.
func (h *History) Get(position int) *Notification {
	if position < 0 || position >= len(h.entries) {
		return nil
	}
	return h.entries[position]
}

// Contains reports whether a notification with the given path is present.
func (h *History) Contains(path string) bool {
	_, ok := h.byPath[path]
	return ok
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.entries = nil
	h.byPath = make(map[string]struct{})
}
