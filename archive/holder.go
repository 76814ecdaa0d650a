package archive

import "sync"

// Holder is a growing batch of small-file entries bound to one
// workspace, flushed to bytes once full or at the end of an upload
// pass. Safe for concurrent Add while a background task serialises a
// previous, already-frozen holder.
type Holder struct {
	mu      sync.Mutex
	entries []Entry
	size    int64
}

// NewHolder returns an empty packer.
func NewHolder() *Holder {
	return &Holder{}
}

// Add appends an entry, accumulating the anticipated archive size.
func (h *Holder) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	h.size += int64(e.encodedLen())
}

// IsNearlyFull reports whether the next Add should instead go to a
// fresh holder.
func (h *Holder) IsNearlyFull() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size >= MaxArchiveSize || len(h.entries) >= MaxArchiveEntries
}

// Len reports the number of entries currently held.
func (h *Holder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Empty reports whether the holder has no entries to flush.
func (h *Holder) Empty() bool {
	return h.Len() == 0
}

// ToBytes serialises every held entry into one linear buffer and
// resets the holder. Intended to run as a background task so the
// caller's upload loop can keep feeding the next holder while this
// one is serialised.
func (h *Holder) ToBytes() []byte {
	h.mu.Lock()
	entries := h.entries
	size := h.size
	h.entries = nil
	h.size = 0
	h.mu.Unlock()

	dst := make([]byte, 0, size)
	for _, e := range entries {
		dst = appendEntry(dst, e)
	}
	return dst
}
