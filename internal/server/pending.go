package server

import "sync"

// Pending is the deduplicated hand-off queue between the scanner and the
// broadcast loop. Adding a path that is already known is a no-op until
// Prune forgets paths no longer queued. The queue is bounded; overflow
// drops the oldest entry. Scanner and broadcaster run on different
// goroutines, so access is serialized by a mutex.
type Pending struct {
	mu      sync.Mutex
	entries []ImageInfo
	known   map[string]struct{}
	cap     int
}

// NewPending creates a pending queue with the given capacity.
func NewPending(capacity int) *Pending {
	if capacity <= 0 {
		capacity = 50
	}
	return &Pending{
		known: make(map[string]struct{}),
		cap:   capacity,
	}
}

// Add queues info unless its path was already seen. It reports whether
// the entry was queued.
func (p *Pending) Add(info ImageInfo) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.known[info.Path]; ok {
		return false
	}
	if len(p.entries) >= p.cap {
		p.entries = p.entries[1:]
	}
	p.entries = append(p.entries, info)
	p.known[info.Path] = struct{}{}
	return true
}

// Pop removes and returns the oldest queued entry.
func (p *Pending) Pop() (ImageInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return ImageInfo{}, false
	}
	info := p.entries[0]
	p.entries = p.entries[1:]
	return info, true
}

// Len returns the number of queued entries.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Prune shrinks the known-path set to the paths still queued, so paths
// that were broadcast (or dropped) long ago can be picked up again if
// their files are rewritten.
func (p *Pending) Prune() {
	p.mu.Lock()
	defer p.mu.Unlock()
	known := make(map[string]struct{}, len(p.entries))
	for _, info := range p.entries {
		known[info.Path] = struct{}{}
	}
	p.known = known
}
