package feed

// Mode is the viewer's live/paused state.
type Mode int

const (
	// ModeLive automatically queues, loads, and displays new notifications.
	ModeLive Mode = iota
	// ModePaused freezes the viewport on the user's selection. New
	// notifications are tracked as the latest seen but not enqueued.
	ModePaused
)

func (m Mode) String() string {
	if m == ModePaused {
		return "Paused"
	}
	return "Live"
}

// ConnectionState describes the push channel. It is observational only and
// never gates queue or history behavior.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnected
	StateErrored
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateErrored:
		return "Errored"
	default:
		return "Disconnected"
	}
}

// LoadOutcome is the terminal result of one load attempt. Exactly one
// outcome takes effect per attempt.
type LoadOutcome int

const (
	LoadSuccess LoadOutcome = iota
	LoadFailure
	LoadTimeout
)

// Session owns all mutable viewer state for one running client: the
// pending queue, the history, the mode flag, the selection index, and the
// single-flight load guard. It holds no I/O; the caller drives it from a
// single goroutine and performs loads between StartLoad and Resolve/Settle.
//
// Load attempts are tagged with a monotonically increasing id. Completion
// signals carrying a stale id, or a second signal for an attempt that
// already resolved, are ignored. This is what keeps a load that outlives
// its soft timeout from applying twice.
type Session struct {
	queue   *Queue
	history *History

	mode         Mode
	currentIndex int
	latest       *Notification

	loading  bool
	attempt  uint64
	resolved bool
}

// NewSession creates an empty session in live mode.
func NewSession() *Session {
	return &Session{
		queue:        NewQueue(QueueCapacity),
		history:      NewHistory(HistoryCapacity),
		mode:         ModeLive,
		currentIndex: -1,
	}
}

// Observe is the ingestion gate. It always records n as the latest
// notification seen; while live it also enqueues n for loading. It reports
// whether the caller should start a drain.
func (s *Session) Observe(n *Notification) bool {
	s.latest = n
	if s.mode != ModeLive {
		return false
	}
	s.queue.Enqueue(n)
	return !s.loading
}

// StartLoad dequeues the next pending notification and marks the loader
// busy. It returns ok=false when the queue is empty or a load is already
// in flight, which makes drain calls re-entrant-safe.
func (s *Session) StartLoad() (n *Notification, attempt uint64, ok bool) {
	if s.loading {
		return nil, 0, false
	}
	n = s.queue.Dequeue()
	if n == nil {
		return nil, 0, false
	}
	s.loading = true
	s.resolved = false
	s.attempt++
	return n, s.attempt, true
}

// claim reports whether a completion signal for the given attempt should
// take effect, and records the resolution if so. Only the first signal per
// attempt wins.
func (s *Session) claim(attempt uint64) bool {
	if !s.loading || attempt != s.attempt || s.resolved {
		return false
	}
	s.resolved = true
	return true
}

// ResolveSuccess records a completed load. A newly seen path is inserted
// at the history head; while live the selection jumps to it, while paused
// the selection index shifts back by one so the user keeps looking at the
// same image. It reports whether the notification was newly inserted (and
// so should be displayed when live).
func (s *Session) ResolveSuccess(attempt uint64, n *Notification) bool {
	if !s.claim(attempt) {
		return false
	}
	if !s.history.Insert(n) {
		return false
	}
	if s.mode == ModeLive {
		s.currentIndex = 0
	} else if s.currentIndex >= 0 {
		s.currentIndex++
	}
	s.clampIndex()
	return true
}

// ResolveFailure records a fetch or decode error. The entry is consumed
// without touching history or the selection.
func (s *Session) ResolveFailure(attempt uint64) bool {
	return s.claim(attempt)
}

// ResolveTimeout records a load that exceeded its soft deadline. The
// underlying fetch may still complete later; the attempt guard suppresses
// that late signal.
func (s *Session) ResolveTimeout(attempt uint64) bool {
	return s.claim(attempt)
}

// Settle marks the loader idle after the post-resolution delay and reports
// whether pending entries remain to drain. A settle for a superseded
// attempt is a no-op.
func (s *Session) Settle(attempt uint64) bool {
	if !s.loading || attempt != s.attempt {
		return false
	}
	s.loading = false
	return s.queue.Len() > 0
}

// Pause freezes the viewport on the current selection. Entries already
// queued keep draining in the background; only new arrivals stop being
// enqueued.
func (s *Session) Pause() {
	s.mode = ModePaused
}

// GoLive returns to live mode, reconciling any notification suppressed
// while paused: if the latest seen notification is not already the history
// head it is inserted, and the newest entry becomes the selection. It
// reports whether the caller should start a drain.
func (s *Session) GoLive() bool {
	s.mode = ModeLive
	if s.latest != nil {
		if head := s.history.Get(0); head == nil || head.Path != s.latest.Path {
			s.history.Insert(s.latest)
		}
		s.currentIndex = 0
	}
	s.clampIndex()
	return s.queue.Len() > 0 && !s.loading
}

// Select pins the viewport on the given history position, clamped to the
// valid range. Selecting anything but the newest entry while live pauses
// the feed.
func (s *Session) Select(position int) {
	if s.history.Len() == 0 {
		return
	}
	if position < 0 {
		position = 0
	}
	if position > s.history.Len()-1 {
		position = s.history.Len() - 1
	}
	s.currentIndex = position
	if position != 0 || s.mode != ModeLive {
		s.mode = ModePaused
	}
}

// Older moves the selection one entry further back in history. Browsing
// always pauses the feed.
func (s *Session) Older() {
	if s.history.Len() == 0 {
		return
	}
	s.mode = ModePaused
	s.currentIndex++
	s.clampIndex()
}

// Newer moves the selection one entry toward the newest. Browsing always
// pauses the feed.
func (s *Session) Newer() {
	if s.history.Len() == 0 {
		return
	}
	s.mode = ModePaused
	if s.currentIndex > 0 {
		s.currentIndex--
	}
	s.clampIndex()
}

// Clear resets the session to its initial empty state and returns to live
// mode. A load still in flight is orphaned: bumping the attempt id turns
// its eventual completion into a no-op.
func (s *Session) Clear() {
	s.queue.Clear()
	s.history.Clear()
	s.currentIndex = -1
	s.latest = nil
	s.mode = ModeLive
	s.loading = false
	s.resolved = false
	s.attempt++
}

// clampIndex keeps the selection inside the history bounds. Background
// drains while paused can evict the selected entry; the selection then
// snaps to the last valid position.
func (s *Session) clampIndex() {
	if s.history.Len() == 0 {
		s.currentIndex = -1
		return
	}
	if s.currentIndex >= s.history.Len() {
		s.currentIndex = s.history.Len() - 1
	}
	if s.currentIndex < -1 {
		s.currentIndex = -1
	}
}

// Current returns the notification at the current selection, or nil when
// nothing is selected.
func (s *Session) Current() *Notification {
	return s.history.Get(s.currentIndex)
}

// At returns the history entry at the given position, or nil.
func (s *Session) At(position int) *Notification {
	return s.history.Get(position)
}

// Contains reports whether a path is present in history.
func (s *Session) Contains(path string) bool {
	return s.history.Contains(path)
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// CurrentIndex returns the selection index (0 = newest, -1 = none).
func (s *Session) CurrentIndex() int { return s.currentIndex }

// Latest returns the most recent notification observed, regardless of
// mode or whether it was ever enqueued.
func (s *Session) Latest() *Notification { return s.latest }

// HistoryLen returns the number of history entries.
func (s *Session) HistoryLen() int { return s.history.Len() }

// QueueLen returns the number of pending queue entries.
func (s *Session) QueueLen() int { return s.queue.Len() }

// Loading reports whether a load is in flight.
func (s *Session) Loading() bool { return s.loading }
