package feed

import (
	"fmt"
	"testing"
)

// drainAll plays the loader's role: it drains the queue one entry at a
// time, resolving every load as a success and settling between entries.
func drainAll(t *testing.T, s *Session) {
	t.Helper()
	for {
		n, attempt, ok := s.StartLoad()
		if !ok {
			return
		}
		s.ResolveSuccess(attempt, n)
		s.Settle(attempt)
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession()
	if s.Mode() != ModeLive {
		t.Errorf("initial mode = %v, want Live", s.Mode())
	}
	if s.CurrentIndex() != -1 {
		t.Errorf("initial currentIndex = %d, want -1", s.CurrentIndex())
	}
	if s.Latest() != nil {
		t.Error("initial latest != nil")
	}
	if s.Current() != nil {
		t.Error("initial Current() != nil")
	}
}

// Scenario: three notifications arrive live and load in order.
func TestLiveSequence(t *testing.T) {
	s := NewSession()
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		s.Observe(note(p))
	}
	drainAll(t, s)

	if s.HistoryLen() != 3 {
		t.Fatalf("HistoryLen() = %d, want 3", s.HistoryLen())
	}
	for i, want := range []string{"c.png", "b.png", "a.png"} {
		if got := s.At(i); got.Path != want {
			t.Errorf("At(%d) = %s, want %s", i, got.Path, want)
		}
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("currentIndex = %d, want 0", s.CurrentIndex())
	}
	if s.Current().Path != "c.png" {
		t.Errorf("Current() = %s, want c.png", s.Current().Path)
	}
	if s.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0", s.QueueLen())
	}
}

// Scenario: a notification arriving while paused is held only as the
// latest; goLive reconciles it to the history head.
func TestPausedArrivalAndGoLive(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	drainAll(t, s)

	s.Pause()
	if start := s.Observe(note("d.png")); start {
		t.Error("Observe while paused requested a drain")
	}
	if s.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0 (paused arrivals are not enqueued)", s.QueueLen())
	}
	if s.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", s.HistoryLen())
	}
	if s.Latest().Path != "d.png" {
		t.Errorf("Latest() = %s, want d.png", s.Latest().Path)
	}

	s.GoLive()
	if got := s.At(0); got.Path != "d.png" {
		t.Errorf("history head after GoLive = %s, want d.png", got.Path)
	}
	if got := s.At(1); got.Path != "a.png" {
		t.Errorf("At(1) after GoLive = %s, want a.png", got.Path)
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("currentIndex after GoLive = %d, want 0", s.CurrentIndex())
	}
	if s.Mode() != ModeLive {
		t.Errorf("mode after GoLive = %v, want Live", s.Mode())
	}
}

func TestGoLiveWithLatestAlreadyHead(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	drainAll(t, s)
	s.Pause()
	s.GoLive()

	if s.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1 (no duplicate insert)", s.HistoryLen())
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("currentIndex = %d, want 0", s.CurrentIndex())
	}
}

// Scenario: 150 notifications in immediate succession, all loading
// successfully. The queue never exceeds its bound and history holds the
// 100 most recently loaded entries.
func TestBurstOfNotifications(t *testing.T) {
	s := NewSession()
	for i := 0; i < 150; i++ {
		s.Observe(note(fmt.Sprintf("img-%03d.png", i)))
		if s.QueueLen() > QueueCapacity {
			t.Fatalf("queue grew past capacity: %d", s.QueueLen())
		}
	}
	// The queue dropped the 50 oldest arrivals before any load ran.
	if s.QueueLen() != 100 {
		t.Fatalf("QueueLen() = %d, want 100", s.QueueLen())
	}

	drainAll(t, s)

	if s.QueueLen() != 0 {
		t.Errorf("QueueLen() after drain = %d, want 0", s.QueueLen())
	}
	if s.HistoryLen() != 100 {
		t.Fatalf("HistoryLen() = %d, want 100", s.HistoryLen())
	}
	if got := s.At(0); got.Path != "img-149.png" {
		t.Errorf("head = %s, want img-149.png", got.Path)
	}
	if got := s.At(99); got.Path != "img-050.png" {
		t.Errorf("tail = %s, want img-050.png", got.Path)
	}
}

func TestSingleFlight(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	s.Observe(note("b.png"))

	n1, attempt1, ok := s.StartLoad()
	if !ok || n1.Path != "a.png" {
		t.Fatalf("StartLoad() = %v,%v, want a.png,true", n1, ok)
	}
	if !s.Loading() {
		t.Fatal("Loading() = false during a load")
	}

	// A second drain while busy is a no-op.
	if _, _, ok := s.StartLoad(); ok {
		t.Fatal("StartLoad() while busy = true, want false")
	}

	s.ResolveSuccess(attempt1, n1)

	// Still busy until settled.
	if _, _, ok := s.StartLoad(); ok {
		t.Fatal("StartLoad() before Settle = true, want false")
	}
	if more := s.Settle(attempt1); !more {
		t.Fatal("Settle() = false, want true (b.png still pending)")
	}

	n2, attempt2, ok := s.StartLoad()
	if !ok || n2.Path != "b.png" {
		t.Fatalf("second StartLoad() = %v,%v, want b.png,true", n2, ok)
	}
	s.ResolveSuccess(attempt2, n2)
	if more := s.Settle(attempt2); more {
		t.Error("Settle() = true, want false (queue drained)")
	}
}

func TestIdempotentResolution(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	n, attempt, _ := s.StartLoad()

	if !s.ResolveTimeout(attempt) {
		t.Fatal("first ResolveTimeout = false, want true")
	}
	// The fetch completing after the timeout must not apply.
	if s.ResolveSuccess(attempt, n) {
		t.Error("ResolveSuccess after timeout = true, want false")
	}
	if s.HistoryLen() != 0 {
		t.Errorf("HistoryLen() = %d, want 0 (late success suppressed)", s.HistoryLen())
	}
	if s.ResolveFailure(attempt) {
		t.Error("ResolveFailure after timeout = true, want false")
	}

	// Stale attempt ids never apply, even after the loader settles.
	s.Settle(attempt)
	s.Observe(note("b.png"))
	n2, attempt2, _ := s.StartLoad()
	if s.ResolveSuccess(attempt, n) {
		t.Error("resolution with stale attempt id = true, want false")
	}
	s.ResolveSuccess(attempt2, n2)
	s.Settle(attempt2)
	if s.HistoryLen() != 1 || s.At(0).Path != "b.png" {
		t.Errorf("history = %d entries, head %v, want only b.png", s.HistoryLen(), s.At(0))
	}
}

func TestFailureLeavesHistoryUntouched(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	drainAll(t, s)

	s.Observe(note("broken.png"))
	n, attempt, _ := s.StartLoad()
	if n.Path != "broken.png" {
		t.Fatalf("StartLoad() = %s, want broken.png", n.Path)
	}
	s.ResolveFailure(attempt)
	s.Settle(attempt)

	if s.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", s.HistoryLen())
	}
	if s.Current().Path != "a.png" {
		t.Errorf("Current() = %s, want a.png", s.Current().Path)
	}
}

// Background drains continue after a pause; insertions shift the selection
// back so the user keeps looking at the same image.
func TestPausedBackgroundDrainPreservesSelection(t *testing.T) {
	s := NewSession()
	for _, p := range []string{"a.png", "b.png"} {
		s.Observe(note(p))
	}
	drainAll(t, s)

	s.Older() // select a.png at position 1, forces pause
	if s.Mode() != ModePaused || s.CurrentIndex() != 1 {
		t.Fatalf("mode=%v idx=%d, want Paused idx=1", s.Mode(), s.CurrentIndex())
	}

	// c.png was already queued before the pause; its drain completes.
	s.queue.Enqueue(note("c.png"))
	n, attempt, _ := s.StartLoad()
	s.ResolveSuccess(attempt, n)
	s.Settle(attempt)

	if s.CurrentIndex() != 2 {
		t.Errorf("currentIndex = %d, want 2 (shifted by prepend)", s.CurrentIndex())
	}
	if s.Current().Path != "a.png" {
		t.Errorf("Current() = %s, want a.png (selection preserved)", s.Current().Path)
	}
}

// Eviction of the selected entry while paused clamps the selection to the
// last valid position instead of leaving it out of range.
func TestPausedEvictionClampsSelection(t *testing.T) {
	s := NewSession()
	s.history = NewHistory(3)
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		s.Observe(note(p))
	}
	drainAll(t, s)

	s.Select(2) // oldest entry, a.png
	if s.Current().Path != "a.png" {
		t.Fatalf("Current() = %s, want a.png", s.Current().Path)
	}

	// A background drain pushes a.png out of the bounded history.
	s.queue.Enqueue(note("d.png"))
	n, attempt, _ := s.StartLoad()
	s.ResolveSuccess(attempt, n)
	s.Settle(attempt)

	if s.CurrentIndex() != 2 {
		t.Errorf("currentIndex = %d, want 2 (clamped)", s.CurrentIndex())
	}
	if s.Current() == nil {
		t.Fatal("Current() = nil after clamp")
	}
}

func TestNavigationClamps(t *testing.T) {
	s := NewSession()
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		s.Observe(note(p))
	}
	drainAll(t, s)

	for i := 0; i < 10; i++ {
		s.Older()
	}
	if s.CurrentIndex() != 2 {
		t.Errorf("currentIndex after repeated Older = %d, want 2", s.CurrentIndex())
	}
	for i := 0; i < 10; i++ {
		s.Newer()
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("currentIndex after repeated Newer = %d, want 0", s.CurrentIndex())
	}
	if s.Mode() != ModePaused {
		t.Error("navigation did not pause the feed")
	}
}

func TestNavigationOnEmptyHistory(t *testing.T) {
	s := NewSession()
	s.Older()
	s.Newer()
	s.Select(3)
	if s.CurrentIndex() != -1 {
		t.Errorf("currentIndex = %d, want -1", s.CurrentIndex())
	}
	if s.Mode() != ModeLive {
		t.Errorf("mode = %v, want Live (nothing to browse)", s.Mode())
	}
}

func TestSelectHeadWhileLiveStaysLive(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	drainAll(t, s)

	s.Select(0)
	if s.Mode() != ModeLive {
		t.Errorf("mode = %v, want Live (head selection is the implicit latest)", s.Mode())
	}

	s.Observe(note("b.png"))
	drainAll(t, s)
	s.Select(1)
	if s.Mode() != ModePaused {
		t.Errorf("mode = %v, want Paused (non-head selection)", s.Mode())
	}
}

func TestClear(t *testing.T) {
	s := NewSession()
	for _, p := range []string{"a.png", "b.png"} {
		s.Observe(note(p))
	}
	n, attempt, _ := s.StartLoad()
	s.Pause()
	s.Clear()

	if s.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0", s.QueueLen())
	}
	if s.HistoryLen() != 0 {
		t.Errorf("HistoryLen() = %d, want 0", s.HistoryLen())
	}
	if s.Mode() != ModeLive {
		t.Errorf("mode = %v, want Live", s.Mode())
	}
	if s.CurrentIndex() != -1 {
		t.Errorf("currentIndex = %d, want -1", s.CurrentIndex())
	}
	if s.Latest() != nil {
		t.Error("latest != nil after Clear")
	}
	if s.Loading() {
		t.Error("Loading() = true after Clear")
	}

	// The orphaned load's completion is suppressed.
	if s.ResolveSuccess(attempt, n) {
		t.Error("resolution of orphaned load applied after Clear")
	}
	if s.HistoryLen() != 0 {
		t.Errorf("HistoryLen() = %d, want 0 (orphan suppressed)", s.HistoryLen())
	}
}

func TestObserveDedupThroughLoad(t *testing.T) {
	s := NewSession()
	s.Observe(note("a.png"))
	drainAll(t, s)

	// The same path arriving again is consumed without growing history.
	s.Observe(note("a.png"))
	n, attempt, _ := s.StartLoad()
	if inserted := s.ResolveSuccess(attempt, n); inserted {
		t.Error("ResolveSuccess for duplicate path reported an insertion")
	}
	s.Settle(attempt)
	if s.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", s.HistoryLen())
	}
}
