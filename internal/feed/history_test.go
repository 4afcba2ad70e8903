package feed

import (
	"fmt"
	"testing"
)

// assertOrder checks history contents from newest to oldest.
func assertOrder(t *testing.T, h *History, paths ...string) {
	t.Helper()
	if h.Len() != len(paths) {
		t.Fatalf("Len() = %d, want %d", h.Len(), len(paths))
	}
	for i, want := range paths {
		got := h.Get(i)
		if got == nil || got.Path != want {
			t.Errorf("Get(%d) = %v, want %s", i, got, want)
		}
	}
}

func TestHistoryInsertOrder(t *testing.T) {
	h := NewHistory(10)
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		if !h.Insert(note(p)) {
			t.Fatalf("Insert(%s) = false, want true", p)
		}
	}
	assertOrder(t, h, "c.png", "b.png", "a.png")
}

func TestHistoryDedup(t *testing.T) {
	h := NewHistory(10)
	h.Insert(note("a.png"))
	h.Insert(note("b.png"))

	if h.Insert(note("a.png")) {
		t.Error("Insert of duplicate path = true, want false")
	}
	// Length and order are unchanged.
	assertOrder(t, h, "b.png", "a.png")
}

func TestHistoryBound(t *testing.T) {
	h := NewHistory(100)
	for i := 0; i < 130; i++ {
		h.Insert(note(fmt.Sprintf("img-%03d.png", i)))
		if h.Len() > 100 {
			t.Fatalf("after insert %d: Len() = %d, want <= 100", i, h.Len())
		}
	}
	if h.Len() != 100 {
		t.Fatalf("final Len() = %d, want 100", h.Len())
	}

	// Strictly the oldest entries were evicted: 30..129 remain, newest first.
	if got := h.Get(0); got.Path != "img-129.png" {
		t.Errorf("head = %s, want img-129.png", got.Path)
	}
	if got := h.Get(99); got.Path != "img-030.png" {
		t.Errorf("tail = %s, want img-030.png", got.Path)
	}
	if h.Contains("img-029.png") {
		t.Error("evicted path still reported by Contains")
	}

	// Evicted paths may be inserted again.
	if !h.Insert(note("img-000.png")) {
		t.Error("re-insert of evicted path = false, want true")
	}
}

func TestHistoryGetOutOfRange(t *testing.T) {
	h := NewHistory(10)
	h.Insert(note("a.png"))

	if got := h.Get(-1); got != nil {
		t.Errorf("Get(-1) = %v, want nil", got)
	}
	if got := h.Get(1); got != nil {
		t.Errorf("Get(1) = %v, want nil", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Insert(note("a.png"))
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", h.Len())
	}
	if !h.Insert(note("a.png")) {
		t.Error("Insert after Clear = false, want true")
	}
}
