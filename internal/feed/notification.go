// Package feed implements the client-side core of the image feed viewer:
// notification parsing, the bounded pending queue, the deduplicated
// history, and the live/paused session state machine.
package feed

import "encoding/json"

// Kind distinguishes the two accepted notification types.
type Kind string

const (
	// KindNewImage announces an image that just became available.
	KindNewImage Kind = "new_image"
	// KindCurrentImage carries the newest known image, sent once on connect.
	KindCurrentImage Kind = "current_image"
)

// Notification is one inbound record describing an available image. It is
// immutable after parsing; queue and history entries reference it as-is.
// Identity for deduplication is Path.
type Notification struct {
	Path      string
	Filename  string
	Timestamp float64 // unix seconds
	Kind      Kind
}

type wireNotification struct {
	Type      string  `json:"type"`
	Path      string  `json:"path"`
	Filename  string  `json:"filename"`
	Timestamp float64 `json:"timestamp"`
}

// Parse validates one raw payload from the push channel. Payloads that
// fail to decode, carry an unknown type, or lack a path are rejected and
// the caller drops them without any state change.
func Parse(data []byte) (*Notification, bool) {
	var w wireNotification
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false
	}
	kind := Kind(w.Type)
	if kind != KindNewImage && kind != KindCurrentImage {
		return nil, false
	}
	if w.Path == "" {
		return nil, false
	}
	return &Notification{
		Path:      w.Path,
		Filename:  w.Filename,
		Timestamp: w.Timestamp,
		Kind:      kind,
	}, true
}
