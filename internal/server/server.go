package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/imagewatch/imagewatch/internal/config"
)

// Server owns the daemon's HTTP surface and the scan/broadcast loops.
type Server struct {
	cfg     *config.Config
	hub     *Hub
	pending *Pending
	started time.Time
}

// NewServer wires the daemon together.
func NewServer(cfg *config.Config, hub *Hub, pending *Pending) *Server {
	return &Server{
		cfg:     cfg,
		hub:     hub,
		pending: pending,
		started: time.Now(),
	}
}

// SetupRoutes registers all HTTP handlers on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Watch.Dir))))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/latest", s.handleLatest)
}

// Watch rescans the image directory on the poll interval, queueing files
// whose modification time is newer than the previous scan. The first scan
// treats everything already on disk as old news: nothing is queued, but
// the newest file is recorded so late-joining viewers get a greeting.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Watch.PollInterval.Duration)
	defer ticker.Stop()

	var lastScan time.Time
	first := true
	for {
		now := time.Now()
		images, err := Scan(s.cfg.Watch.Dir)
		if err != nil {
			log.Printf("scan error: %v", err)
		}
		if first {
			first = false
			if len(images) > 0 {
				s.hub.SetLatest(images[0])
				log.Printf("found %d existing images, newest %s", len(images), images[0].Path)
			}
		} else {
			added := 0
			// Oldest first, so broadcasts come out in chronological order.
			for i := len(images) - 1; i >= 0; i-- {
				info := images[i]
				if !info.ModTime.After(lastScan) {
					continue
				}
				if s.pending.Add(info) {
					added++
				}
			}
			if added > 0 {
				log.Printf("queued %d new images (pending %d)", added, s.pending.Len())
			}
		}
		s.pending.Prune()
		lastScan = now

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Process pops one pending image per tick and broadcasts it, pacing the
// feed so viewers see a stream rather than a dump.
func (s *Server) Process(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Watch.ProcessInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, ok := s.pending.Pop()
			if !ok {
				continue
			}
			s.hub.BroadcastNew(info)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("viewer connected: %s (total %d)", r.RemoteAddr, s.hub.ClientCount()+1)
	c := s.hub.Add(conn)

	go func() {
		defer func() {
			s.hub.Remove(c)
			log.Printf("viewer disconnected: %s", r.RemoteAddr)
		}()
		for {
			// Viewers never send application data; the read loop only
			// notices the connection closing.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest := s.hub.Latest()
	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(latest)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.health())
}

// checkOrigin accepts same-host and localhost origins. Browsers send an
// Origin header; the TUI client sends none and is always accepted.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := parsed.Host
	if host == "" {
		return false
	}
	if host == r.Host {
		return true
	}
	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}
	return false
}

// ListenAndServe starts the HTTP listener.
func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("imagewatchd listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
