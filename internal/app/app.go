// Package app wires the notification source, the feed session, the image
// loader, and the viewport into the root Bubble Tea model. All session
// state is mutated inside Update; goroutines only ever hand results back
// as messages.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imagewatch/imagewatch/internal/client"
	"github.com/imagewatch/imagewatch/internal/feed"
	"github.com/imagewatch/imagewatch/internal/render"
)

const (
	// settleDelay is the pause between a load's terminal event and the
	// next drain step.
	settleDelay = 500 * time.Millisecond
	// freshDuration is how long a newly arrived image keeps its visual
	// emphasis.
	freshDuration = 600 * time.Millisecond
)

// Model is the root Bubble Tea model.
type Model struct {
	ws       *client.WSClient
	fetcher  *client.Fetcher
	renderer *render.Renderer
	ctx      context.Context
	cancel   context.CancelFunc

	session *feed.Session
	keys    KeyMap

	width  int
	height int

	connState feed.ConnectionState

	// Decoded images for entries still in history, keyed by path, and a
	// per-size cache of their rendered escape strings.
	images      map[string]image.Image
	renderCache map[string]string

	fresh       bool
	freshSeq    uint64
	showOverlay bool
}

// --- internal messages ---

type loadResultMsg struct {
	attempt uint64
	n       *feed.Notification
	res     client.Result
}

type settleMsg struct{ attempt uint64 }

type freshDoneMsg struct{ seq uint64 }

type displayLoadedMsg struct {
	path string
	img  image.Image
	err  error
}

// New creates the root model.
func New(ws *client.WSClient, fetcher *client.Fetcher, renderer *render.Renderer) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ws:          ws,
		fetcher:     fetcher,
		renderer:    renderer,
		ctx:         ctx,
		cancel:      cancel,
		session:     feed.NewSession(),
		keys:        DefaultKeyMap(),
		images:      make(map[string]image.Image),
		renderCache: make(map[string]string),
	}
}

// Init starts the websocket connection.
func (m Model) Init() tea.Cmd {
	return m.ws.Listen(m.ctx)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderCache = make(map[string]string)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.ConnectedMsg:
		m.connState = feed.StateConnected
		return m, m.ws.ReadLoop(m.ctx)

	case client.DisconnectedMsg:
		if msg.Err != nil {
			m.connState = feed.StateErrored
		} else {
			m.connState = feed.StateDisconnected
		}
		return m, m.ws.Listen(m.ctx)

	case client.NotificationMsg:
		cmds := []tea.Cmd{m.ws.ReadLoop(m.ctx)}
		if m.session.Observe(msg.Notification) {
			if cmd := m.drainCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case loadResultMsg:
		return m.handleLoadResult(msg)

	case settleMsg:
		if m.session.Settle(msg.attempt) {
			return m, m.drainCmd()
		}
		return m, nil

	case freshDoneMsg:
		if msg.seq == m.freshSeq {
			m.fresh = false
		}
		return m, nil

	case displayLoadedMsg:
		if msg.err != nil {
			log.Printf("display load failed for %s: %v", msg.path, msg.err)
			return m, nil
		}
		m.images[msg.path] = msg.img
		return m, nil
	}

	return m, nil
}

func (m Model) handleLoadResult(msg loadResultMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.res.Outcome {
	case feed.LoadSuccess:
		if m.session.ResolveSuccess(msg.attempt, msg.n) {
			m.images[msg.n.Path] = msg.res.Image
			m.pruneImages()
			if m.session.Mode() == feed.ModeLive {
				m.fresh = true
				m.freshSeq++
				seq := m.freshSeq
				cmds = append(cmds, tea.Tick(freshDuration, func(time.Time) tea.Msg {
					return freshDoneMsg{seq: seq}
				}))
			}
		}
	case feed.LoadFailure:
		if m.session.ResolveFailure(msg.attempt) {
			log.Printf("image load failed: %v", msg.res.Err)
		}
	case feed.LoadTimeout:
		if m.session.ResolveTimeout(msg.attempt) {
			log.Printf("image load stalled: %s", msg.n.Path)
		}
	}

	attempt := msg.attempt
	cmds = append(cmds, tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return settleMsg{attempt: attempt}
	}))
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		if m.session.Mode() == feed.ModeLive {
			m.session.Pause()
			return m, nil
		}
		return m, m.goLive()

	case key.Matches(msg, m.keys.GoLive):
		if m.session.Mode() == feed.ModePaused {
			return m, m.goLive()
		}
		return m, nil

	case key.Matches(msg, m.keys.Older):
		m.session.Older()
		return m, m.ensureDisplayable()

	case key.Matches(msg, m.keys.Newer):
		m.session.Newer()
		return m, m.ensureDisplayable()

	case key.Matches(msg, m.keys.Select):
		// Bindings are the digits 1-9; position is 1-based on screen.
		pos := int(msg.String()[0] - '1')
		m.session.Select(pos)
		return m, m.ensureDisplayable()

	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
		m.images = make(map[string]image.Image)
		m.renderCache = make(map[string]string)
		m.fresh = false
		return m, nil

	case key.Matches(msg, m.keys.Overlay):
		m.showOverlay = !m.showOverlay
		return m, nil
	}

	return m, nil
}

// drainCmd starts the next load if the loader is idle and the queue is
// non-empty. Safe to call at any time.
func (m Model) drainCmd() tea.Cmd {
	n, attempt, ok := m.session.StartLoad()
	if !ok {
		return nil
	}
	fetcher := m.fetcher
	return func() tea.Msg {
		return loadResultMsg{attempt: attempt, n: n, res: fetcher.Load(n.Path)}
	}
}

// goLive resumes the live feed, reconciling the latest suppressed
// notification, and restarts draining if entries are pending.
func (m Model) goLive() tea.Cmd {
	drain := m.session.GoLive()
	var cmds []tea.Cmd
	if cmd := m.ensureDisplayable(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if drain {
		if cmd := m.drainCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// ensureDisplayable fetches the decoded image for the current selection
// when it is not cached, e.g. a notification reconciled into history by
// goLive without ever passing through the loader. This display fetch is
// outside the queue/loader path and touches no session state.
func (m Model) ensureDisplayable() tea.Cmd {
	current := m.session.Current()
	if current == nil {
		return nil
	}
	if _, ok := m.images[current.Path]; ok {
		return nil
	}
	fetcher := m.fetcher
	path := current.Path
	return func() tea.Msg {
		res := fetcher.Load(path)
		if res.Outcome != feed.LoadSuccess {
			return displayLoadedMsg{path: path, err: res.Err}
		}
		return displayLoadedMsg{path: path, img: res.Image}
	}
}

// pruneImages drops decoded images whose entries were evicted from
// history, keeping the latest notification's image for goLive.
func (m Model) pruneImages() {
	for path := range m.images {
		if m.session.Contains(path) {
			continue
		}
		if latest := m.session.Latest(); latest != nil && latest.Path == path {
			continue
		}
		delete(m.images, path)
	}
}

// View renders the full viewer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.renderStatusBar(),
		m.renderImagePane(),
		m.renderLabelLine(),
	}
	if m.showOverlay {
		sections = append(sections, overlayText(m.session.Current(), m.session.CurrentIndex(), m.session.HistoryLen()))
	}
	sections = append(sections, styleDimmed.Render("  p:pause/resume  ←/→:browse  1-9:select  g:live  c:clear  o:info  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	mode := styleLabel.Render(m.session.Mode().String())
	counts := fmt.Sprintf("queue %d  history %d", m.session.QueueLen(), m.session.HistoryLen())
	sep := styleDimmed.Render(" | ")
	return " " + connLabel(m.connState) + sep + mode + sep + styleDimmed.Render(counts)
}

func (m Model) renderImagePane() string {
	current := m.session.Current()
	if current == nil {
		return styleDimmed.Render("\n  waiting for images...\n")
	}

	img, ok := m.images[current.Path]
	if !ok {
		return styleDimmed.Render("\n  loading " + current.Filename + "...\n")
	}

	wCells := m.width - 2
	hCells := m.height - 5
	if m.showOverlay {
		hCells -= 7
	}
	if wCells < 4 || hCells < 2 {
		return styleDimmed.Render("terminal too small")
	}

	key := fmt.Sprintf("%s|%dx%d", current.Path, wCells, hCells)
	rendered, ok := m.renderCache[key]
	if !ok {
		var err error
		rendered, err = m.renderer.Render(img, wCells, hCells)
		if err != nil {
			return styleDimmed.Render("render failed: " + err.Error())
		}
		m.renderCache[key] = rendered
	}
	return rendered
}

func (m Model) renderLabelLine() string {
	label := styleLabel.Render(StatusLabel(m.session.Mode(), m.session.CurrentIndex(), m.session.HistoryLen()))
	if m.fresh {
		label += "  " + styleFresh.Render("NEW")
	}
	if current := m.session.Current(); current != nil {
		label += styleDimmed.Render("  " + current.Filename)
	}
	return " " + label
}
