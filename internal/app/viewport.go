package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imagewatch/imagewatch/internal/feed"
)

var (
	styleConnected    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDisconnected = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDimmed       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleFresh        = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	styleLabel        = lipgloss.NewStyle().Bold(true)
	styleOverlay      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
)

// StatusLabel renders the position indicator for the viewport. It is a
// pure projection of (mode, selection, history length): "Live" when the
// feed is live and the shown item is the newest, a 1-based history
// position otherwise.
func StatusLabel(mode feed.Mode, currentIndex, historyLen int) string {
	if mode == feed.ModeLive && currentIndex == 0 {
		return "Live"
	}
	if currentIndex < 0 || historyLen == 0 {
		return "No image"
	}
	return fmt.Sprintf("From History, position %d of %d", currentIndex+1, historyLen)
}

// overlayText renders the metadata panel for the shown notification.
func overlayText(n *feed.Notification, position, historyLen int) string {
	if n == nil {
		return styleOverlay.Render("no image selected")
	}
	ts := time.Unix(int64(n.Timestamp), 0).Format("2006-01-02 15:04:05")
	body := fmt.Sprintf("file: %s\npath: %s\ntime: %s\nkind: %s\npos:  %d of %d",
		n.Filename, n.Path, ts, n.Kind, position+1, historyLen)
	return styleOverlay.Render(body)
}

func connLabel(state feed.ConnectionState) string {
	switch state {
	case feed.StateConnected:
		return styleConnected.Render("● " + state.String())
	case feed.StateErrored:
		return styleDisconnected.Render("✗ " + state.String())
	default:
		return styleDisconnected.Render("○ " + state.String())
	}
}
