package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imagewatch/imagewatch/internal/app"
	"github.com/imagewatch/imagewatch/internal/client"
	"github.com/imagewatch/imagewatch/internal/render"
)

func main() {
	wsURL := flag.String("url", "ws://127.0.0.1:8882/ws", "WebSocket URL of the imagewatch daemon")
	protocol := flag.String("protocol", "halfblocks", "Image protocol: kitty, iterm2, sixel or halfblocks")
	flag.Parse()

	// Derive HTTP base URL from WebSocket URL.
	httpBase := deriveHTTPBase(*wsURL)

	ws := client.NewWSClient(*wsURL)
	fetcher := client.NewFetcher(httpBase)
	renderer := render.New(render.ParseProtocol(*protocol))

	m := app.New(ws, fetcher, renderer)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveHTTPBase converts ws://host:port/ws → http://host:port
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "http://127.0.0.1:8882"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
