package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/imagewatch/imagewatch/internal/config"
	"github.com/imagewatch/imagewatch/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	dir := flag.String("dir", "", "Override watched image directory")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	if *dir != "" {
		cfg.Watch.Dir = *dir
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	hub := server.NewHub()
	pending := server.NewPending(cfg.Watch.QueueSize)
	srv := server.NewServer(cfg, hub, pending)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("watching %s", cfg.Watch.Dir)
	go srv.Watch(ctx)
	go srv.Process(ctx)

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	if err := server.ListenAndServe(cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
