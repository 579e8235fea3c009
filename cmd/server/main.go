package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wagate/backend/internal/casestore"
	"github.com/wagate/backend/internal/config"
	"github.com/wagate/backend/internal/frontend"
	"github.com/wagate/backend/internal/gateway"
	"github.com/wagate/backend/internal/mock"
	"github.com/wagate/backend/internal/provider"
	"github.com/wagate/backend/internal/provider/waweb"
	"github.com/wagate/backend/internal/responder"
	"github.com/wagate/backend/internal/session"
	"github.com/wagate/backend/internal/ws"
)

func main() {
	mockMode := flag.Bool("mock", false, "Use the in-process mock engine")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	var factory provider.Factory
	if *mockMode {
		log.Println("Starting with the mock engine")
		factory = func(restored *provider.Credentials) (provider.Client, error) {
			return mock.NewClient(restored), nil
		}
	} else {
		log.Printf("Using engine at %s", cfg.Engine.URL)
		factory = waweb.Factory(cfg.Engine.URL, cfg.Engine.Token)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	store := session.NewStore(cfg.Session.File)
	machine := session.NewMachine(store, factory, hub)
	machine.SetMessageHandler(responder.Handle)

	if err := machine.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	staticDir := cfg.Static.Dir
	if frontend.Handler() != nil {
		// Built with -tags embed: the UI ships inside the binary.
		staticDir = ""
	}

	cases := casestore.NewStore(cfg.Cases.Dir)
	server := gateway.NewServer(machine, hub, cases, staticDir)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)
	if h := frontend.Handler(); h != nil {
		mux.Handle("/", h)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("App running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
