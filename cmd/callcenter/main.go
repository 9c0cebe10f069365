package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hellodesk/callcenter/internal/config"
	"github.com/hellodesk/callcenter/internal/server"
	"github.com/hellodesk/callcenter/internal/session"
	"github.com/hellodesk/callcenter/internal/vapi"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	log.Println("callcenter: starting")

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	for _, warning := range warnings {
		log.Printf("warning: %s", warning)
	}

	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("static assets init failed: %v", err)
	}

	var apiClient *vapi.Client
	var transport session.VoiceTransport
	if cfg.VapiPrivateKey != "" {
		apiClient = vapi.NewClient(cfg.VapiPrivateKey, vapi.WithBaseURL(cfg.VapiBaseURL))
		if cfg.AssistantID != "" {
			transport = vapi.NewTransport(apiClient, cfg.AssistantID)
		}
	}

	var forwarder *vapi.Forwarder
	if cfg.WebhookURL != "" {
		forwarder = vapi.NewForwarder(cfg.WebhookURL)
	}

	hub := server.NewHub()

	var relay session.TranscriptRelay
	if forwarder != nil {
		relay = forwarder
	}
	manager := session.NewManager(transport, relay, hub, cfg.AssistantID, cfg.ParsedOverlayDelay())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	deps := server.Deps{
		Env:                cfg.Env,
		DefaultCountryCode: cfg.DefaultCountryCode,
		CampaignName:       cfg.CampaignName,
		Sessions:           manager,
	}
	if apiClient != nil {
		deps.Vapi = apiClient
	}
	if forwarder != nil {
		deps.Forwarder = forwarder
	}

	handler, err := server.Handler(assets, hub, deps)
	if err != nil {
		log.Fatalf("build http handler failed: %v", err)
	}

	httpServer := &http.Server{Addr: cfg.Addr, Handler: handler}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	log.Printf("callcenter: web UI on http://127.0.0.1%s", cfg.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("callcenter: shutting down")
	cancel()
	manager.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: http shutdown failed: %v", err)
	}
}
