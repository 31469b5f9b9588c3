package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/cexll/review-checklist/internal/config"
	"github.com/cexll/review-checklist/internal/executor"
	"github.com/cexll/review-checklist/internal/webhook"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var (
	loadDotEnv         = godotenv.Load
	newSyncer          = func(cfg *config.Config) webhook.Syncer { return executor.NewFromConfig(cfg) }
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(_ context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("Starting checklist webhook server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("Checklist definitions: %s (%s)", cfg.ChecklistConfig, cfg.ChecklistSource)

	handler := webhook.NewHandler(cfg.GitHubWebhookSecret, newSyncer(cfg))
	r := newRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Webhook endpoint: http://localhost%s/webhook", addr)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

func newRouter(handler *webhook.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/webhook", handler.Handle).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"review-checklist","status":"running"}`))
	}).Methods("GET")

	return r
}
