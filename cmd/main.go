package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cexll/review-checklist/internal/config"
	"github.com/cexll/review-checklist/internal/executor"
	"github.com/cexll/review-checklist/internal/github"
	"github.com/joho/godotenv"
)

type syncer interface {
	Sync(ctx context.Context, pr github.PullRequest) (*executor.Result, error)
}

var (
	loadDotEnv = godotenv.Load
	newSyncer  = func(cfg *config.Config) syncer { return executor.NewFromConfig(cfg) }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("Checklist sync failed: %v", err)
	}
}

func run(ctx context.Context) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateRun(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pr, err := github.ParsePullRequest(cfg.Repository, cfg.PRNumber)
	if err != nil {
		return err
	}

	log.Printf("Repository: %s", cfg.Repository)
	log.Printf("Pull request: #%d", cfg.PRNumber)
	log.Printf("Checklist definitions: %s (%s)", cfg.ChecklistConfig, cfg.ChecklistSource)

	result, err := newSyncer(cfg).Sync(ctx, pr)
	if err != nil {
		return err
	}
	log.Printf("Done: %s (%s)", result.Action, result.Stats)
	return nil
}
