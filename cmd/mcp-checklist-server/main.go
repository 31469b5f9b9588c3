package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cexll/review-checklist/internal/config"
	"github.com/cexll/review-checklist/internal/executor"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[MCP Checklist Server] Failed to load configuration: %v", err)
	}

	log.Println("[MCP Checklist Server] Starting review checklist MCP server v1.0.0")
	log.Printf("[MCP Checklist Server] Checklist definitions: %s (%s)", cfg.ChecklistConfig, cfg.ChecklistSource)

	server := newServer(&checklistTool{syncer: executor.NewFromConfig(cfg)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[MCP Checklist Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Checklist Server] Server error: %v", err)
	}
	log.Println("[MCP Checklist Server] Server stopped gracefully")
}

func newServer(t *checklistTool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "review-checklist-server",
		Version: "v1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_checklist",
		Description: "Create or refresh the generated self-review checklist of a pull request, keeping checked items checked",
	}, t.HandleSyncChecklist)
	log.Println("[MCP Checklist Server] Registered tool: sync_checklist")

	return server
}
