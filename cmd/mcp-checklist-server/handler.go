package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cexll/review-checklist/internal/executor"
	"github.com/cexll/review-checklist/internal/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SyncChecklistParams defines the input parameters for the tool
type SyncChecklistParams struct {
	Owner  string `json:"owner" jsonschema:"Repository owner"`
	Repo   string `json:"repo" jsonschema:"Repository name"`
	Number int    `json:"number" jsonschema:"Pull request number"`
}

type syncer interface {
	Sync(ctx context.Context, pr github.PullRequest) (*executor.Result, error)
}

type checklistTool struct {
	syncer syncer
}

type syncResponse struct {
	Success   bool    `json:"success"`
	PR        string  `json:"pull_request"`
	Action    string  `json:"action"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"`
}

// HandleSyncChecklist handles the sync_checklist tool call
func (t *checklistTool) HandleSyncChecklist(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params SyncChecklistParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Checklist Server] Received sync_checklist request")

	pr, err := github.ParsePullRequest(params.Owner+"/"+params.Repo, params.Number)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result, err := t.syncer.Sync(ctx, pr)
	if err != nil {
		log.Printf("[MCP Checklist Server] Failed to sync %s: %v", pr, err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)},
			},
			IsError: true,
		}, nil, nil
	}

	text, err := json.MarshalIndent(syncResponse{
		Success:   true,
		PR:        pr.String(),
		Action:    string(result.Action),
		Total:     result.Stats.Total,
		Completed: result.Stats.Completed,
		Progress:  result.Stats.Progress,
	}, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}

	log.Printf("[MCP Checklist Server] Synced %s: %s", pr, result.Action)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}, nil, nil
}
