package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/cexll/review-checklist/internal/checklist"
	"github.com/cexll/review-checklist/internal/executor"
	"github.com/cexll/review-checklist/internal/github"
	"github.com/cexll/review-checklist/internal/github/comment"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeSyncer struct {
	calls []github.PullRequest
	err   error
}

func (f *fakeSyncer) Sync(_ context.Context, pr github.PullRequest) (*executor.Result, error) {
	f.calls = append(f.calls, pr)
	if f.err != nil {
		return nil, f.err
	}
	return &executor.Result{
		Action: comment.ActionUpdatedBody,
		Stats:  checklist.Stats{Total: 4, Completed: 3, Pending: 1, Progress: 0.75},
	}, nil
}

func TestHandleSyncChecklist_Success(t *testing.T) {
	s := &fakeSyncer{}
	tool := &checklistTool{syncer: s}

	res, _, err := tool.HandleSyncChecklist(context.Background(), &mcp.CallToolRequest{},
		SyncChecklistParams{Owner: "octo", Repo: "repo", Number: 4})
	if err != nil {
		t.Fatalf("HandleSyncChecklist() error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result")
	}
	if len(s.calls) != 1 || s.calls[0] != (github.PullRequest{Owner: "octo", Repo: "repo", Number: 4}) {
		t.Fatalf("calls = %+v", s.calls)
	}

	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want *mcp.TextContent", res.Content[0])
	}
	var got syncResponse
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", text.Text, err)
	}
	want := syncResponse{Success: true, PR: "octo/repo#4", Action: "updated_body", Total: 4, Completed: 3, Progress: 0.75}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
}

func TestHandleSyncChecklist_SyncError(t *testing.T) {
	tool := &checklistTool{syncer: &fakeSyncer{err: errors.New("rate limited")}}

	res, _, err := tool.HandleSyncChecklist(context.Background(), &mcp.CallToolRequest{},
		SyncChecklistParams{Owner: "o", Repo: "r", Number: 1})
	if err != nil {
		t.Fatalf("HandleSyncChecklist() error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result")
	}
	if text := res.Content[0].(*mcp.TextContent).Text; !strings.Contains(text, "rate limited") {
		t.Fatalf("text = %q", text)
	}
}

func TestHandleSyncChecklist_InvalidParams(t *testing.T) {
	tests := []SyncChecklistParams{
		{Owner: "", Repo: "r", Number: 1},
		{Owner: "o", Repo: "", Number: 1},
		{Owner: "o", Repo: "r", Number: 0},
	}
	for _, params := range tests {
		s := &fakeSyncer{}
		_, _, err := (&checklistTool{syncer: s}).HandleSyncChecklist(context.Background(), &mcp.CallToolRequest{}, params)
		if err == nil {
			t.Errorf("params %+v: expected error", params)
		}
		if len(s.calls) != 0 {
			t.Errorf("params %+v: syncer must not be called", params)
		}
	}
}

func TestNewServer(t *testing.T) {
	if newServer(&checklistTool{syncer: &fakeSyncer{}}) == nil {
		t.Fatal("newServer returned nil")
	}
}
