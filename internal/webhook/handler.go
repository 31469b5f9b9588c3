package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cexll/review-checklist/internal/concurrency"
	"github.com/cexll/review-checklist/internal/executor"
	"github.com/cexll/review-checklist/internal/github"
)

// Syncer reconciles the checklist of one pull request.
type Syncer interface {
	Sync(ctx context.Context, pr github.PullRequest) (*executor.Result, error)
}

// Pull request actions that can change which checklists apply. "edited" is
// left out: it fires for our own body updates.
var syncActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"labeled":     true,
	"unlabeled":   true,
	"synchronize": true,
}

type pullRequestEvent struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Handler handles GitHub pull_request webhook events
type Handler struct {
	webhookSecret string
	syncer        Syncer
	deliveries    *deliveryDeduper
	locks         *concurrency.Locks
}

// NewHandler creates a new webhook handler
func NewHandler(webhookSecret string, syncer Syncer) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		syncer:        syncer,
		deliveries:    newDeliveryDeduper(12 * time.Hour),
		locks:         concurrency.NewLocks(),
	}
}

// Handle verifies the delivery and syncs the checklist of the pull request
// it refers to. Events that cannot affect the checklist are acknowledged.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Webhook] Error reading payload: %v", err)
		http.Error(w, "Error reading payload", http.StatusBadRequest)
		return
	}

	if err := Verify(payload, r.Header.Get("X-Hub-Signature-256"), h.webhookSecret); err != nil {
		log.Printf("[Webhook] Signature verification failed: %v", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType != "pull_request" {
		writeStatus(w, http.StatusOK, "ignored", fmt.Sprintf("event %q", eventType))
		return
	}

	var event pullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[Webhook] Invalid pull_request payload: %v", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if !syncActions[event.Action] {
		writeStatus(w, http.StatusOK, "ignored", fmt.Sprintf("action %q", event.Action))
		return
	}

	number := event.PullRequest.Number
	if number == 0 {
		number = event.Number
	}
	pr, err := github.ParsePullRequest(event.Repository.FullName, number)
	if err != nil {
		log.Printf("[Webhook] %v", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if !h.deliveries.markIfNew(delivery) {
		log.Printf("[Webhook] Delivery %s already processed, skipping", delivery)
		writeStatus(w, http.StatusOK, "ignored", "duplicate delivery")
		return
	}

	// Events for one pull request are synced one at a time.
	if err := h.locks.Acquire(r.Context(), pr.String()); err != nil {
		h.deliveries.forget(delivery)
		log.Printf("[Webhook] Gave up waiting for %s: %v", pr, err)
		http.Error(w, "Sync cancelled", http.StatusServiceUnavailable)
		return
	}
	defer h.locks.Release(pr.String())

	result, err := h.syncer.Sync(r.Context(), pr)
	if err != nil {
		h.deliveries.forget(delivery)
		log.Printf("[Webhook] Sync of %s failed: %v", pr, err)
		http.Error(w, "Sync failed", http.StatusInternalServerError)
		return
	}
	writeStatus(w, http.StatusOK, string(result.Action), result.Stats.String())
}

func writeStatus(w http.ResponseWriter, code int, status, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "detail": detail})
}
