package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmorandell/innkeeper/internal/innkeeper/audit"
	"github.com/dmorandell/innkeeper/internal/innkeeper/supervise"
)

// ReviewAPI exposes the pending supervision queue over the health HTTP
// server so operators can list held turns and release them without touching
// the database. Resolutions are announced to the ops room.
type ReviewAPI struct {
	records  reviewStore
	notifier audit.Notifier
}

// reviewStore is the subset of the record store the API needs.
type reviewStore interface {
	ListPending(ctx context.Context, tenantID string, limit int) ([]supervise.PendingRecord, error)
	Resolve(ctx context.Context, id, resolvedBy string) error
}

// NewReviewAPI creates the API. notifier may be nil.
func NewReviewAPI(records reviewStore, notifier audit.Notifier) *ReviewAPI {
	if notifier == nil {
		notifier = audit.Noop{}
	}
	return &ReviewAPI{records: records, notifier: notifier}
}

// RegisterRoutes mounts the review endpoints on the health server.
func (a *ReviewAPI) RegisterRoutes(h *HealthServer) {
	h.Handle("/reviews", http.HandlerFunc(a.handleList))
	h.Handle("/reviews/resolve", http.HandlerFunc(a.handleResolve))
}

// resolveRequest is the body of POST /reviews/resolve.
type resolveRequest struct {
	ID         string `json:"id"`
	ResolvedBy string `json:"resolved_by"`
}

func (a *ReviewAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	records, err := a.records.ListPending(r.Context(), r.URL.Query().Get("tenant"), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *ReviewAPI) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ResolvedBy == "" {
		req.ResolvedBy = "operator"
	}

	if err := a.records.Resolve(r.Context(), req.ID, req.ResolvedBy); err != nil {
		if errors.Is(err, supervise.ErrRecordNotFound) {
			http.Error(w, "record not found or already resolved", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.notifier.Notify(r.Context(), audit.Event{
		Kind:    audit.KindReviewResolved,
		Message: fmt.Sprintf("held turn %s released by %s", req.ID, req.ResolvedBy),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved", "id": req.ID})
}
