// Package dashboard maintains the admin-facing view of stored intake
// forms: a subscription-fed, submission-time-ordered list with delete
// and CSV export.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	commonerrors "founder-intake/internal/common/errors"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
	"founder-intake/internal/store"
)

// ReadModel mirrors the intake collection. Every subscription delivery is
// authoritative and fully replaces local state.
type ReadModel struct {
	mu      sync.RWMutex
	entries []models.Submission

	store       store.DocumentStore
	collection  string
	log         logger.Logger
	unsubscribe func()
}

func NewReadModel(st store.DocumentStore, log logger.Logger) *ReadModel {
	return &ReadModel{
		store:      st,
		collection: "intakeForms",
		log:        log,
	}
}

// WithCollection overrides the source collection.
func (r *ReadModel) WithCollection(collection string) *ReadModel {
	r.collection = collection
	return r
}

// Start subscribes to the collection. Stop (or ctx cancellation) ends it.
func (r *ReadModel) Start(ctx context.Context) error {
	unsubscribe, err := r.store.Subscribe(ctx, r.collection, r.applySnapshot)
	if err != nil {
		return err
	}
	r.unsubscribe = unsubscribe
	return nil
}

func (r *ReadModel) Stop() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *ReadModel) applySnapshot(snap store.Snapshot) {
	entries := make([]models.Submission, 0, len(snap))
	for id, doc := range snap {
		draft, err := models.DraftFromMap(doc)
		if err != nil {
			r.log.Warn("skipping undecodable document", map[string]interface{}{
				"documentId": id,
				"error":      err.Error(),
			})
			continue
		}
		entries = append(entries, models.Submission{ID: id, Draft: draft})
	}

	// newest submissions first; drafts without a timestamp sort to the end
	sort.SliceStable(entries, func(i, j int) bool {
		return submittedTime(entries[i]).After(submittedTime(entries[j]))
	})

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

func submittedTime(s models.Submission) time.Time {
	if s.Draft.SubmittedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.Draft.SubmittedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Entries returns the current list, newest first.
func (r *ReadModel) Entries() []models.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Submission, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get returns one entry by document id.
func (r *ReadModel) Get(id string) (models.Submission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.Submission{}, false
}

// Delete issues the remote delete. Optimistic: on failure the list keeps
// its last known contents and the next snapshot resyncs it, so there is
// nothing to roll back.
func (r *ReadModel) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		r.log.Error("entry delete failed", map[string]interface{}{
			"documentId": id,
			"error":      err.Error(),
		})
		return commonerrors.NewDraftDeleteFailedError(id, err)
	}
	return nil
}
