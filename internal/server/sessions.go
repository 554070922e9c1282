// internal/server/sessions.go
package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"founder-intake/internal/common/logger"
	"founder-intake/internal/common/metrics"
	"founder-intake/internal/models"
	"founder-intake/internal/snapshot"
	"founder-intake/internal/store"
	"founder-intake/internal/wizard"
)

// SessionRegistry owns the per-founder wizard machines. A session id not
// seen before is rebuilt from its snapshot slots, so sessions survive a
// process restart as long as the cache does.
type SessionRegistry struct {
	mu       sync.Mutex
	machines map[string]*wizard.Machine

	store store.DocumentStore
	cache *snapshot.Cache
	log   logger.Logger
	hook  wizard.SubmitHook
}

func NewSessionRegistry(st store.DocumentStore, cache *snapshot.Cache, hook wizard.SubmitHook, log logger.Logger) *SessionRegistry {
	return &SessionRegistry{
		machines: make(map[string]*wizard.Machine),
		store:    st,
		cache:    cache,
		log:      log,
		hook:     hook,
	}
}

// Create starts a fresh session.
func (r *SessionRegistry) Create(ctx context.Context) *wizard.Machine {
	return r.build(ctx, uuid.NewString())
}

// Get returns the machine for a session id, rebuilding it from the
// snapshot cache when this process has not seen the id yet.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) *wizard.Machine {
	r.mu.Lock()
	m, ok := r.machines[sessionID]
	r.mu.Unlock()
	if ok {
		return m
	}
	return r.build(ctx, sessionID)
}

func (r *SessionRegistry) build(ctx context.Context, sessionID string) *wizard.Machine {
	m := wizard.NewMachine(sessionID, r.store, r.cache, r.log)
	if r.hook != nil {
		m.WithSubmitHook(r.hook)
	}
	m.Hydrate(ctx)

	r.mu.Lock()
	if existing, ok := r.machines[sessionID]; ok {
		// lost the race to another request for the same id
		r.mu.Unlock()
		return existing
	}
	r.machines[sessionID] = m
	metrics.ActiveSessions.Set(float64(len(r.machines)))
	r.mu.Unlock()
	return m
}

// Drop forgets a session machine. The snapshot cache is left alone; only
// submit clears it.
func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.machines, sessionID)
	metrics.ActiveSessions.Set(float64(len(r.machines)))
	r.mu.Unlock()
}

// stateResponse is the wire shape of a session state.
type stateResponse struct {
	SessionID  string           `json:"sessionId"`
	Screen     int              `json:"screen"`
	ScreenName string           `json:"screenName"`
	Progress   int              `json:"progress"`
	Submitting bool             `json:"submitting"`
	DocumentID string           `json:"documentId,omitempty"`
	Draft      models.FormDraft `json:"draft"`
	SaveError  string           `json:"saveError,omitempty"`
}

func renderState(s wizard.State) stateResponse {
	resp := stateResponse{
		SessionID:  s.SessionID,
		Screen:     int(s.Screen),
		ScreenName: s.ScreenName,
		Progress:   s.Progress,
		Submitting: s.Submitting,
		DocumentID: s.DocumentID,
		Draft:      s.Draft,
	}
	if s.SaveError != nil {
		resp.SaveError = s.SaveError.Error()
	}
	return resp
}
