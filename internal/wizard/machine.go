// Package wizard owns the intake flow: a cursor over the fixed screen
// sequence, the draft under edit, and the persistence protocol that keeps
// the local snapshot and the remote document in step with it.
package wizard

import (
	"context"
	"sync"
	"time"

	commonerrors "founder-intake/internal/common/errors"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/common/metrics"
	"founder-intake/internal/models"
	"founder-intake/internal/sanitize"
	"founder-intake/internal/snapshot"
	"founder-intake/internal/store"
)

// DefaultCollection is the store collection drafts and submissions live in.
const DefaultCollection = "intakeForms"

// SubmitHook runs after a successful submit with the finalized document.
// Used for notifications and search indexing; failures there never affect
// the submit outcome.
type SubmitHook func(documentID string, draft models.FormDraft)

// Machine is one founder's wizard session.
//
// Draft mutations are synchronous under the mutex. Remote persistence is
// a coalescing fire-and-forget queue: every merge enqueues the full
// current draft, a single worker drains it, and intermediate payloads are
// dropped so the newest draft always wins. The store does last-write-wins
// with no conflict detection, so dropping stale payloads is safe.
type Machine struct {
	mu         sync.Mutex
	sessionID  string
	screen     ScreenID
	draft      models.FormDraft
	documentID string
	submitting bool
	fieldRev   map[string]uint64
	lastSave   error

	store      store.DocumentStore
	collection string
	cache      *snapshot.Cache
	log        logger.Logger
	onSubmit   SubmitHook

	saveMu   sync.Mutex
	saveCond *sync.Cond
	pending  *models.FormDraft
	saving   bool
	seq      uint64
	doneSeq  uint64
}

// NewMachine builds a session machine. Call Hydrate before first use.
func NewMachine(sessionID string, st store.DocumentStore, cache *snapshot.Cache, log logger.Logger) *Machine {
	m := &Machine{
		sessionID:  sessionID,
		draft:      models.NewFormDraft(),
		fieldRev:   make(map[string]uint64),
		store:      st,
		collection: DefaultCollection,
		cache:      cache,
		log:        log.WithFields(map[string]interface{}{"sessionId": sessionID}),
	}
	m.saveCond = sync.NewCond(&m.saveMu)
	return m
}

// WithCollection overrides the store collection.
func (m *Machine) WithCollection(collection string) *Machine {
	m.collection = collection
	return m
}

// WithSubmitHook installs the post-submit callback.
func (m *Machine) WithSubmitHook(hook SubmitHook) *Machine {
	m.onSubmit = hook
	return m
}

// State is a read-only view of the session.
type State struct {
	SessionID  string
	Screen     ScreenID
	ScreenName string
	Draft      models.FormDraft
	DocumentID string
	Submitting bool
	Progress   int
	SaveError  error
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		SessionID:  m.sessionID,
		Screen:     m.screen,
		ScreenName: Screens[m.screen].Name,
		Draft:      m.draft,
		DocumentID: m.documentID,
		Submitting: m.submitting,
		Progress:   progressFor(m.screen),
		SaveError:  m.lastSave,
	}
}

func progressFor(screen ScreenID) int {
	p := int(float64(screen)/float64(ScreenCount-1)*100 + 0.5)
	if p > 100 {
		p = 100
	}
	return p
}

// Advance moves to the next screen iff the active screen's predicate
// holds. A refused advance changes nothing.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.screen >= ScreenCount-1 {
		return commonerrors.NewScreenValidationFailedError(
			Screens[m.screen].Name, "already on the final screen")
	}
	if !Screens[m.screen].CanAdvance(m.draft) {
		return commonerrors.NewScreenValidationFailedError(
			Screens[m.screen].Name, "required fields incomplete")
	}
	m.screen++
	return nil
}

// Retreat moves back one screen; a no-op on the welcome screen.
func (m *Machine) Retreat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.screen > 0 {
		m.screen--
	}
}

// JumpTo moves directly to an earlier screen, as the review screen's edit
// links do. The review screen itself is not a jump target.
func (m *Machine) JumpTo(target ScreenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if target < 0 || target >= ScreenCount-1 {
		return commonerrors.NewScreenValidationFailedError(
			Screens[m.screen].Name, "jump target out of range")
	}
	m.screen = target
	return nil
}

// MergeUpdate applies a shallow patch to the draft, snapshots it locally,
// and queues the remote autosave. The patch is validated as a whole; an
// invalid patch changes nothing. The call never waits on the store.
func (m *Machine) MergeUpdate(ctx context.Context, patch map[string]interface{}) error {
	m.mu.Lock()
	if err := m.draft.ApplyPatch(patch); err != nil {
		m.mu.Unlock()
		return commonerrors.NewInvalidPatchError(err.Error())
	}
	for key := range patch {
		m.fieldRev[key]++
	}
	draft := m.draft
	m.mu.Unlock()

	if err := m.cache.SaveDraft(ctx, m.sessionID, draft); err != nil {
		m.log.Warn("draft snapshot write failed", map[string]interface{}{"error": err.Error()})
	}

	m.queueAutosave(draft)
	return nil
}

// FieldRevision returns the edit revision for a field. Capture it before
// issuing a generation request and hand it back to ApplyGeneration.
func (m *Machine) FieldRevision(field string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fieldRev[field]
}

// ApplyGeneration writes generated text into a field unless the founder
// has edited it since rev was captured; a stale response is dropped and
// reported as not applied.
func (m *Machine) ApplyGeneration(ctx context.Context, field string, rev uint64, text string) (bool, error) {
	m.mu.Lock()
	if m.fieldRev[field] != rev {
		m.mu.Unlock()
		m.log.Info("stale generation response dropped", map[string]interface{}{"field": field})
		return false, nil
	}
	m.mu.Unlock()

	if err := m.MergeUpdate(ctx, map[string]interface{}{field: text}); err != nil {
		return false, err
	}
	return true, nil
}

// queueAutosave coalesces: the latest draft replaces any undelivered one
// and a single worker goroutine drains the slot.
func (m *Machine) queueAutosave(draft models.FormDraft) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	m.pending = &draft
	m.seq++
	metrics.AutosaveQueueDepth.Set(1)
	if !m.saving {
		m.saving = true
		go m.saveWorker()
	}
}

func (m *Machine) saveWorker() {
	for {
		m.saveMu.Lock()
		if m.pending == nil {
			m.saving = false
			m.doneSeq = m.seq
			metrics.AutosaveQueueDepth.Set(0)
			m.saveCond.Broadcast()
			m.saveMu.Unlock()
			return
		}
		draft := *m.pending
		m.pending = nil
		target := m.seq
		m.saveMu.Unlock()

		m.persist(draft)

		m.saveMu.Lock()
		if target > m.doneSeq {
			m.doneSeq = target
		}
		m.saveCond.Broadcast()
		m.saveMu.Unlock()
	}
}

// persist writes the full draft remotely: create on first save (the id is
// recorded in state and the snapshot cache), merge afterwards. Failure is
// logged and remembered but never blocks editing; the in-memory draft
// stays the source of truth.
func (m *Machine) persist(draft models.FormDraft) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	doc := sanitize.CleanMap(draft.ToMap())

	m.mu.Lock()
	documentID := m.documentID
	m.mu.Unlock()

	var err error
	if documentID == "" {
		var id string
		id, err = m.store.Create(ctx, m.collection, doc)
		if err == nil {
			m.mu.Lock()
			m.documentID = id
			m.mu.Unlock()
			if cacheErr := m.cache.SaveDocumentID(ctx, m.sessionID, id); cacheErr != nil {
				m.log.Warn("document id snapshot write failed", map[string]interface{}{"error": cacheErr.Error()})
			}
		}
	} else {
		err = m.store.Merge(ctx, m.collection, documentID, doc)
	}

	m.mu.Lock()
	m.lastSave = err
	m.mu.Unlock()

	if err != nil {
		metrics.AutosavesTotal.WithLabelValues("failure").Inc()
		m.log.Error("draft autosave failed", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.AutosavesTotal.WithLabelValues("success").Inc()
}

// Flush blocks until every queued autosave has been attempted.
func (m *Machine) Flush(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		m.saveMu.Lock()
		for m.doneSeq < m.seq {
			m.saveCond.Wait()
		}
		m.saveMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Submit finalizes the draft. The review checklist gates it; on success
// the submission timestamp is merged remotely, the snapshot slots are
// cleared, and the session resets to a fresh draft on the welcome screen.
// On persistence failure the draft is left untouched so the founder can
// retry.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return commonerrors.NewScreenValidationFailedError("review", "submit already in progress")
	}
	m.submitting = true
	if !reviewComplete(m.draft) {
		m.submitting = false
		m.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return commonerrors.NewScreenValidationFailedError("review", "submission checklist incomplete")
	}
	draft := m.draft
	m.mu.Unlock()

	m.Flush(ctx)

	m.mu.Lock()
	documentID := m.documentID
	m.mu.Unlock()

	var err error
	if documentID == "" {
		documentID, err = m.store.Create(ctx, m.collection, sanitize.CleanMap(draft.ToMap()))
	}
	if err == nil {
		submittedAt := time.Now().UTC().Format(time.RFC3339)
		err = m.store.Merge(ctx, m.collection, documentID, store.Document{"submittedAt": submittedAt})
		draft.SubmittedAt = submittedAt
	}
	if err != nil {
		m.mu.Lock()
		m.submitting = false
		m.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		m.log.Error("submit failed", map[string]interface{}{"error": err.Error()})
		return commonerrors.NewDraftPersistFailedError(err)
	}

	if err := m.cache.Clear(ctx, m.sessionID); err != nil {
		m.log.Warn("snapshot clear failed after submit", map[string]interface{}{"error": err.Error()})
	}

	m.mu.Lock()
	m.documentID = ""
	m.draft = models.NewFormDraft()
	m.screen = ScreenWelcome
	m.fieldRev = make(map[string]uint64)
	m.lastSave = nil
	m.submitting = false
	m.mu.Unlock()

	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	m.log.Info("submission finalized", map[string]interface{}{"documentId": documentID})

	if m.onSubmit != nil {
		go m.onSubmit(documentID, draft)
	}
	return nil
}

// Hydrate restores the session. The local snapshot loads synchronously so
// there is something to show immediately; if a document id is known, the
// remote copy is fetched in the background and replaces the draft
// wholesale when it arrives. Remote wins: merges issued in between may be
// overwritten when the fetch lands.
func (m *Machine) Hydrate(ctx context.Context) {
	if draft, ok := m.cache.LoadDraft(ctx, m.sessionID); ok {
		m.mu.Lock()
		m.draft = draft
		m.mu.Unlock()
	}

	documentID, ok := m.cache.LoadDocumentID(ctx, m.sessionID)
	if !ok {
		return
	}
	m.mu.Lock()
	m.documentID = documentID
	m.mu.Unlock()

	go m.hydrateRemote(ctx, documentID)
}

func (m *Machine) hydrateRemote(ctx context.Context, documentID string) {
	doc, err := m.store.Get(ctx, m.collection, documentID)
	if err != nil {
		if err != store.ErrNotFound {
			m.log.Warn("remote hydration failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	draft, err := models.DraftFromMap(doc)
	if err != nil {
		m.log.Warn("remote document undecodable", map[string]interface{}{"error": err.Error()})
		return
	}
	m.mu.Lock()
	m.draft = draft
	m.mu.Unlock()
}
