// internal/wizard/machine_test.go
package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
	"founder-intake/internal/snapshot"
	"founder-intake/internal/store"
)

type machineFixture struct {
	machine *Machine
	store   *store.MemoryStore
	cache   *snapshot.Cache
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T) *machineFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.NewMemoryStore()
	cache := snapshot.NewCache(client, logger.NewNop())
	return &machineFixture{
		machine: NewMachine("sess-1", st, cache, logger.NewNop()),
		store:   st,
		cache:   cache,
		redis:   mr,
	}
}

func (f *machineFixture) soleDocument(t *testing.T) (string, store.Document) {
	t.Helper()
	ctx := context.Background()
	id := f.machine.State().DocumentID
	require.NotEmpty(t, id)
	doc, err := f.store.Get(ctx, DefaultCollection, id)
	require.NoError(t, err)
	return id, doc
}

func TestAdvanceGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// welcome has no requirements
	require.NoError(t, f.machine.Advance())
	assert.Equal(t, ScreenBasics, f.machine.State().Screen)

	// basics incomplete: refused, no state change
	err := f.machine.Advance()
	require.Error(t, err)
	assert.Equal(t, ScreenBasics, f.machine.State().Screen)

	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{
		"operatingName": "PawScale Inc",
		"foundedDate":   "2024-03-01",
		"stage":         "Launched",
	}))
	require.NoError(t, f.machine.Advance())
	assert.Equal(t, ScreenSnapshot, f.machine.State().Screen)
}

func TestRetreatFloorsAtWelcome(t *testing.T) {
	f := newFixture(t)

	f.machine.Retreat()
	assert.Equal(t, ScreenWelcome, f.machine.State().Screen)

	require.NoError(t, f.machine.Advance())
	f.machine.Retreat()
	assert.Equal(t, ScreenWelcome, f.machine.State().Screen)
}

func TestJumpTo(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.machine.JumpTo(ScreenFinancials))
	assert.Equal(t, ScreenFinancials, f.machine.State().Screen)

	assert.Error(t, f.machine.JumpTo(ScreenReview), "review is not a jump target")
	assert.Error(t, f.machine.JumpTo(ScreenID(-1)))
	assert.Equal(t, ScreenFinancials, f.machine.State().Screen)
}

func TestMergeUpdateInvalidPatchChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.machine.MergeUpdate(ctx, map[string]interface{}{
		"companyName": "PawScale",
		"stage":       "NotAStage",
	})
	require.Error(t, err)
	assert.Empty(t, f.machine.State().Draft.CompanyName)
	assert.Empty(t, f.machine.State().DocumentID)
}

func TestMergeUpdatePersistsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"companyName": "PawScale"}))
	f.machine.Flush(ctx)

	id, doc := f.soleDocument(t)
	assert.Equal(t, "PawScale", doc["companyName"])

	// snapshot cache carries the draft and the new document id
	cached, ok := f.cache.LoadDraft(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "PawScale", cached.CompanyName)
	cachedID, ok := f.cache.LoadDocumentID(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, id, cachedID)

	// later merges hit the same document
	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"city": "Austin"}))
	f.machine.Flush(ctx)
	_, doc = f.soleDocument(t)
	assert.Equal(t, "PawScale", doc["companyName"])
	assert.Equal(t, "Austin", doc["city"])
}

func TestMergeUpdateLocalFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// the draft reflects the merge synchronously, before any remote write
	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"companyName": "Acme"}))
	assert.Equal(t, "Acme", f.machine.State().Draft.CompanyName)

	cached, ok := f.cache.LoadDraft(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "Acme", cached.CompanyName)
}

func TestMergeUpdateIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patch := map[string]interface{}{"companyName": "PawScale", "city": "Austin"}

	require.NoError(t, f.machine.MergeUpdate(ctx, patch))
	once := f.machine.State().Draft
	require.NoError(t, f.machine.MergeUpdate(ctx, patch))
	assert.Equal(t, once, f.machine.State().Draft)
}

func TestAutosaveCoalescingLastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"A", "AB", "ABC", "ABCD"} {
		require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"companyName": name}))
	}
	f.machine.Flush(ctx)

	_, doc := f.soleDocument(t)
	assert.Equal(t, "ABCD", doc["companyName"], "latest draft wins after coalescing")
}

func TestHydrateLocalFirstThenRemoteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// remote document is fresher than the local snapshot
	remote := models.NewFormDraft()
	remote.CompanyName = "Remote Co"
	remote.City = "Denver"
	id, err := f.store.Create(ctx, DefaultCollection, remote.ToMap())
	require.NoError(t, err)

	local := models.NewFormDraft()
	local.CompanyName = "Local Co"
	require.NoError(t, f.cache.SaveDraft(ctx, "sess-1", local))
	require.NoError(t, f.cache.SaveDocumentID(ctx, "sess-1", id))

	f.machine.Hydrate(ctx)

	// local snapshot is visible synchronously
	assert.Equal(t, "Local Co", f.machine.State().Draft.CompanyName)
	assert.Equal(t, id, f.machine.State().DocumentID)

	// the remote copy replaces the draft wholesale once fetched
	assert.Eventually(t, func() bool {
		d := f.machine.State().Draft
		return d.CompanyName == "Remote Co" && d.City == "Denver"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHydrateCorruptSnapshotIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.redis.Set("intake:draft:sess-1", "{broken"))

	f.machine.Hydrate(context.Background())

	d := f.machine.State().Draft
	assert.Empty(t, d.CompanyName, "corrupt snapshot leaves the initial draft")
}

func TestHydrateMissingRemoteDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.SaveDocumentID(ctx, "sess-1", "gone"))

	f.machine.Hydrate(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.machine.State().Draft.CompanyName)
}

func TestSubmitRejectedWhenChecklistIncomplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"companyName": "PawScale"}))
	f.machine.Flush(ctx)
	before := f.machine.State().Draft

	err := f.machine.Submit(ctx)
	require.Error(t, err)

	state := f.machine.State()
	assert.False(t, state.Submitting)
	assert.Equal(t, before, state.Draft, "draft unchanged by a refused submit")

	_, doc := f.soleDocument(t)
	assert.NotContains(t, doc, "submittedAt", "no terminal write issued")
}

func TestSubmitFinalizesAndResets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hookDone := make(chan string, 1)
	f.machine.WithSubmitHook(func(documentID string, draft models.FormDraft) {
		hookDone <- documentID
	})

	require.NoError(t, f.machine.MergeUpdate(ctx, completeDraft().ToMap()))
	f.machine.Flush(ctx)
	id := f.machine.State().DocumentID
	require.NotEmpty(t, id)

	require.NoError(t, f.machine.Submit(ctx))

	// terminal merge landed
	doc, err := f.store.Get(ctx, DefaultCollection, id)
	require.NoError(t, err)
	assert.NotEmpty(t, doc["submittedAt"])
	assert.Equal(t, "PawScale", doc["companyName"])

	// session reset
	state := f.machine.State()
	assert.Equal(t, ScreenWelcome, state.Screen)
	assert.Empty(t, state.DocumentID)
	assert.Empty(t, state.Draft.CompanyName)
	assert.False(t, state.Submitting)

	// both snapshot slots cleared
	_, ok := f.cache.LoadDraft(ctx, "sess-1")
	assert.False(t, ok)
	_, ok = f.cache.LoadDocumentID(ctx, "sess-1")
	assert.False(t, ok)

	select {
	case hookID := <-hookDone:
		assert.Equal(t, id, hookID)
	case <-time.After(2 * time.Second):
		t.Fatal("submit hook not invoked")
	}
}

func TestSubmitWithoutPriorAutosaveCreatesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// bypass MergeUpdate so no autosave ever ran
	f.machine.mu.Lock()
	f.machine.draft = completeDraft()
	f.machine.mu.Unlock()

	require.NoError(t, f.machine.Submit(ctx))

	docs, err := f.store.Get(ctx, DefaultCollection, firstDocumentID(t, f.store))
	require.NoError(t, err)
	assert.NotEmpty(t, docs["submittedAt"])
}

func firstDocumentID(t *testing.T, s *store.MemoryStore) string {
	t.Helper()
	var id string
	unsubscribe, err := s.Subscribe(context.Background(), DefaultCollection, func(snap store.Snapshot) {
		for docID := range snap {
			id = docID
		}
	})
	require.NoError(t, err)
	unsubscribe()
	require.NotEmpty(t, id)
	return id
}

func TestApplyGenerationStaleGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rev := f.machine.FieldRevision("pmf")

	// founder edits the field after the generation request went out
	require.NoError(t, f.machine.MergeUpdate(ctx, map[string]interface{}{"pmf": "my own words"}))

	applied, err := f.machine.ApplyGeneration(ctx, "pmf", rev, "generated prose")
	require.NoError(t, err)
	assert.False(t, applied, "stale response must be dropped")
	assert.Equal(t, "my own words", f.machine.State().Draft.PMF)

	// a fresh revision applies cleanly
	rev = f.machine.FieldRevision("pmf")
	applied, err = f.machine.ApplyGeneration(ctx, "pmf", rev, "generated prose")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "generated prose", f.machine.State().Draft.PMF)
}

func TestStateProgress(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 0, f.machine.State().Progress)
	require.NoError(t, f.machine.JumpTo(ScreenFinancials))
	assert.Equal(t, 89, f.machine.State().Progress)
}
