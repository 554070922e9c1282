// internal/dashboard/readmodel_test.go
package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
	"founder-intake/internal/store"
)

func seedSubmission(t *testing.T, st *store.MemoryStore, company, submittedAt string) string {
	t.Helper()
	d := models.NewFormDraft()
	d.CompanyName = company
	d.SubmittedAt = submittedAt
	id, err := st.Create(context.Background(), "intakeForms", d.ToMap())
	require.NoError(t, err)
	return id
}

func TestReadModelOrdering(t *testing.T) {
	st := store.NewMemoryStore()
	seedSubmission(t, st, "Oldest", "2026-01-01T10:00:00Z")
	seedSubmission(t, st, "Newest", "2026-08-01T10:00:00Z")
	seedSubmission(t, st, "Middle", "2026-04-01T10:00:00Z")
	seedSubmission(t, st, "Unsubmitted", "")

	rm := NewReadModel(st, logger.NewNop())
	require.NoError(t, rm.Start(context.Background()))
	defer rm.Stop()

	entries := rm.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "Newest", entries[0].Draft.CompanyName)
	assert.Equal(t, "Middle", entries[1].Draft.CompanyName)
	assert.Equal(t, "Oldest", entries[2].Draft.CompanyName)
	assert.Equal(t, "Unsubmitted", entries[3].Draft.CompanyName, "missing timestamp sorts last")
}

func TestReadModelTracksMutations(t *testing.T) {
	st := store.NewMemoryStore()
	rm := NewReadModel(st, logger.NewNop())
	require.NoError(t, rm.Start(context.Background()))
	defer rm.Stop()

	assert.Empty(t, rm.Entries())

	id := seedSubmission(t, st, "PawScale", "2026-08-01T10:00:00Z")
	entries := rm.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)

	got, ok := rm.Get(id)
	require.True(t, ok)
	assert.Equal(t, "PawScale", got.Draft.CompanyName)

	_, ok = rm.Get("ghost")
	assert.False(t, ok)
}

func TestReadModelDelete(t *testing.T) {
	st := store.NewMemoryStore()
	id := seedSubmission(t, st, "PawScale", "2026-08-01T10:00:00Z")

	rm := NewReadModel(st, logger.NewNop())
	require.NoError(t, rm.Start(context.Background()))
	defer rm.Stop()

	require.NoError(t, rm.Delete(context.Background(), id))

	// the memory store notifies synchronously, so the resync already landed
	assert.Empty(t, rm.Entries())
}

func TestReadModelSkipsUndecodableDocuments(t *testing.T) {
	st := store.NewMemoryStore()
	_, err := st.Create(context.Background(), "intakeForms", store.Document{"team": "not-an-array"})
	require.NoError(t, err)
	seedSubmission(t, st, "Good", "2026-08-01T10:00:00Z")

	rm := NewReadModel(st, logger.NewNop())
	require.NoError(t, rm.Start(context.Background()))
	defer rm.Stop()

	entries := rm.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Good", entries[0].Draft.CompanyName)
}
