// internal/store/memory_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "intakeForms", Document{"companyName": "PawScale"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.Merge(ctx, "intakeForms", id, Document{"city": "Austin"}))

	doc, err := s.Get(ctx, "intakeForms", id)
	require.NoError(t, err)
	assert.Equal(t, "PawScale", doc["companyName"])
	assert.Equal(t, "Austin", doc["city"])

	require.NoError(t, s.Delete(ctx, "intakeForms", id))
	_, err = s.Get(ctx, "intakeForms", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMergeMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.Merge(context.Background(), "intakeForms", "ghost", Document{"city": "Austin"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "intakeForms", Document{"companyName": "PawScale"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "intakeForms", id)
	require.NoError(t, err)
	doc["companyName"] = "mutated"

	again, err := s.Get(ctx, "intakeForms", id)
	require.NoError(t, err)
	assert.Equal(t, "PawScale", again["companyName"])
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var deliveries []Snapshot
	unsubscribe, err := s.Subscribe(ctx, "intakeForms", func(snap Snapshot) {
		deliveries = append(deliveries, snap)
	})
	require.NoError(t, err)

	// initial snapshot is empty
	require.Len(t, deliveries, 1)
	assert.Empty(t, deliveries[0])

	id, err := s.Create(ctx, "intakeForms", Document{"companyName": "PawScale"})
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Contains(t, deliveries[1], id)

	unsubscribe()
	require.NoError(t, s.Delete(ctx, "intakeForms", id))
	assert.Len(t, deliveries, 2, "no deliveries after unsubscribe")
}
