// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore used by tests and local
// development. Subscribers are notified synchronously on every mutation.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	subscribers map[string]map[int]func(Snapshot)
	nextSubID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		subscribers: make(map[string]map[int]func(Snapshot)),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, value Document) (string, error) {
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	id := uuid.NewString()
	s.collections[collection][id] = copyDocument(value)
	s.mu.Unlock()

	s.notify(collection)
	return id, nil
}

func (s *MemoryStore) Merge(ctx context.Context, collection, id string, partial Document) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range partial {
		doc[k] = v
	}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot)) (func(), error) {
	s.mu.Lock()
	if s.subscribers[collection] == nil {
		s.subscribers[collection] = make(map[int]func(Snapshot))
	}
	subID := s.nextSubID
	s.nextSubID++
	s.subscribers[collection][subID] = onSnapshot
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	onSnapshot(snap)

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subscribers[collection], subID)
		s.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return unsubscribe, nil
}

func (s *MemoryStore) notify(collection string) {
	s.mu.RLock()
	snap := s.snapshotLocked(collection)
	subs := make([]func(Snapshot), 0, len(s.subscribers[collection]))
	for _, fn := range s.subscribers[collection] {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *MemoryStore) snapshotLocked(collection string) Snapshot {
	snap := Snapshot{}
	for id, doc := range s.collections[collection] {
		snap[id] = copyDocument(doc)
	}
	return snap
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
