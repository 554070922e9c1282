// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"founder-intake/internal/common/logger"
)

const defaultPollInterval = 2 * time.Second

// PostgresStore keeps documents in a single table keyed by
// (collection, id) with a JSONB payload. Merge leans on the JSONB
// concatenation operator for shallow top-level merges. Subscriptions
// are polled: each tick reads the whole collection and delivers it as
// an authoritative snapshot.
type PostgresStore struct {
	db           *sql.DB
	log          logger.Logger
	pollInterval time.Duration
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log, pollInterval: defaultPollInterval}
}

// WithPollInterval overrides the subscription poll cadence.
func (s *PostgresStore) WithPollInterval(d time.Duration) *PostgresStore {
	s.pollInterval = d
	return s
}

// EnsureSchema creates the documents table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("ensuring documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, value Document) (string, error) {
	id := uuid.NewString()
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw)
	if err != nil {
		return "", fmt.Errorf("inserting document: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Merge(ctx context.Context, collection, id string, partial Document) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encoding partial document: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("merging document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("merging document: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, collection string) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing collection: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document %s: %w", id, err)
		}
		snap[id] = doc
	}
	return snap, rows.Err()
}

// Subscribe polls the collection and pushes full snapshots to onSnapshot.
// The first delivery happens immediately. Poll failures are logged and
// the previous snapshot stands until the next successful read.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	deliver := func() {
		snap, err := s.list(subCtx, collection)
		if err != nil {
			if subCtx.Err() == nil {
				s.log.Warn("collection poll failed", map[string]interface{}{
					"collection": collection,
					"error":      err.Error(),
				})
			}
			return
		}
		onSnapshot(snap)
	}

	go func() {
		deliver()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				deliver()
			}
		}
	}()

	return cancel, nil
}
