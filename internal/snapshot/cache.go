// Package snapshot holds the per-session local draft snapshot: two slots
// in Redis, one for the serialized draft and one for the store document
// id, both cleared together on final submission.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
)

const (
	draftKeyPrefix = "intake:draft:"
	docKeyPrefix   = "intake:doc:"
)

// Cache is the Redis-backed snapshot store.
type Cache struct {
	client *redis.Client
	log    logger.Logger
}

func NewCache(client *redis.Client, log logger.Logger) *Cache {
	return &Cache{client: client, log: log}
}

func (c *Cache) SaveDraft(ctx context.Context, sessionID string, draft models.FormDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encoding draft snapshot: %w", err)
	}
	if err := c.client.Set(ctx, draftKeyPrefix+sessionID, raw, 0).Err(); err != nil {
		return fmt.Errorf("writing draft snapshot: %w", err)
	}
	return nil
}

// LoadDraft returns the saved draft and true, or zero and false when no
// usable snapshot exists. A corrupt snapshot is logged and treated as
// absent; it never blocks hydration.
func (c *Cache) LoadDraft(ctx context.Context, sessionID string) (models.FormDraft, bool) {
	raw, err := c.client.Get(ctx, draftKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return models.FormDraft{}, false
	}
	if err != nil {
		c.log.Warn("draft snapshot read failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return models.FormDraft{}, false
	}

	var draft models.FormDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		c.log.Warn("draft snapshot unparsable, ignoring", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return models.FormDraft{}, false
	}
	return draft, true
}

func (c *Cache) SaveDocumentID(ctx context.Context, sessionID, documentID string) error {
	if err := c.client.Set(ctx, docKeyPrefix+sessionID, documentID, 0).Err(); err != nil {
		return fmt.Errorf("writing document id snapshot: %w", err)
	}
	return nil
}

func (c *Cache) LoadDocumentID(ctx context.Context, sessionID string) (string, bool) {
	id, err := c.client.Get(ctx, docKeyPrefix+sessionID).Result()
	if err == redis.Nil || id == "" {
		return "", false
	}
	if err != nil {
		c.log.Warn("document id snapshot read failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return "", false
	}
	return id, true
}

// Clear removes both slots. Called on successful submit.
func (c *Cache) Clear(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, draftKeyPrefix+sessionID, docKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clearing snapshot slots: %w", err)
	}
	return nil
}
