package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-activity-export/internal/dto"
)

// PayloadCache keeps a copy of the latest rendered activities document in Redis.
type PayloadCache struct {
	client *redis.Client
	key    string
}

// NewPayloadCache constructs a cache writing to key and key+":meta".
func NewPayloadCache(client *redis.Client, key string) *PayloadCache {
	return &PayloadCache{client: client, key: key}
}

// Key returns the Redis key holding the document.
func (c *PayloadCache) Key() string {
	return c.key
}

// MetaKey returns the Redis key holding the document metadata.
func (c *PayloadCache) MetaKey() string {
	return c.key + ":meta"
}

// Store replaces the cached document and its metadata. Neither key expires.
func (c *PayloadCache) Store(ctx context.Context, doc []byte, meta dto.CachedDocumentMeta) error {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode document meta: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.Key(), doc, 0)
	pipe.Set(ctx, c.MetaKey(), encoded, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store activities document: %w", err)
	}

	return nil
}
