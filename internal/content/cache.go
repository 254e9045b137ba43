package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// DocumentCache stores decoded documents keyed by source name.
type DocumentCache interface {
	Get(ctx context.Context, source string) (*Document, error)
	Set(ctx context.Context, source string, doc Document) error
}

// Cache provides Redis-backed document caching so restarts do not refetch remote content.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ DocumentCache = (*Cache)(nil)

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "content:doc:" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, source string) (*Document, error) {
	data, err := c.client.Get(ctx, c.key(source)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Cache) Set(ctx context.Context, source string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(source), data, c.ttl).Err()
}
