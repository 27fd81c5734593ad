package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"herald/internal/constants"
	"herald/internal/logger"
	"herald/pkg/metrics"
)

// cachedNotFound marks a negative cache entry. First contacts are cached
// too so they don't hit postgres on every message.
const cachedNotFound = "null"

// CachedReader layers a redis cache over another Reader. Cache failures
// fall through to the inner reader, never to the caller.
type CachedReader struct {
	inner  Reader
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewCachedReader(inner Reader, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedReader {
	return &CachedReader{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (r *CachedReader) GetSenderHistory(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
	key := cacheKey(tenantID, userID, senderID)

	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.HistoryLookupsTotal.WithLabelValues("cache", "hit").Inc()
		if val == cachedNotFound {
			return nil, nil
		}
		var h SenderHistory
		if jsonErr := json.Unmarshal([]byte(val), &h); jsonErr == nil {
			return &h, nil
		}
		// Corrupt entry, fall through and overwrite.
		r.log.WarnwCtx(ctx, "dropping corrupt history cache entry", "key", key)
	case err == redis.Nil:
		metrics.HistoryLookupsTotal.WithLabelValues("cache", "miss").Inc()
	default:
		metrics.HistoryLookupsTotal.WithLabelValues("cache", "error").Inc()
		r.log.WarnwCtx(ctx, "history cache read failed", "key", key, "error", err)
	}

	h, err := r.inner.GetSenderHistory(ctx, tenantID, userID, senderID)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, h)
	return h, nil
}

func (r *CachedReader) store(ctx context.Context, key string, h *SenderHistory) {
	payload := cachedNotFound
	if h != nil {
		data, err := json.Marshal(h)
		if err != nil {
			return
		}
		payload = string(data)
	}

	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.log.WarnwCtx(ctx, "history cache write failed", "key", key, "error", err)
	}
}

func cacheKey(tenantID, userID, senderID string) string {
	return fmt.Sprintf("%s%s:%s:%s", constants.CacheKeyPrefixHistory, tenantID, userID, senderID)
}
