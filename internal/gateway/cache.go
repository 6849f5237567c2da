package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/raine/balla/internal/storage"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL is how long a cached appraisal is served. Market prices
// drift, so entries are not kept forever.
const DefaultCacheTTL = 24 * time.Hour

// ReplyCache is the storage the cache needs.
type ReplyCache interface {
	GetAppraisalCache(key string) (*storage.AppraisalCacheEntry, error)
	SetAppraisalCache(key, reply string) error
}

// CachedAppraiser wraps an Appraiser with SQLite caching.
type CachedAppraiser struct {
	inner Appraiser
	cache ReplyCache
	ttl   time.Duration
	now   func() time.Time
}

var _ Appraiser = (*CachedAppraiser)(nil)

// NewCachedAppraiser creates a cached appraiser. A ttl of zero or less
// selects DefaultCacheTTL.
func NewCachedAppraiser(inner Appraiser, cache ReplyCache, ttl time.Duration) *CachedAppraiser {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedAppraiser{inner: inner, cache: cache, ttl: ttl, now: time.Now}
}

// cacheKey hashes everything that influences the reply. Each field is
// length-prefixed so that adjacent fields cannot run into each other.
func cacheKey(in Input) string {
	h := sha256.New()
	write := func(b []byte) {
		binary.Write(h, binary.LittleEndian, int64(len(b)))
		h.Write(b)
	}
	write(in.Image)
	write([]byte(in.Governorate))
	write([]byte(in.ItemCondition))
	year := int64(0)
	if in.PurchaseYear != nil {
		year = int64(*in.PurchaseYear)
	}
	binary.Write(h, binary.LittleEndian, year)
	return hex.EncodeToString(h.Sum(nil))
}

// Appraise implements Appraiser with caching. Only successful and
// not-sellable replies are cached.
func (c *CachedAppraiser) Appraise(ctx context.Context, in Input) (*Reply, error) {
	key := cacheKey(in)

	if c.cache != nil {
		cached, err := c.cache.GetAppraisalCache(key)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check appraisal cache")
		} else if cached != nil && c.now().Sub(cached.CreatedAt) < c.ttl {
			var reply Reply
			if err := json.Unmarshal([]byte(cached.Reply), &reply); err == nil {
				log.Debug().Str("key", key[:16]).Msg("appraisal cache hit")
				return &reply, nil
			}
			log.Warn().Err(err).Str("key", key[:16]).Msg("discarding unreadable cache entry")
		}
	}

	reply, err := c.inner.Appraise(ctx, in)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && (reply.Error == "" || reply.NotSellable()) {
		data, err := json.Marshal(reply)
		if err != nil {
			log.Warn().Err(err).Msg("failed to encode appraisal for cache")
		} else if err := c.cache.SetAppraisalCache(key, string(data)); err != nil {
			log.Warn().Err(err).Msg("failed to cache appraisal")
		} else {
			log.Debug().Str("key", key[:16]).Msg("cached appraisal")
		}
	}

	return reply, nil
}
