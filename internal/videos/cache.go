package videos

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rheddev/rhed-v2/internal/metrics"
	"github.com/rheddev/rhed-v2/internal/models"
)

type cacheEntry struct {
	videos  []models.Video
	expires time.Time
}

// CachingFetcher wraps a Source so that concurrent requests for the same
// channel share a single upstream fetch, and successful results stay fresh for ttl.
type CachingFetcher struct {
	base Source
	ttl  time.Duration
	now  func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingFetcher returns a Source that coalesces and caches lookups. A zero
// ttl only coalesces in-flight requests.
func NewCachingFetcher(base Source, ttl time.Duration) *CachingFetcher {
	if ttl < 0 {
		ttl = 0
	}
	return &CachingFetcher{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// FetchRecentVideos returns fresh cached videos when available and otherwise
// joins or starts the in-flight fetch for the key.
func (c *CachingFetcher) FetchRecentVideos(ctx context.Context, channelID string, count int) ([]models.Video, error) {
	if c == nil || c.base == nil {
		return nil, ErrFetcherUnavailable
	}

	key := cacheKey(channelID, count)

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expires) {
		metrics.VideoCacheLookups.WithLabelValues("hit").Inc()
		return slices.Clone(entry.videos), nil
	}

	// The shared fetch outlives any single waiter; a canceled waiter stops waiting.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		list, err := c.base.FetchRecentVideos(shared, channelID, count)
		if err != nil {
			return nil, err
		}
		if list != nil && c.ttl > 0 {
			c.mu.Lock()
			c.items[key] = cacheEntry{videos: slices.Clone(list), expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		}
		return list, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		metrics.VideoCacheLookups.WithLabelValues("abandoned").Inc()
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		metrics.VideoCacheLookups.WithLabelValues("shared").Inc()
	} else {
		metrics.VideoCacheLookups.WithLabelValues("miss").Inc()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	list, _ := res.Val.([]models.Video)
	// Waiters share one result slice.
	return slices.Clone(list), nil
}

// Invalidate drops every cached result for the channel.
func (c *CachingFetcher) Invalidate(channelID string) {
	prefix := fmt.Sprintf("videos:%s:", channelID)

	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}

func cacheKey(channelID string, count int) string {
	return fmt.Sprintf("videos:%s:%d", channelID, count)
}
