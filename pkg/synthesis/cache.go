package synthesis

import (
	"hash/fnv"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultCacheShards = 16

// shardedCache spreads keys over independent go-cache instances so that
// expiry sweeps on one shard never hold up lookups on the others.
type shardedCache struct {
	shards []*cache.Cache
}

func newShardedCache(shards int, ttl time.Duration) *shardedCache {
	if ttl <= 0 {
		return nil
	}
	if shards <= 0 {
		shards = defaultCacheShards
	}
	c := &shardedCache{shards: make([]*cache.Cache, shards)}
	for i := range c.shards {
		c.shards[i] = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *shardedCache) shard(key string) *cache.Cache {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

func (c *shardedCache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.shard(key).Get(key)
}

func (c *shardedCache) Set(key string, v interface{}) {
	if c == nil {
		return
	}
	c.shard(key).Set(key, v, cache.DefaultExpiration)
}

func (c *shardedCache) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, s := range c.shards {
		n += s.ItemCount()
	}
	return n
}

func (c *shardedCache) Flush() {
	if c == nil {
		return
	}
	for _, s := range c.shards {
		s.Flush()
	}
}
