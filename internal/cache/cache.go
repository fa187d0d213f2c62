package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 5 * time.Minute

// Cache is a read-through cache for session lookups. Nil-safe: a nil
// *Cache skips caching entirely so the engine runs without redis.
type Cache struct {
	rdb *redis.Client
}

func New(addr string) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func (c *Cache) SetSession(key string, v interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.rdb.Set(context.Background(), "session:"+key, data, sessionTTL)
}

func (c *Cache) GetSession(key string, v interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(context.Background(), "session:"+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *Cache) DelSession(key string) {
	if c == nil {
		return
	}
	c.rdb.Del(context.Background(), "session:"+key)
}
