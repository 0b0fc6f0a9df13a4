// Package cache 是目录类只读数据的 redis 读穿缓存；redis 不可用时退化为直接回源
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{Namespace: "fitness", Name: "cache_lookups_total", Help: "Catalog cache lookups by result"},
	[]string{"result"}, // hit / miss / bypass
)

func init() { prometheus.MustRegister(lookups) }

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}))
}

func NewWithClient(rdb *redis.Client) *Cache { return &Cache{RDB: rdb} }

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// GetOrLoad 命中直接返回；未命中时同 key 的并发回源合并为一次并回写。
// redis 报错（非 Nil）视为不可用：回源但不回写。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	b, err := c.RDB.Get(ctx, key).Bytes()
	if err == nil {
		lookups.WithLabelValues("hit").Inc()
		return b, nil
	}
	writeBack := errors.Is(err, redis.Nil)
	if writeBack {
		lookups.WithLabelValues("miss").Inc()
	} else {
		lookups.WithLabelValues("bypass").Inc()
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if writeBack {
			_ = c.RDB.Set(ctx, key, b, ttl).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 目录写操作后调用
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}
