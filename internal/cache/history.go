package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/anubad/internal/config"
	translationdomain "github.com/smallbiznis/anubad/internal/translation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyHistory           = "anubad:translations:history"
	keyHistoryGeneration = "anubad:translations:history:generation"
	defaultHistoryTTL    = 30 * time.Second
)

var errStaleSnapshot = errors.New("history snapshot is stale")

// HistoryCache holds the full newest-first history snapshot between writes.
//
// Every Invalidate bumps a generation. Readers take Generation before querying
// storage and pass it to Set, which drops the snapshot if a write landed in between.
type HistoryCache interface {
	Get(ctx context.Context) ([]translationdomain.Translation, bool)
	Generation(ctx context.Context) (uint64, bool)
	Set(ctx context.Context, generation uint64, items []translationdomain.Translation)
	Invalidate(ctx context.Context)
}

// NewHistoryCache selects the backend named in cfg.HistoryCache.
func NewHistoryCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (HistoryCache, error) {
	cacheCfg := cfg.HistoryCache
	ttl := time.Duration(cacheCfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	log = log.Named("cache.history")

	switch cacheCfg.Backend {
	case config.HistoryCacheMemory:
		log.Info("history cache enabled", zap.String("backend", cacheCfg.Backend), zap.Duration("ttl", ttl))
		return NewMemoryHistoryCache(ttl), nil
	case config.HistoryCacheRedis:
		addr := strings.TrimSpace(cacheCfg.RedisAddr)
		if addr == "" {
			return nil, errors.New("history cache redis addr is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(cacheCfg.RedisPassword),
			DB:       cacheCfg.RedisDB,
		})
		if lc != nil {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					return client.Close()
				},
			})
		}
		log.Info("history cache enabled", zap.String("backend", cacheCfg.Backend), zap.Duration("ttl", ttl))
		return NewRedisHistoryCache(client, ttl, log), nil
	default:
		return NoopHistoryCache{}, nil
	}
}

type NoopHistoryCache struct{}

func (NoopHistoryCache) Get(context.Context) ([]translationdomain.Translation, bool) {
	return nil, false
}

func (NoopHistoryCache) Generation(context.Context) (uint64, bool) {
	return 0, false
}

func (NoopHistoryCache) Set(context.Context, uint64, []translationdomain.Translation) {}

func (NoopHistoryCache) Invalidate(context.Context) {}

type memoryHistoryCache struct {
	mu         sync.Mutex
	generation uint64
	items      Cache[string, []translationdomain.Translation]
	ttl        time.Duration
}

func NewMemoryHistoryCache(ttl time.Duration) HistoryCache {
	return &memoryHistoryCache{
		items: NewTTLCache[string, []translationdomain.Translation](),
		ttl:   ttl,
	}
}

func (c *memoryHistoryCache) Get(context.Context) ([]translationdomain.Translation, bool) {
	items, ok := c.items.Get(keyHistory)
	if !ok {
		return nil, false
	}
	return cloneHistory(items), true
}

func (c *memoryHistoryCache) Generation(context.Context) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, true
}

func (c *memoryHistoryCache) Set(_ context.Context, generation uint64, items []translationdomain.Translation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.items.Set(keyHistory, cloneHistory(items), c.ttl)
}

func (c *memoryHistoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.items.Delete(keyHistory)
}

type redisHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisHistoryCache stores the snapshot as JSON next to a generation counter.
// Redis faults degrade to a miss.
func NewRedisHistoryCache(client *redis.Client, ttl time.Duration, log *zap.Logger) HistoryCache {
	return &redisHistoryCache{client: client, ttl: ttl, log: log}
}

func (c *redisHistoryCache) Get(ctx context.Context) ([]translationdomain.Translation, bool) {
	raw, err := c.client.Get(ctx, keyHistory).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("history cache read failed", zap.Error(err))
		}
		return nil, false
	}
	items, err := decodeHistory(raw)
	if err != nil {
		c.log.Warn("history cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return items, true
}

func (c *redisHistoryCache) Generation(ctx context.Context) (uint64, bool) {
	generation, err := readGeneration(ctx, c.client)
	if err != nil {
		c.log.Warn("history cache generation read failed", zap.Error(err))
		return 0, false
	}
	return generation, true
}

func (c *redisHistoryCache) Set(ctx context.Context, generation uint64, items []translationdomain.Translation) {
	raw, err := encodeHistory(items)
	if err != nil {
		c.log.Warn("history cache encode failed", zap.Error(err))
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyHistory, raw, c.ttl)
			return nil
		})
		return err
	}, keyHistoryGeneration)

	switch {
	case err == nil:
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("history snapshot dropped after concurrent write", zap.Uint64("generation", generation))
	default:
		c.log.Warn("history cache write failed", zap.Error(err))
	}
}

func (c *redisHistoryCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, keyHistoryGeneration)
		pipe.Del(ctx, keyHistory)
		return nil
	})
	if err != nil {
		c.log.Warn("history cache invalidate failed", zap.Error(fmt.Errorf("bump %s: %w", keyHistoryGeneration, err)))
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, r stringGetter) (uint64, error) {
	generation, err := r.Get(ctx, keyHistoryGeneration).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func encodeHistory(items []translationdomain.Translation) ([]byte, error) {
	if items == nil {
		items = []translationdomain.Translation{}
	}
	return json.Marshal(items)
}

func decodeHistory(raw []byte) ([]translationdomain.Translation, error) {
	var items []translationdomain.Translation
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []translationdomain.Translation{}
	}
	return items, nil
}

func cloneHistory(items []translationdomain.Translation) []translationdomain.Translation {
	out := make([]translationdomain.Translation, len(items))
	copy(out, items)
	return out
}
