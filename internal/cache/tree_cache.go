package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comment-history-api/internal/config"
	"comment-history-api/internal/dto"
)

// Recorder receives cache hit/miss/error observations
type Recorder interface {
	RecordCacheOperation(operation, result string, duration time.Duration)
}

// Generation versions the cached views of one root. Invalidate moves it forward.
type Generation int64

// NoGeneration is returned when the current generation is unknown; Set ignores it.
const NoGeneration Generation = -1

// DefaultTreeTTL applies when no positive TTL is configured
const DefaultTreeTTL = 5 * time.Minute

// TreeCache holds built thread trees keyed by root. All methods are best-effort.
//
// Get returns the root's generation alongside the lookup. A caller that builds the
// tree on a miss passes that generation back to Set, which drops the write if the
// root was invalidated in between.
type TreeCache interface {
	Get(ctx context.Context, rootID uuid.UUID, key string) (*dto.TreeResponse, Generation, bool)
	Set(ctx context.Context, rootID uuid.UUID, key string, gen Generation, tree *dto.TreeResponse)
	Invalidate(ctx context.Context, rootID uuid.UUID)
}

// NewRedisClient connects to redis, preferring a redis:// URL over host:port.
// It returns nil, nil when no endpoint is configured.
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("Redis connection established", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}

type redisTreeCache struct {
	client   *redis.Client
	ttl      time.Duration
	logger   *zap.Logger
	recorder Recorder
}

// NewTreeCache returns a redis-backed cache, or a no-op cache when client is nil
func NewTreeCache(client *redis.Client, ttl time.Duration, logger *zap.Logger, recorder Recorder) TreeCache {
	if client == nil {
		return noopTreeCache{}
	}
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &redisTreeCache{client: client, ttl: ttl, logger: logger, recorder: recorder}
}

// generationKey holds the root's counter; a missing key is generation 0
func generationKey(rootID uuid.UUID) string {
	return "comment-tree:" + rootID.String() + ":gen"
}

func viewKey(rootID uuid.UUID, gen Generation, key string) string {
	return fmt.Sprintf("comment-tree:%s:%d:%s", rootID, gen, key)
}

// setIfCurrent writes the view only while the generation is unchanged.
// The counter outlives every view written under it.
var setIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
if current ~= "0" then
	redis.call("PEXPIRE", KEYS[1], ARGV[4])
end
return 1
`)

func (c *redisTreeCache) generationTTL() time.Duration {
	return 2 * c.ttl
}

func (c *redisTreeCache) Get(ctx context.Context, rootID uuid.UUID, key string) (*dto.TreeResponse, Generation, bool) {
	start := time.Now()
	gen, err := c.client.Get(ctx, generationKey(rootID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		c.record("get", "error", start)
		c.logger.Warn("Tree cache read failed", zap.String("root_id", rootID.String()), zap.Error(err))
		return nil, NoGeneration, false
	}

	raw, err := c.client.Get(ctx, viewKey(rootID, Generation(gen), key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record("get", "miss", start)
		return nil, Generation(gen), false
	}
	if err != nil {
		c.record("get", "error", start)
		c.logger.Warn("Tree cache read failed", zap.String("root_id", rootID.String()), zap.Error(err))
		return nil, NoGeneration, false
	}

	var tree dto.TreeResponse
	if err := json.Unmarshal(raw, &tree); err != nil {
		c.record("get", "error", start)
		c.logger.Warn("Tree cache entry is corrupt", zap.String("root_id", rootID.String()), zap.Error(err))
		return nil, Generation(gen), false
	}
	c.record("get", "hit", start)
	return &tree, Generation(gen), true
}

func (c *redisTreeCache) Set(ctx context.Context, rootID uuid.UUID, key string, gen Generation, tree *dto.TreeResponse) {
	if gen < 0 {
		return
	}
	start := time.Now()
	raw, err := json.Marshal(tree)
	if err != nil {
		return
	}

	written, err := setIfCurrent.Run(ctx, c.client,
		[]string{generationKey(rootID), viewKey(rootID, gen, key)},
		strconv.FormatInt(int64(gen), 10), raw, c.ttl.Milliseconds(), c.generationTTL().Milliseconds(),
	).Int()
	if err != nil {
		c.record("set", "error", start)
		c.logger.Warn("Tree cache write failed", zap.String("root_id", rootID.String()), zap.Error(err))
		return
	}
	if written == 0 {
		c.record("set", "stale", start)
		c.logger.Debug("Tree cache write skipped, thread changed meanwhile", zap.String("root_id", rootID.String()))
		return
	}
	c.record("set", "ok", start)
}

// Invalidate advances the generation, hiding every view cached for the root.
// Old views are left to expire.
func (c *redisTreeCache) Invalidate(ctx context.Context, rootID uuid.UUID) {
	start := time.Now()
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, generationKey(rootID))
	pipe.PExpire(ctx, generationKey(rootID), c.generationTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		c.record("invalidate", "error", start)
		c.logger.Warn("Tree cache invalidation failed", zap.String("root_id", rootID.String()), zap.Error(err))
		return
	}
	c.record("invalidate", "ok", start)
}

func (c *redisTreeCache) record(operation, result string, start time.Time) {
	if c.recorder != nil {
		c.recorder.RecordCacheOperation(operation, result, time.Since(start))
	}
}

type noopTreeCache struct{}

func (noopTreeCache) Get(context.Context, uuid.UUID, string) (*dto.TreeResponse, Generation, bool) {
	return nil, NoGeneration, false
}
func (noopTreeCache) Set(context.Context, uuid.UUID, string, Generation, *dto.TreeResponse) {}
func (noopTreeCache) Invalidate(context.Context, uuid.UUID)                                 {}
