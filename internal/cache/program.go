package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/communityhub/goldledger/internal/config"
	"github.com/communityhub/goldledger/internal/domain"
)

const (
	programDetailsKey    = "program:%d:details"
	programGenerationKey = "program:%d:generation"
)

var errStaleGeneration = errors.New("program cache generation moved")

// ProgramCache is a read-through cache of program details. A nil client
// turns every call into a no-op and every Get into a miss.
type ProgramCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgramCache(client *redis.Client, ttl time.Duration) *ProgramCache {
	return &ProgramCache{
		client: client,
		ttl:    ttl,
	}
}

// NewRedisClient returns nil when no address is configured. An unreachable
// server is logged and also yields nil so the API keeps serving from Postgres.
func NewRedisClient(ctx context.Context, conf *config.RedisConfig) *redis.Client {
	if conf == nil || conf.Addr == "" {
		zap.L().Warn("redis address not configured, program cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Error("failed to connect to redis, program cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}

// Get returns the cached details and the generation they were read at. On a
// miss the generation is still reported so the caller can pass it to Set once
// it has loaded from Postgres. A generation of -1 means redis failed and the
// result must not be cached.
func (c *ProgramCache) Get(ctx context.Context, programID uint) (domain.ProgramDetails, int64, bool) {
	if c.client == nil {
		return domain.ProgramDetails{}, -1, false
	}

	vals, err := c.client.MGet(ctx, key(programID), generationKey(programID)).Result()
	if err != nil {
		zap.L().Error("redis MGET failed", zap.Error(err), zap.Uint("programID", programID))
		return domain.ProgramDetails{}, -1, false
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		zap.L().Error("malformed program cache generation", zap.Error(err), zap.Uint("programID", programID))
		return domain.ProgramDetails{}, -1, false
	}

	raw, ok := vals[0].(string)
	if !ok {
		return domain.ProgramDetails{}, generation, false
	}

	var details domain.ProgramDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		zap.L().Warn("discarding malformed cached program", zap.Error(err), zap.Uint("programID", programID))
		return domain.ProgramDetails{}, generation, false
	}

	return details, generation, true
}

// Set stores details only if no Invalidate ran since the generation was read.
// The generation key is watched, so an Invalidate racing the write aborts it.
func (c *ProgramCache) Set(ctx context.Context, details domain.ProgramDetails, generation int64) {
	if c.client == nil || generation < 0 {
		return
	}

	raw, err := json.Marshal(details)
	if err != nil {
		zap.L().Error("failed to encode program details", zap.Error(err))
		return
	}

	genKey := generationKey(details.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(details.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		zap.L().Debug("skipping stale program cache write", zap.Uint("programID", details.ID))
	default:
		zap.L().Error("redis SET failed", zap.Error(err), zap.Uint("programID", details.ID))
	}
}

// Invalidate drops the cached details and bumps the generation so loads that
// started before it can no longer be written back.
func (c *ProgramCache) Invalidate(ctx context.Context, programID uint) {
	if c.client == nil {
		return
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(programID))
		pipe.Incr(ctx, generationKey(programID))
		return nil
	})
	if err != nil {
		zap.L().Error("redis invalidate failed", zap.Error(err), zap.Uint("programID", programID))
	}
}

func parseGeneration(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

func generationKey(programID uint) string {
	return fmt.Sprintf(programGenerationKey, programID)
}

func key(programID uint) string {
	return fmt.Sprintf(programDetailsKey, programID)
}
