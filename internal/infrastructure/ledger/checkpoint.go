package ledger

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const checkpointKey = "textdao:checkpoint"

// RedisCheckpoint stores the feed's progress in redis, surviving restarts
// without rescanning the chain.
type RedisCheckpoint struct {
	rdb *redis.Client
}

func NewRedisCheckpoint(rdb *redis.Client) *RedisCheckpoint {
	return &RedisCheckpoint{rdb: rdb}
}

func (c *RedisCheckpoint) Load(ctx context.Context) (uint64, bool, error) {
	val, err := c.rdb.Get(ctx, checkpointKey).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "load checkpoint")
	}
	block, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, errors.Wrap(err, "parse checkpoint")
	}
	return block, true, nil
}

func (c *RedisCheckpoint) Store(ctx context.Context, block uint64) error {
	return c.rdb.Set(ctx, checkpointKey, strconv.FormatUint(block, 10), 0).Err()
}
