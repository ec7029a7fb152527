package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// DepsChecker probes the storefront's backing services.
type DepsChecker struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// PingDB probes Postgres with the given timeout.
func (c DepsChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.Pool == nil {
		return errors.New("database not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Pool.Ping(ctx)
}

// PingRedis probes Redis with the given timeout.
func (c DepsChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Redis.Ping(ctx).Err()
}
