package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// The throttle sits in front of login, so a slow Redis must fail fast and let the request through.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
)

// Redis holds the client backing the login throttle.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and pings it once. An unreachable server is logged, not fatal.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	r := &Redis{Client: redis.NewClient(opts)}

	if err := r.Ping(ctx); err != nil {
		logger.Warn("unable to reach redis, login throttle will fail open",
			zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	}
	return r, nil
}

// redisOptions accepts either host:port or a redis:// URL in REDIS_ADDR. Explicit password and
// db settings override what the URL carries.
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Addr}
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		opts = parsed
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = redisIOTimeout
	opts.WriteTimeout = redisIOTimeout
	return opts, nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}
