package http

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// tokenBucketScript refills KEYS[1] by whole intervals, then takes one token.
// It returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Throttle limits requests per client IP and route with a Redis token bucket. Redis failures
// let the request through.
func Throttle(cfg config.RateLimitConfig, rdb redis.Scripter, logger *zap.Logger) fiber.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		key := throttleKey(cfg.Prefix, c.IP(), c.Method(), c.Route().Path)
		args := []interface{}{
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			int64(cfg.TTL / time.Second),
		}

		vals, err := tokenBucketScript.Run(c.UserContext(), rdb, []string{key}, args...).Int64Slice()
		if err != nil || len(vals) != 3 {
			logger.Warn("throttle unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if allowed {
			return c.Next()
		}

		retryAfter := int(math.Ceil(float64(retryMs) / 1000.0))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		logger.Debug("request throttled", zap.String("key", key), zap.Int("retry_after", retryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fiber.Map{
				"title":   "Too many requests",
				"message": "rate limit exceeded",
			},
			"status": fiber.StatusTooManyRequests,
		})
	}
}

func throttleKey(prefix, ip, method, path string) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, "ip", ip, "route", method + " " + path}, ":")
}
