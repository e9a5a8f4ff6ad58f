package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RouteLimit defines a token bucket capacity and refill window for one route.
type RouteLimit struct {
	Name     string        // logical route name, becomes part of the redis key
	Capacity int           // max tokens in the bucket
	Window   time.Duration // window over which capacity refills linearly
}

// PrincipalFunc extracts the rate-limit principal for a request.
type PrincipalFunc func(*http.Request) string

// PrincipalIP keys the bucket on the client IP (best-effort behind proxies).
func PrincipalIP() PrincipalFunc {
	return func(r *http.Request) string {
		if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
			if first, _, found := strings.Cut(xf, ","); found || first != "" {
				return "ip:" + strings.TrimSpace(first)
			}
		}
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return "ip:" + host
		}
		return "ip:unknown"
	}
}

// PrincipalUserOrIP keys the bucket on the authenticated user when there is
// one, so a user behind a shared NAT is not throttled by their neighbours.
// Must run after an auth adapter to see the identity.
func PrincipalUserOrIP() PrincipalFunc {
	ipFn := PrincipalIP()
	return func(r *http.Request) string {
		if uid, ok := UserIDFromContext(r.Context()); ok {
			return fmt.Sprintf("user:%d", uid)
		}
		return ipFn(r)
	}
}

// RateLimit throttles a route with a redis-backed token bucket. The bucket
// state lives in redis so every replica shares it; the take is a Lua script
// so refill and consume are atomic. Redis being down never blocks traffic.
// Disabled unless RATE_LIMIT_ENABLED=true.
func RateLimit(rdb *redis.Client, limit RouteLimit, principal PrincipalFunc) func(http.Handler) http.Handler {
	if principal == nil {
		principal = PrincipalIP()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isRateLimitEnabled() || rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rl:%s:%s", limit.Name, principal(r))
			verdict := takeToken(r.Context(), rdb, key, limit)

			if !verdict.allowed {
				if verdict.retryAfterSec > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(verdict.retryAfterSec, 10))
				}
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Capacity))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%.0f", verdict.remaining))
			next.ServeHTTP(w, r)
		})
	}
}

func isRateLimitEnabled() bool {
	return os.Getenv("RATE_LIMIT_ENABLED") == "true"
}

// tokenBucketScript refills linearly since the last take, then consumes one
// token if available. Returns {allowed, remaining tokens, retry-after ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local window = tonumber(ARGV[3]) -- in ms

local bucket = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])

if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local delta = now - ts
if delta < 0 then delta = 0 end

tokens = math.min(capacity, tokens + (delta * capacity) / window)
ts = now

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HMSET", key, "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", key, window)

local retryAfterMs = 0
if allowed == 0 then
  local need = 1 - tokens
  if need < 0 then need = 0 end
  retryAfterMs = math.ceil(need * window / capacity)
end

return {allowed, tokens, retryAfterMs}
`)

type limitVerdict struct {
	allowed       bool
	remaining     float64
	retryAfterSec int64
}

func takeToken(ctx context.Context, rdb *redis.Client, key string, limit RouteLimit) limitVerdict {
	// Fail-open verdict, used on every redis error so a cache outage does
	// not take the API down with it.
	open := limitVerdict{allowed: true, remaining: float64(limit.Capacity)}

	res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
		time.Now().UnixMilli(), limit.Capacity, limit.Window.Milliseconds()).Result()
	if err != nil {
		return open
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) != 3 {
		return open
	}

	allowed, ok := arr[0].(int64)
	if !ok {
		return open
	}
	remaining, _ := luaNumber(arr[1])
	retryMs, _ := luaNumber(arr[2])

	v := limitVerdict{allowed: allowed == 1, remaining: remaining}
	if retryMs > 0 {
		v.retryAfterSec = int64((retryMs + 999) / 1000) // ceil to whole seconds
	}
	return v
}

// luaNumber normalizes the types redis may hand back for a script number.
func luaNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
