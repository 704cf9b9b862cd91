package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

const defaultKey = "pata:ratelimit:global"

// Redis is a fixed-window counter shared by every replica. When Redis is
// unreachable it degrades to a per-process Local limiter.
type Redis struct {
	client   redis.UniversalClient
	key      string
	max      int
	window   time.Duration
	timeout  time.Duration
	fallback *Local
}

func NewRedis(client redis.UniversalClient, limit int, window time.Duration) *Redis {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Redis{
		client:   client,
		key:      defaultKey,
		max:      limit,
		window:   window,
		timeout:  2 * time.Second,
		fallback: NewLocal(limit, window),
	}
}

func (l *Redis) Allow(ctx context.Context) Decision {
	if l.client == nil {
		return l.fallback.Allow(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := windowScript.Run(ctx, l.client, []string{l.key}, l.window.Milliseconds()).Result()
	if err != nil {
		log.Warn().Err(err).Msg("ratelimit: redis unavailable, using local limiter")
		return l.fallback.Allow(ctx)
	}

	vals, ok := res.([]any)
	if !ok || len(vals) < 2 {
		return l.fallback.Allow(ctx)
	}
	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}

	return Decision{
		Allowed:   int(count) <= l.max,
		Limit:     l.max,
		Remaining: max(l.max-int(count), 0),
		ResetAt:   time.Now().Add(time.Duration(ttlMs) * time.Millisecond),
	}
}
