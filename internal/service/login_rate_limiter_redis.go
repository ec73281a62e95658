package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLoginFailScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisLoginRateLimiter struct {
	client redisLoginClient
	window time.Duration
	max    int
	prefix string
}

type redisLoginClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisLoginRateLimiter crea un limitador de fallos de login de ventana
// fija respaldado en Redis, compartido entre réplicas del servicio.
func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:rl:",
	}
}

func (l *redisLoginRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Get(ctx, l.prefix+normalizedKey).Int()
	if err != nil {
		// redis.Nil significa ventana limpia; cualquier otro error no debe
		// dejar a nadie sin poder loguearse.
		return true
	}
	return count < l.max
}

func (l *redisLoginRateLimiter) Fail(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	l.client.Eval(ctx, redisLoginFailScript, []string{l.prefix + normalizedKey}, seconds)
}

func (l *redisLoginRateLimiter) Reset(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	l.client.Del(ctx, l.prefix+normalizedKey)
}
