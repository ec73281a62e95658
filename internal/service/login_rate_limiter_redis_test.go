package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockLoginRedis struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	evalErr    error

	getVal  string
	getErr  error
	getKey  string
	delKeys []string
}

func (m *mockLoginRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.evalErr != nil {
		cmd.SetErr(m.evalErr)
		return cmd
	}
	cmd.SetVal(int64(1))
	return cmd
}

func (m *mockLoginRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.getKey = key
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	cmd.SetVal(m.getVal)
	return cmd
}

func (m *mockLoginRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.delKeys = append(m.delKeys, keys...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisLoginRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginRateLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisLoginRateLimiter{
			client: &mockLoginRedis{getVal: "0"},
			window: time.Minute,
			max:    3,
			prefix: "login:rl:",
		}
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when failures within max", func(t *testing.T) {
		mock := &mockLoginRedis{getVal: "2"}
		l := &redisLoginRateLimiter{
			client: mock,
			window: time.Minute,
			max:    3,
			prefix: "login:rl:",
		}
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when failures < max")
		}
		if mock.getKey != "login:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %q", mock.getKey)
		}
	})

	t.Run("deny when failures reach max", func(t *testing.T) {
		l := &redisLoginRateLimiter{
			client: &mockLoginRedis{getVal: "3"},
			window: time.Minute,
			max:    3,
			prefix: "login:rl:",
		}
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when failures >= max")
		}
	})

	t.Run("clean window allows", func(t *testing.T) {
		l := &redisLoginRateLimiter{
			client: &mockLoginRedis{getErr: redis.Nil},
			window: time.Minute,
			max:    3,
			prefix: "login:rl:",
		}
		if !l.Allow("user@example.com") {
			t.Fatalf("expected allow when no failures recorded")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisLoginRateLimiter{
			client: &mockLoginRedis{getErr: errors.New("redis down")},
			window: time.Minute,
			max:    3,
			prefix: "login:rl:",
		}
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRedisLoginRateLimiterFail(t *testing.T) {
	mock := &mockLoginRedis{}
	l := &redisLoginRateLimiter{
		client: mock,
		window: 2 * time.Minute,
		max:    3,
		prefix: "login:rl:",
	}

	l.Fail(" User@Example.com ")

	if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "login:rl:user@example.com" {
		t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
	}
	if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
		t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
	}
	if mock.lastScript != redisLoginFailScript {
		t.Fatalf("expected script to match")
	}
}

func TestRedisLoginRateLimiterReset(t *testing.T) {
	mock := &mockLoginRedis{}
	l := &redisLoginRateLimiter{
		client: mock,
		window: time.Minute,
		max:    3,
		prefix: "login:rl:",
	}

	l.Reset("User@Example.com")

	if len(mock.delKeys) != 1 || mock.delKeys[0] != "login:rl:user@example.com" {
		t.Fatalf("expected reset to delete the key, got %+v", mock.delKeys)
	}

	// Nil receiver y clave vacía no tocan Redis.
	var nilLimiter *redisLoginRateLimiter
	nilLimiter.Fail("user@example.com")
	nilLimiter.Reset("user@example.com")
	l.Fail("   ")
	if len(mock.lastKeys) != 0 {
		t.Fatalf("empty key must not reach redis, got %+v", mock.lastKeys)
	}
}
