package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupLimiter(t *testing.T, max int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewLoginLimiter(client, max, window), mr
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l, _ := setupLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allowed(ctx, "alice")
		if err != nil || !ok {
			t.Fatalf("attempt %d: allowed=%v err=%v", i+1, ok, err)
		}
		if err := l.Fail(ctx, "alice"); err != nil {
			t.Fatalf("fail: %v", err)
		}
	}

	ok, err := l.Allowed(ctx, "alice")
	if err != nil {
		t.Fatalf("allowed: %v", err)
	}
	if ok {
		t.Fatal("expected attempts to be blocked after 3 failures")
	}

	if ok, _ := l.Allowed(ctx, "bob"); !ok {
		t.Fatal("other usernames must not be affected")
	}
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l, mr := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Fail(ctx, "alice"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if ttl := mr.TTL("login:fail:alice"); ttl != time.Minute {
		t.Fatalf("expected window ttl of 1m, got %s", ttl)
	}
	if ok, _ := l.Allowed(ctx, "alice"); ok {
		t.Fatal("expected block inside window")
	}

	mr.FastForward(time.Minute + time.Second)

	if ok, _ := l.Allowed(ctx, "alice"); !ok {
		t.Fatal("expected attempts to be allowed once the window passed")
	}
}

func TestLoginLimiter_Reset(t *testing.T) {
	l, mr := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_ = l.Fail(ctx, "alice")
	if err := l.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists("login:fail:alice") {
		t.Fatal("counter should be removed")
	}
	if ok, _ := l.Allowed(ctx, "alice"); !ok {
		t.Fatal("expected attempts allowed after reset")
	}
}

func TestLoginLimiter_Disabled(t *testing.T) {
	l, mr := setupLimiter(t, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = l.Fail(ctx, "alice")
	}
	if mr.Exists("login:fail:alice") {
		t.Fatal("disabled limiter must not write counters")
	}
	if ok, _ := l.Allowed(ctx, "alice"); !ok {
		t.Fatal("disabled limiter must allow")
	}
}

func TestLoginLimiter_Unavailable(t *testing.T) {
	l, mr := setupLimiter(t, 3, time.Minute)
	mr.Close()

	if _, err := l.Allowed(context.Background(), "alice"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
