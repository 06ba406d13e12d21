package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tokenbridge/internal/rate"
)

func newLimiter(t *testing.T, max int, window time.Duration) (*rate.RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return rate.NewRedisLimiter(client, "", max, window), srv
}

func TestRedisLimiter_AllowsUpToMax(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("allow #%d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d under max must pass", i)
		}
		if want := int64(3 - i); res.Remaining != want {
			t.Fatalf("remaining = %d, want %d", res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("allow over max: %v", err)
	}
	if res.Allowed {
		t.Fatal("hit over max must be rejected")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("rejected hit must carry retry-after, got %v", res.RetryAfter)
	}
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "client-a"); !res.Allowed {
		t.Fatal("first hit for client-a must pass")
	}
	if res, _ := l.Allow(ctx, "client-a"); res.Allowed {
		t.Fatal("second hit for client-a must be rejected")
	}
	if res, _ := l.Allow(ctx, "client-b"); !res.Allowed {
		t.Fatal("client-b has its own window")
	}
}

func TestRedisLimiter_WindowExpiryResets(t *testing.T) {
	l, srv := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "client-a"); !res.Allowed {
		t.Fatal("first hit must pass")
	}
	if res, _ := l.Allow(ctx, "client-a"); res.Allowed {
		t.Fatal("window exhausted, second hit must be rejected")
	}

	srv.FastForward(2 * time.Minute)

	if res, _ := l.Allow(ctx, "client-a"); !res.Allowed {
		t.Fatal("expired window must reset the counter")
	}
}
