// Package rate limita la tasa de requests al token endpoint. La ventana
// vive en redis para que el límite sea coherente entre réplicas.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result describe la decisión para un hit dentro de la ventana vigente.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter implementa fixed window sobre redis (INCR + EXPIRE). La key
// típica es el client_id que autentica contra /oauth2/token; una key nueva
// abre ventana nueva.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "tokenbridge:rate:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

// Allow registra un hit para key y decide si pasa. El contador y su TTL se
// resuelven en un TxPipeline; el primer hit de la ventana fija el expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	bucket := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	ttl := pipe.TTL(ctx, bucket)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: allow %q: %w", key, err)
	}

	hits := incr.Val()
	if hits == 1 {
		_ = l.Client.Expire(ctx, bucket, l.Window).Err()
		ttl = l.Client.TTL(ctx, bucket)
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl.Val(),
	}
	if !res.Allowed {
		// Retry-After: lo que queda de la ventana.
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = time.Duration(math.Ceil(l.Window.Seconds())) * time.Second
		}
	}
	return res, nil
}
