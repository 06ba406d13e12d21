package rate

import (
	"context"

	mw "github.com/dropDatabas3/tokenbridge/internal/http/middlewares"
)

// HTTPAdapter expone un Limiter con la interfaz que espera el middleware
// de rate limiting, sin acoplar el paquete de middlewares a redis.
type HTTPAdapter struct {
	Limiter Limiter
}

func (a HTTPAdapter) Allow(ctx context.Context, key string) (mw.RateLimitResult, error) {
	res, err := a.Limiter.Allow(ctx, key)
	if err != nil {
		return mw.RateLimitResult{}, err
	}
	return mw.RateLimitResult{
		Allowed:     res.Allowed,
		Remaining:   res.Remaining,
		RetryAfter:  res.RetryAfter,
		WindowTTL:   res.WindowTTL,
		CurrentHits: res.CurrentHits,
	}, nil
}
