package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that spaces requests with a token bucket.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a limiter allowing perMinute requests per
// minute and a burst of a few requests. perMinute <= 0 returns p unchanged.
func WithRateLimit(p Provider, perMinute int) Provider {
	if perMinute <= 0 {
		return p
	}
	burst := max(1, perMinute/10)
	every := time.Minute / time.Duration(perMinute)
	return &RateLimitProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

// Generate waits for a token, then forwards the request. A wait that would
// outlast the context deadline fails fast with ErrRateLimit.
func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrRateLimit{RetryAfter: r.delay(), Err: err}
	}
	return r.inner.Generate(ctx, req)
}

// delay estimates how long until the next token.
func (r *RateLimitProvider) delay() time.Duration {
	res := r.limiter.Reserve()
	defer res.Cancel()
	return res.Delay()
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
