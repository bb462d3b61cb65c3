package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to a provider with a token bucket.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

func NewRateLimited(next Client, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *RateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Complete(ctx, prompt)
}

func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Embed(ctx, text)
}
