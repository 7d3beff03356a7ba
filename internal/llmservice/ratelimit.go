package llmservice

import (
	"context"

	"golang.org/x/time/rate"
)

type limited struct {
	next    Backend
	limiter *rate.Limiter
}

// WithRateLimit makes callers wait for a token before each request.
func WithRateLimit(next Backend, perSecond float64, burst int) Backend {
	if burst < 1 {
		burst = 1
	}
	return &limited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *limited) Generate(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.next.Generate(ctx, req)
}
