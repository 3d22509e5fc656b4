package llm

import (
	"context"
	"fmt"
	"time"

	domsvc "StockSense/internal/domain/service"

	"golang.org/x/time/rate"
)

// Throttled caps the request rate and per-call duration of a TextGenerator.
type Throttled struct {
	next    domsvc.TextGenerator
	limiter *rate.Limiter
	timeout time.Duration
}

// NewThrottled allows perMinute calls per minute with a burst of one.
// A non-positive perMinute disables throttling.
func NewThrottled(next domsvc.TextGenerator, perMinute int, timeout time.Duration) *Throttled {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

func (t *Throttled) Generate(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for llm rate limit: %w", err)
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.next.Generate(ctx, prompt)
}

var _ domsvc.TextGenerator = (*Throttled)(nil)
