package llm

import (
	"context"
	"time"
)

// retrySleep is injectable for tests.
var retrySleep = sleepCtx

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// CompleteWithRetry calls the provider with bounded retry and exponential
// backoff. A final failure is returned to the caller, which must degrade
// rather than abort its batch.
func CompleteWithRetry(ctx context.Context, p Provider, maxRetries int, systemPrompt, userPrompt string) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := retrySleep(ctx, backoff); err != nil {
				return "", err
			}
			backoff *= 2
		}

		out, err := p.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
