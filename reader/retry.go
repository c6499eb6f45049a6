package reader

import (
	"context"
	"log/slog"
	"time"

	"github.com/isaacchacko/den"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchFunc is the signature for a fetch function.
type fetchFunc func(ctx context.Context, url string) (string, error)

// fetchWithRetry calls fetch once, then once more after each delay until it
// succeeds. Permanent failures and context cancellation stop retrying
// immediately.
func fetchWithRetry(ctx context.Context, url string, fetch fetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(delays) || permanent(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		logger.Debug("retry fetch", "url", url, "attempt", attempt+2, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

// permanent reports whether a fetch error will not change on retry.
func permanent(err error) bool {
	switch den.ErrorCode(err) {
	case den.EINVALID, den.ENOTFOUND:
		return true
	}
	return false
}
