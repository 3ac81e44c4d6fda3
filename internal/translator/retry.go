package translator

import (
	"context"
	"time"

	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/internal/modelcaller"
)

// RetryConfig tunes the backoff applied when a ModelCaller reports
// ModelOverloaded. No backoff library appears as a direct import
// anywhere in the example corpus (cenkalti/backoff/v4 shows up only as
// an indirect transitive dependency in one manifest), so this is a
// small hand-rolled doubling-capped loop, justified in DESIGN.md.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig mirrors the original's defaults: 5 attempts,
// starting at 1s, doubling up to a 16s cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 16 * time.Second}
}

// callWithRetry retries only on ModelOverloaded; any other error from
// caller propagates immediately, as does the last ModelOverloaded once
// the attempt budget is exhausted. The caller, which alone knows the
// source chunk text, is responsible for wrapping a returned error in
// ChunkTranslationFailed.
func callWithRetry(ctx context.Context, caller modelcaller.ModelCaller, prompt string, cfg RetryConfig) (string, error) {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		out, err := caller.Call(ctx, prompt)
		if err == nil {
			caller.WaitCooldown()
			return out, nil
		}

		var overloaded *doctranerr.ModelOverloaded
		if !asModelOverloaded(err, &overloaded) {
			return "", err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return "", lastErr
}

func asModelOverloaded(err error, target **doctranerr.ModelOverloaded) bool {
	o, ok := err.(*doctranerr.ModelOverloaded)
	if ok {
		*target = o
	}
	return ok
}
