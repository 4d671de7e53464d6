package consumer

import (
	"context"
	"time"
)

// retryBackoff is the wait before each retry of a failed handler. kafka-go
// commits offsets, so once a later message is committed the failed one is
// gone; the retries have to happen before the consumer moves on.
var retryBackoff = []time.Duration{
	500 * time.Millisecond,
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

// withRetry runs fn until it succeeds, permanent reports the error as not
// worth retrying, the backoff schedule runs out, or ctx is done. It returns
// the last error from fn, or ctx.Err() when cancelled while waiting.
func withRetry(ctx context.Context, permanent func(error) bool, fn func(context.Context) error) error {
	err := fn(ctx)
	for _, wait := range retryBackoff {
		if err == nil || (permanent != nil && permanent(err)) {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn(ctx)
	}
	return err
}
