package services

import (
	"context"
	"errors"
	"time"

	"github.com/kavro/tidepool/pkg/faults"
)

// DefaultOpTimeout bounds every storage-backed operation. Exceeding it
// yields a Timeout fault with no partial result.
const DefaultOpTimeout = 3 * time.Second

func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeFault maps a repository error to the caller-facing fault: a blown
// deadline becomes Timeout, anything else an opaque Internal.
func storeFault(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return faults.New(faults.Timeout, "operation deadline exceeded")
	}
	return faults.WrapInternal(err)
}
