package dispatch

import (
	"context"
	"time"

	"github.com/dmorandell/innkeeper/common/retry"
)

// Bounded wraps a Dispatcher with one retry after a short delay. Transient
// side-channel hiccups get one more chance before the guest is asked whether
// to try again or escalate.
type Bounded struct {
	inner Dispatcher
	cfg   retry.Config
}

// WithBoundedRetry wraps dispatcher with the fixed two-attempt policy.
func WithBoundedRetry(dispatcher Dispatcher) *Bounded {
	return &Bounded{
		inner: dispatcher,
		cfg: retry.Config{
			MaxAttempts:  2,
			InitialDelay: 300 * time.Millisecond,
		},
	}
}

func (b *Bounded) Channel() string { return b.inner.Channel() }

// Send implements Dispatcher.
func (b *Bounded) Send(ctx context.Context, destination, summary string) error {
	return retry.Do(ctx, b.cfg, func() error {
		return b.inner.Send(ctx, destination, summary)
	})
}
