package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chainlist-rpcs/internal/pkg/apperrors"
)

// defaultTransportTimeout bounds a probe when neither a per-probe timeout nor a parent deadline is set.
const defaultTransportTimeout = 10 * time.Second

// pending is a single-resolution result cell. The first settle wins; later ones are dropped.
type pending[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newPending[T any]() *pending[T] {
	return &pending[T]{done: make(chan struct{})}
}

func (p *pending[T]) resolve(v T) bool {
	return p.settle(v, nil)
}

func (p *pending[T]) reject(err error) bool {
	var zero T
	return p.settle(zero, err)
}

func (p *pending[T]) settle(v T, err error) bool {
	settled := false
	p.once.Do(func() {
		p.val, p.err = v, err
		close(p.done)
		settled = true
	})
	return settled
}

// wait blocks until p is settled or ctx is done. A done context settles p with a timeout or cancellation error.
func (p *pending[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		p.reject(contextError(ctx))
		<-p.done
	}
	return p.val, p.err
}

// withProbeTimeout derives the probe context. A zero timeout inherits the parent's deadline,
// and fallback applies when the parent has none either, so every probe ends up bounded.
func withProbeTimeout(ctx context.Context, timeout, fallback time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	if _, ok := ctx.Deadline(); !ok && fallback > 0 {
		return context.WithTimeout(ctx, fallback)
	}
	return context.WithCancel(ctx)
}

func contextError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperrors.ErrTimeout, cause)
	}
	return fmt.Errorf("%w: probe cancelled: %v", apperrors.ErrExternalServiceFailure, cause)
}
