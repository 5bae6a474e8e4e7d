// Package remote runs backend calls behind a circuit breaker and sorts
// their failures into caller mistakes and remote failures.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

type Caller struct {
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewCaller accepts a nil metrics.
func NewCaller(breaker *circuitbreaker.CircuitBreaker, m *metrics.Metrics) *Caller {
	return &Caller{breaker: breaker, metrics: m}
}

// Call runs fn. AppErrors from the backend (NotFound, Conflict, ...) and
// context errors pass through unchanged; anything else becomes a
// RemoteFailure naming op.
func (c *Caller) Call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := c.breaker.Execute(func() error { return fn(ctx) })
	if c.metrics != nil {
		c.metrics.ObserveBackend(op, start, err)
	}
	return classify(op, err)
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.ErrInternal {
		return err
	}
	return apperrors.RemoteFailure(op, err)
}
