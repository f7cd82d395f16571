package internal

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// OpState is the lifecycle of the last operation run through a Tracker
type OpState string

const (
	OpIdle      OpState = "idle"
	OpPending   OpState = "pending"
	OpSucceeded OpState = "succeeded"
	OpFailed    OpState = "failed"
	OpCanceled  OpState = "canceled"
)

// Tracker runs at most one operation at a time. The pending flag is cleared
// on every exit path of Do, so callers never toggle it by hand.
type Tracker struct {
	mu      sync.Mutex
	state   OpState
	cancel  context.CancelFunc
	timeout time.Duration
	closed  bool
}

// NewTracker creates a tracker whose operations time out after timeout.
// A zero timeout means no deadline beyond the caller's context.
func NewTracker(timeout time.Duration) *Tracker {
	return &Tracker{state: OpIdle, timeout: timeout}
}

// Busy reports whether an operation is pending.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == OpPending
}

// State returns the state of the current or last operation.
func (t *Tracker) State() OpState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Cancel aborts the pending operation, if any.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Closed reports whether Close was called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close cancels the pending operation and refuses new ones.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *Tracker) begin(parent context.Context) (context.Context, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.state == OpPending {
		return nil, ErrBusy
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, t.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	t.state = OpPending
	t.cancel = cancel
	return ctx, nil
}

func (t *Tracker) finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	switch {
	case err == nil:
		t.state = OpSucceeded
	case errors.Is(err, context.Canceled):
		t.state = OpCanceled
	default:
		t.state = OpFailed
	}
}

// Do runs fn as the tracker's single pending operation. It returns ErrBusy
// without calling fn when another operation is pending.
func Do[T any](parent context.Context, t *Tracker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ctx, err := t.begin(parent)
	if err != nil {
		return zero, err
	}
	var out T
	defer func() { t.finish(err) }()
	out, err = fn(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.WithHint(err, "the service did not answer within the request timeout")
	}
	if err != nil {
		return zero, err
	}
	return out, nil
}
