package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_ClearsPendingOnEveryPath(t *testing.T) {
	tr := NewTracker(0)

	_, err := Do(context.Background(), tr, func(ctx context.Context) (int, error) {
		assert.True(t, tr.Busy())
		return 1, nil
	})
	require.NoError(t, err)
	assert.False(t, tr.Busy())
	assert.Equal(t, OpSucceeded, tr.State())

	_, err = Do(context.Background(), tr, func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.False(t, tr.Busy())
	assert.Equal(t, OpFailed, tr.State())
}

func TestDo_RefusesWhileBusy(t *testing.T) {
	tr := NewTracker(0)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Do(context.Background(), tr, func(ctx context.Context) (struct{}, error) {
			close(started)
			<-release
			return struct{}{}, nil
		})
	}()
	<-started

	called := false
	_, err := Do(context.Background(), tr, func(ctx context.Context) (struct{}, error) {
		called = true
		return struct{}{}, nil
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, called)

	close(release)
	<-done
	assert.False(t, tr.Busy())
}

func TestDo_Timeout(t *testing.T) {
	tr := NewTracker(20 * time.Millisecond)
	_, err := Do(context.Background(), tr, func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, tr.Busy())
}

func TestTracker_Close(t *testing.T) {
	tr := NewTracker(0)
	started := make(chan struct{})
	result := make(chan error, 1)

	go func() {
		_, err := Do(context.Background(), tr, func(ctx context.Context) (struct{}, error) {
			close(started)
			<-ctx.Done()
			return struct{}{}, ctx.Err()
		})
		result <- err
	}()
	<-started
	tr.Close()

	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, OpCanceled, tr.State())
	assert.True(t, tr.Closed())

	_, err := Do(context.Background(), tr, func(ctx context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrClosed)
}
