package app

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilDone(stopped *atomic.Int32) Service {
	return ServiceFunc(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return nil
	})
}

func TestFirstServiceToReturnStopsTheRest(t *testing.T) {
	var stopped atomic.Int32
	boom := errors.New("decode failure")

	err := NewApp().
		WithService(blockUntilDone(&stopped)).
		WithService(ServiceFunc(func(ctx context.Context) error { return boom })).
		WithService(blockUntilDone(&stopped)).
		Run(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), stopped.Load(), "Run waits for every service")
}

func TestNormalEndStopsGroup(t *testing.T) {
	var stopped atomic.Int32
	err := NewApp().
		WithService(ServiceFunc(func(ctx context.Context) error { return nil })).
		WithService(blockUntilDone(&stopped)).
		Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int32(1), stopped.Load())
}

func TestInterrupterReturnsOnSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM

	err := Interrupter{signals: signals}.Run(context.Background())
	require.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, IsCleanShutdown(err))
}

func TestInterrupterReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Interrupter{signals: make(chan os.Signal)}.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsCleanShutdown(t *testing.T) {
	assert.True(t, IsCleanShutdown(nil))
	assert.True(t, IsCleanShutdown(context.Canceled))
	assert.False(t, IsCleanShutdown(errors.New("boom")))
}
