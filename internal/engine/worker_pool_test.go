package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_ProcessesAndDrains(t *testing.T) {
	var n atomic.Int32
	p := newWorkerPool[int](context.Background(), 2, 4, func(_ context.Context, v int) { n.Add(int32(v)) })
	for i := 1; i <= 10; i++ {
		require.NoError(t, p.SubmitWait(context.Background(), i))
	}
	p.Drain()
	assert.Equal(t, int32(55), n.Load())

	assert.ErrorIs(t, p.SubmitWait(context.Background(), 1), ErrShutdown)
	p.Drain()
}

func TestWorkerPool_DrainWakesBlockedSubmit(t *testing.T) {
	release := make(chan struct{})
	p := newWorkerPool[int](context.Background(), 1, 1, func(context.Context, int) { <-release })
	require.NoError(t, p.SubmitWait(context.Background(), 1)) // taken by the worker
	require.Eventually(t, func() bool { return p.QueueLen() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.SubmitWait(context.Background(), 2)) // fills the queue

	errC := make(chan error, 1)
	go func() { errC <- p.SubmitWait(context.Background(), 3) }()

	drained := make(chan struct{})
	go func() { p.Drain(); close(drained) }()

	select {
	case err := <-errC:
		assert.ErrorIs(t, err, ErrShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("blocked submit not released by Drain")
	}
	close(release)
	<-drained
}
