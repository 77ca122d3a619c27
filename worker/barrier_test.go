package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/store"
)

func TestBarrierWaitReturnsAfterStartTime(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	start := time.Now().Add(30 * time.Millisecond)
	require.NoError(t, s.Put(ctx, StartTimeKey, start.Format(time.RFC3339Nano)))

	b := NewBarrier(s)
	require.NoError(t, b.Wait(ctx))
	assert.False(t, time.Now().Before(start))
}

func TestBarrierWaitRespectsCancellation(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	require.NoError(t, s.Put(ctx, StartTimeKey, start.Format(time.RFC3339)))

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	b := NewBarrier(s)
	err := b.Wait(cctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToleranceExceeded(t *testing.T) {
	b := NewBarrier(store.NewMemory())
	start := time.Now()
	assert.False(t, b.ToleranceExceeded(start, start.Add(time.Second)))
	assert.True(t, b.ToleranceExceeded(start, start.Add(10*time.Second)))
}
