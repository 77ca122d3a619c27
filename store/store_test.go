package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "start_time", "now"))
	v, err := s.Get(ctx, "start_time")
	require.NoError(t, err)
	assert.Equal(t, "now", v)
}

func TestListSortedByPrefix(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "services/workers/a/0", "host-a"))
	require.NoError(t, s.Put(ctx, "services/workers/a/1", "host-b"))
	require.NoError(t, s.Put(ctx, "services/clients/0", "host-c"))

	keys, err := s.List(ctx, "services/workers/")
	require.NoError(t, err)
	assert.Equal(t, []string{"services/workers/a/0", "services/workers/a/1"}, keys)
}

func TestWatchReceivesMatchingPuts(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, "services/")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "services/workers/a/0", "host-a"))
	require.NoError(t, s.Put(ctx, "other/key", "ignored"))

	select {
	case ev := <-ch:
		assert.Equal(t, "services/workers/a/0", ev.Key)
		assert.Equal(t, "host-a", ev.Value)
	case <-time.After(time.Second):
		t.Fatal("expected a watch event")
	}
}

func TestWatchClosesOnContextCancel(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.Watch(ctx, "prefix/")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected channel to close after cancellation")
	}
}
