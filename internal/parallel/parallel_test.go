package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 16} {
		got, err := Map(context.Background(), 100, workers, func(_ context.Context, i int) (int, error) {
			return i * i, nil
		})
		require.NoError(t, err)
		require.Len(t, got, 100)
		for i, v := range got {
			assert.Equal(t, i*i, v, "workers=%d index=%d", workers, i)
		}
	}
}

func TestForEachVisitsEveryIndexOnce(t *testing.T) {
	var counts [50]atomic.Int32
	err := ForEach(context.Background(), len(counts), 4, func(_ context.Context, i int) error {
		counts[i].Add(1)
		return nil
	})
	require.NoError(t, err)
	for i := range counts {
		assert.Equal(t, int32(1), counts[i].Load(), "index %d", i)
	}
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	for _, workers := range []int{1, 4} {
		_, err := Map(context.Background(), 20, workers, func(_ context.Context, i int) (int, error) {
			if i == 5 {
				return 0, boom
			}
			return i, nil
		})
		assert.ErrorIs(t, err, boom, "workers=%d", workers)
	}
}

func TestForEachHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := ForEach(ctx, 10, 2, func(context.Context, int) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestForEachEmpty(t *testing.T) {
	err := ForEach(context.Background(), 0, 4, func(context.Context, int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	assert.NoError(t, err)
}

func TestForEachReturnsLowestFailingIndex(t *testing.T) {
	for range 20 {
		err := ForEach(context.Background(), 32, 8, func(ctx context.Context, i int) error {
			switch i {
			case 3:
				// Fails last; later failures must not win.
				time.Sleep(5 * time.Millisecond)
				return fmt.Errorf("index %d failed", i)
			case 9, 20, 31:
				return fmt.Errorf("index %d failed", i)
			}
			return nil
		})
		require.Error(t, err)
		assert.EqualError(t, err, "index 3 failed")
	}
}

func TestForEachDoesNotCancelLowerIndices(t *testing.T) {
	var finished [16]atomic.Bool
	err := ForEach(context.Background(), len(finished), 4, func(ctx context.Context, i int) error {
		if i == 10 {
			return errors.New("boom")
		}
		if i < 10 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Millisecond):
			}
			finished[i].Store(true)
		}
		return nil
	})
	require.EqualError(t, err, "boom")
	for i := range 10 {
		assert.True(t, finished[i].Load(), "index %d was cancelled", i)
	}
}
