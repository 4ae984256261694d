package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleAll_PreservesOrderAndIsolatesFailures(t *testing.T) {
	inputs := []int{1, 2, 3, 4}
	boom := errors.New("boom")

	results := SettleAll(context.Background(), inputs, 2, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n * 10, nil
	})

	require.Len(t, results, 4)
	assert.Equal(t, 10, results[0].Value)
	assert.Equal(t, 20, results[1].Value)
	assert.ErrorIs(t, results[2].Err, boom)
	assert.Equal(t, 40, results[3].Value)
	assert.NoError(t, results[3].Err)
	assert.ErrorIs(t, FirstError(results), boom)
}

func TestSettleAll_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	inputs := make([]int, 20)

	SettleAll(context.Background(), inputs, 3, func(_ context.Context, _ int) (struct{}, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestSettleAll_Empty(t *testing.T) {
	results := SettleAll(context.Background(), []string(nil), 0, func(_ context.Context, s string) (string, error) {
		t.Fatal("should not be called")
		return s, nil
	})
	assert.Empty(t, results)
	assert.NoError(t, FirstError(results))
}
