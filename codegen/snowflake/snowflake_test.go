package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_Range(t *testing.T) {
	_, err := NewGenerator(-1, 0)
	assert.ErrorIs(t, err, ErrDatacenterOutOfRange)

	_, err = NewGenerator(0, 32)
	assert.ErrorIs(t, err, ErrWorkerOutOfRange)

	g, err := NewGenerator(31, 31)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestGenerator_SequenceWithinMillisecond(t *testing.T) {
	now := epoch + 1000
	g, err := NewGenerator(2, 3, WithClock(func() int64 { return now }))
	require.NoError(t, err)

	first, err := g.NextID()
	require.NoError(t, err)
	second, err := g.NextID()
	require.NoError(t, err)

	assert.Equal(t, first+1, second)

	parts := Decompose(second)
	assert.Equal(t, int64(2), parts.DatacenterID)
	assert.Equal(t, int64(3), parts.WorkerID)
	assert.Equal(t, int64(1), parts.Sequence)
	assert.Equal(t, now, parts.Timestamp.UnixMilli())
}

func TestGenerator_ClockBackwards(t *testing.T) {
	now := epoch + 5000
	g, err := NewGenerator(1, 1, WithClock(func() int64 { return now }))
	require.NoError(t, err)

	_, err = g.NextID()
	require.NoError(t, err)

	now -= 10
	_, err = g.NextID()
	assert.ErrorIs(t, err, ErrClockBackwards)
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	g, err := NewGenerator(1, 1)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	ids := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id, err := g.NextID()
				if err == nil {
					ids <- id
				}
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
		assert.Positive(t, id)
	}
	assert.Len(t, seen, workers*perWorker)
}
