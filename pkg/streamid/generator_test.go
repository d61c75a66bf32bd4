package streamid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_SequenceWithinSameMillisecond(t *testing.T) {
	gen := NewWithClock(func() int64 { return 1700000000000 })

	for i := int64(1); i <= 5; i++ {
		id, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000000), id.Millis)
		// the first observed millisecond transition resets the sequence to 0
		assert.Equal(t, i-1, id.Seq)
	}
}

func TestNext_SequenceResetsWhenClockAdvances(t *testing.T) {
	now := int64(1700000000000)
	gen := NewWithClock(func() int64 { return now })

	first, err := gen.Next()
	require.NoError(t, err)
	second, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Seq)
	assert.Equal(t, int64(1), second.Seq)

	now++
	third, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000001), third.Millis)
	assert.Equal(t, int64(0), third.Seq)
}

func TestNext_ClockRegressionKeepsCounting(t *testing.T) {
	now := int64(1700000000500)
	gen := NewWithClock(func() int64 { return now })

	issued, err := gen.Next()
	require.NoError(t, err)
	require.Equal(t, int64(0), issued.Seq)

	// NTP-style correction: clock jumps back half a second
	now = 1700000000000
	for i := int64(1); i <= 3; i++ {
		id, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000500), id.Millis, "millis must not go backward")
		assert.Equal(t, i, id.Seq)
		assert.Equal(t, 1, id.Compare(issued))
	}
}

func TestNext_ConcurrentCallersGetUniqueOrderedIDs(t *testing.T) {
	gen := New()

	const workers = 50
	const perWorker = 200

	var mu sync.Mutex
	var wg sync.WaitGroup
	all := make([]ID, 0, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]ID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, err := gen.Next()
				if err != nil {
					t.Error(err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, all, workers*perWorker)
	seen := make(map[string]struct{}, len(all))
	for _, id := range all {
		_, dup := seen[id.String()]
		require.False(t, dup, "duplicate identifier %s", id)
		seen[id.String()] = struct{}{}
	}
}

func TestNext_SequenceOverflowFailsFast(t *testing.T) {
	gen := NewWithClock(func() int64 { return 1700000000000 })

	for i := 0; i <= maxSeq; i++ {
		_, err := gen.Next()
		require.NoError(t, err)
	}
	_, err := gen.Next()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestParse(t *testing.T) {
	id, err := Parse("1700000000000-7")
	require.NoError(t, err)
	assert.Equal(t, ID{Millis: 1700000000000, Seq: 7}, id)
	assert.Equal(t, "1700000000000-7", id.String())

	for _, bad := range []string{"", "17000", "abc-0", "1700-xyz", "-1-0"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestCompare(t *testing.T) {
	a := ID{Millis: 100, Seq: 0}
	b := ID{Millis: 100, Seq: 1}
	c := ID{Millis: 101, Seq: 0}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
}
