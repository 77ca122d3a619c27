package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/bytesutil"
)

func TestChannelVectorCombineXORs(t *testing.T) {
	a := ZeroChannelVector(2, 4)
	a[0] = bytesutil.Bytes{1, 0, 0, 0}
	b := ZeroChannelVector(2, 4)
	b[0] = bytesutil.Bytes{1, 1, 0, 0}

	combined := a.Combine(b).(ChannelVector)
	assert.True(t, combined[0].Equal(bytesutil.Bytes{0, 1, 0, 0}))
	assert.True(t, combined[1].IsZero())
}

func TestChannelVectorCombinePanicsOnMismatch(t *testing.T) {
	a := ZeroChannelVector(2, 4)
	b := ZeroChannelVector(3, 4)
	assert.Panics(t, func() { a.Combine(b) })
}

func TestAccumulatorIsMonoidOverConcurrentFolds(t *testing.T) {
	const n = 64
	acc := NewAccumulator(ZeroChannelVector(1, 8))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			contribution := ZeroChannelVector(1, 8)
			contribution[0][0] = byte(i % 2)
			acc.Accumulate(contribution)
		}(i)
	}
	wg.Wait()

	state, count := acc.Get()
	require.Equal(t, n, count)
	// n/2 contributions set bit 0 to 1, an even count, so it cancels out.
	assert.True(t, state.(ChannelVector)[0].IsZero())
}

func TestScalarCombine(t *testing.T) {
	a := Scalar(bytesutil.Bytes{1, 0})
	b := Scalar(bytesutil.Bytes{1, 1})
	combined := a.Combine(b).(Scalar)
	assert.True(t, bytesutil.Bytes(combined).Equal(bytesutil.Bytes{0, 1}))
}
