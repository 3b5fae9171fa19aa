package shifting

import (
	"testing"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestShift_SinglePeak(t *testing.T) {
	load := []float64{1, 5, 1}
	out, err := New(0.3).Shift(load, []float64{1, 5, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.75, 3.5, 1.75}, out, 1e-9)
	assert.Equal(t, []float64{1, 5, 1}, load, "input must not be modified")
}

func TestShift_LimitedByMean(t *testing.T) {
	// avg = 2, step 1 may move at most 0.5 even though the ratio allows 1.5
	out, err := New(0.3).Shift([]float64{1.75, 2.5, 1.75}, []float64{5, 5, 5})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 2, 2}, out, 1e-9)
}

func TestShift_FlatLoadIsNoop(t *testing.T) {
	flat := func(n int, v float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	tests := []struct {
		name string
		load []float64
	}{
		{"exact", flat(5, 2)},
		{"24x0.7", flat(24, 0.7)},
		{"11x2.2", flat(11, 2.2)},
		{"5x123.456", flat(5, 123.456)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(0.3).Shift(tt.load, tt.load)
			require.NoError(t, err)
			assert.Equal(t, tt.load, out)
		})
	}
}

func TestShift_ShortSeriesIsNoop(t *testing.T) {
	for _, load := range [][]float64{nil, {4}, {1, 9}} {
		out, err := New(0.3).Shift(load, load)
		require.NoError(t, err)
		assert.Equal(t, len(load), len(out))
		for i := range load {
			assert.Equal(t, load[i], out[i])
		}
	}
}

func TestShift_SequentialSweep(t *testing.T) {
	// avg = 3. Step 1 pushes 0.5 into step 2, which then sheds 1.5 instead
	// of the 1.0 a simultaneous update would move.
	load := []float64{0, 4, 4, 4}
	orig := []float64{10, 10, 10, 10}
	out, err := New(1).Shift(load, orig)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 3.75, 3, 4.75}, out, 1e-9)
	assert.InDelta(t, floats.Sum(load), floats.Sum(out), 1e-9)
}

func TestShift_LengthMismatch(t *testing.T) {
	_, err := New(0.3).Shift([]float64{1, 2, 3}, []float64{1, 2})
	assert.Error(t, err)
}

func TestShiftRecords(t *testing.T) {
	recs := []model.DispatchRecord{
		{Demand: 1, OptimisedLoad: 1},
		{Demand: 5, OptimisedLoad: 5},
		{Demand: 1, OptimisedLoad: 1},
	}
	out, err := New(DefaultFlexibleLoadRatio).ShiftRecords(recs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.75, 3.5, 1.75}, out, 1e-9)
}
