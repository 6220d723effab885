package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationApply(t *testing.T) {
	tests := []struct {
		act  Activation
		in   float64
		want float64
	}{
		{ActivationNone, -3, -3},
		{ActivationSigmoid, 0, 0.5},
		{ActivationSigmoid, 1, 1 / (1 + math.Exp(-4.9))},
		{ActivationReLU, -2, 0},
		{ActivationReLU, 2, 2},
		{ActivationTanh, 2, math.Tanh(2)},
		{Activation(42), 1.5, 1.5},
	}
	for _, tc := range tests {
		t.Run(tc.act.String(), func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.act.Apply(tc.in), 1e-12)
		})
	}
}

func TestParseActivation(t *testing.T) {
	a, err := ParseActivation("relu")
	require.NoError(t, err)
	assert.Equal(t, ActivationReLU, a)

	_, err = ParseActivation("gaussian")
	assert.Error(t, err)
	assert.False(t, Activation(4).Valid())
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 1000; i++ {
		v := r.GetFullRange(2)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 2.0)

		v = r.GetRange(2, 5)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 5.0)

		idx := r.Index(3)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 3)
	}
	assert.False(t, r.Proba(0))
	assert.True(t, r.Proba(1))
}

func TestRNGSetSeedRestartsSequence(t *testing.T) {
	r := NewRNG(5)
	first := []float64{r.GetUnder(1), r.GetUnder(1)}
	r.SetSeed(5)
	assert.Equal(t, first, []float64{r.GetUnder(1), r.GetUnder(1)})
}
