package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorUniformWhenAllZero(t *testing.T) {
	s := NewSelector(NewRNG(1))
	for i := 0; i < 4; i++ {
		s.AddEntry(i, 0)
	}
	s.NormalizeEntries()

	counts := make([]int, 4)
	const draws = 40000
	for i := 0; i < draws; i++ {
		counts[s.Pick()]++
	}
	for i, c := range counts {
		assert.InDelta(t, draws/4, c, draws*0.02, "index %d", i)
	}
}

func TestSelectorProportional(t *testing.T) {
	s := NewSelector(NewRNG(2))
	s.AddEntry(10, 1)
	s.AddEntry(20, 3)
	s.NormalizeEntries()

	counts := map[int]int{}
	const draws = 40000
	for i := 0; i < draws; i++ {
		counts[s.Pick()]++
	}
	assert.InDelta(t, draws/4, counts[10], draws*0.02)
	assert.InDelta(t, 3*draws/4, counts[20], draws*0.02)
}

func TestSelectorDominantEntry(t *testing.T) {
	s := NewSelector(NewRNG(3))
	s.AddEntry(0, 0)
	s.AddEntry(1, 5)
	s.AddEntry(2, 0)
	s.NormalizeEntries()

	for i := 0; i < 1000; i++ {
		assert.Equal(t, 1, s.Pick())
	}
}

func TestSelectorEmpty(t *testing.T) {
	s := NewSelector(NewRNG(4))
	s.NormalizeEntries()
	assert.Equal(t, 0, s.Pick())
}

func TestSelectorClear(t *testing.T) {
	s := NewSelector(NewRNG(5))
	s.AddEntry(7, 1)
	s.Clear()
	assert.Equal(t, 0, s.Len())

	s.AddEntry(3, 2)
	s.NormalizeEntries()
	assert.Equal(t, 3, s.Pick())
}
