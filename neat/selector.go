package neat

import "sort"

// SelectorEntry is one candidate of the roulette wheel.
type SelectorEntry struct {
	Index      int
	Score      float64
	WheelScore float64 // cumulative normalized score, set by NormalizeEntries
}

// Selector picks indices with probability proportional to their score.
type Selector struct {
	RNG     *RNG
	entries []SelectorEntry
	sum     float64
}

// NewSelector creates an empty selector drawing from rng.
func NewSelector(rng *RNG) *Selector {
	return &Selector{RNG: rng}
}

// Clear removes all entries.
func (s *Selector) Clear() {
	s.entries = s.entries[:0]
	s.sum = 0
}

// AddEntry registers index with a non-negative score.
func (s *Selector) AddEntry(index int, score float64) {
	s.entries = append(s.entries, SelectorEntry{Index: index, Score: score})
	s.sum += score
}

// Len returns the number of entries.
func (s *Selector) Len() int {
	return len(s.entries)
}

// NormalizeEntries builds the cumulative wheel. A zero total makes every entry equally likely.
func (s *Selector) NormalizeEntries() {
	n := float64(len(s.entries))
	acc := 0.0
	for i := range s.entries {
		if s.sum > 0 {
			acc += s.entries[i].Score / s.sum
		} else {
			acc += 1.0 / n
		}
		s.entries[i].WheelScore = acc
	}
}

// Pick returns the index of the first entry whose cumulative score exceeds a uniform draw.
func (s *Selector) Pick() int {
	if len(s.entries) == 0 {
		logger.Warn("pick from empty selector")
		return 0
	}
	v := s.RNG.GetUnder(1.0)
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].WheelScore > v
	})
	// Rounding can leave the last cumulative score just under 1.
	if i == len(s.entries) {
		i--
	}
	return s.entries[i].Index
}
