package shared

import "math/rand/v2"

// Random is the only source of randomness allowed in decision code.
// Every participant in a lockstep match seeds it identically, so the same
// inputs always produce the same choices.
type Random interface {
	// Intn returns a value in [0, n); n <= 0 yields 0
	Intn(n int) int
	// Float64 returns a value in [0, 1)
	Float64() float64
}

type seededRandom struct {
	rng *rand.Rand
}

// NewSeededRandom creates a deterministic generator for the given seed
func NewSeededRandom(seed uint64) Random {
	return &seededRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *seededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

func (r *seededRandom) Float64() float64 {
	return r.rng.Float64()
}

// SequenceRandom replays a fixed list of values, cycling when exhausted.
// Each value is reduced modulo n. Used by tests to force specific choices.
type SequenceRandom struct {
	Values []int
	next   int
}

func (s *SequenceRandom) Intn(n int) int {
	if n <= 0 || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}

func (s *SequenceRandom) Float64() float64 {
	return float64(s.Intn(1000)) / 1000
}
