// Package random provides the pseudo-random sources used for problem
// generation and server population.
package random

import (
	"fmt"
	"math"
	"time"
)

// Rand is the draw the generators make. Passing the same seeded source
// reproduces the same scenario.
type Rand interface {
	Intn(n int) int
}

// New returns a Subtractive source seeded with the low 32 bits of seed.
func New(seed int64) *Subtractive {
	return NewSubtractive(int32(seed))
}

// NewTimeSeeded returns a source seeded from the clock along with its seed
// so the run can be reproduced with New.
func NewTimeSeeded() (*Subtractive, int64) {
	seed := time.Now().UnixNano() % math.MaxInt32
	return New(seed), seed
}

// Between draws from the inclusive range [lo, hi] like a half-open
// Next(lo, hi+1): one draw is consumed even when the range holds a single
// value or is empty (hi == lo-1), and lo is returned for the empty range.
// Ranges inverted further return lo without drawing.
func Between(r Rand, lo, hi int) int {
	switch {
	case hi < lo-1:
		return lo
	case hi < lo:
		r.Intn(1)
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// PowerOfTwo draws uniformly among the powers of two in [lo, hi]. When only
// one candidate exists it is returned without drawing; when none exist 0 is
// returned.
func PowerOfTwo(r Rand, lo, hi int) int {
	var candidates []int
	for p := 1; p <= hi; p *= 2 {
		if p >= lo {
			candidates = append(candidates, p)
		}
	}
	switch len(candidates) {
	case 0:
		return 0
	case 1:
		return candidates[0]
	}
	return candidates[r.Intn(len(candidates))]
}

// Sequence replays scripted draws. It panics when exhausted or when a value
// falls outside the requested range, which makes draw-order mistakes loud.
type Sequence struct {
	values []int
	next   int
}

// NewSequence returns a Sequence that yields values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Intn(n int) int {
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("random: sequence exhausted after %d draws (Intn(%d))", s.next, n))
	}
	v := s.values[s.next]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("random: draw %d is %d, outside [0,%d)", s.next, v, n))
	}
	s.next++
	return v
}

// Drawn returns the number of values consumed so far.
func (s *Sequence) Drawn() int {
	return s.next
}
