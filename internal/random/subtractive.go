package random

import "math"

const (
	subtractiveBig  = math.MaxInt32
	subtractiveSeed = 161803398
)

// Subtractive is Knuth's subtractive generator with the seeding and
// scaling of the System.Random class the scenarios were first authored
// against, so a seed yields the same draws in both.
type Subtractive struct {
	state [56]int32
	next  int
	nextp int
}

// NewSubtractive returns a generator seeded with seed.
func NewSubtractive(seed int32) *Subtractive {
	s := &Subtractive{nextp: 21}

	var sub int32 = math.MaxInt32
	if seed != math.MinInt32 {
		sub = seed
		if sub < 0 {
			sub = -sub
		}
	}

	mj := subtractiveSeed - sub
	s.state[55] = mj
	var mk int32 = 1
	for i := 1; i < 55; i++ {
		ii := (21 * i) % 55
		s.state[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += subtractiveBig
		}
		mj = s.state[ii]
	}
	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			s.state[i] -= s.state[1+(i+30)%55]
			if s.state[i] < 0 {
				s.state[i] += subtractiveBig
			}
		}
	}
	return s
}

func (s *Subtractive) sample() int32 {
	next := s.next + 1
	if next >= 56 {
		next = 1
	}
	nextp := s.nextp + 1
	if nextp >= 56 {
		nextp = 1
	}

	v := s.state[next] - s.state[nextp]
	if v == subtractiveBig {
		v--
	}
	if v < 0 {
		v += subtractiveBig
	}
	s.state[next] = v
	s.next, s.nextp = next, nextp
	return v
}

// Float64 returns a value in [0, 1).
func (s *Subtractive) Float64() float64 {
	return float64(s.sample()) * (1.0 / subtractiveBig)
}

// Intn returns a value in [0, n). Every call consumes one draw, including
// Intn(1). It panics if n <= 0.
func (s *Subtractive) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	return int(s.Float64() * float64(n))
}
