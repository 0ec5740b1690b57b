package random

import (
	"testing"
)

func TestBetween_Range(t *testing.T) {
	r := New(1)
	for i := 0; i < 1000; i++ {
		v := Between(r, 3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Between(3, 5) returned %d", v)
		}
	}
}

func TestBetween_DegenerateRanges(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int
		drawn  int
		want   int
	}{
		{"single value", 2, 2, 1, 2},
		{"empty range", 1, 0, 1, 1},
		{"inverted range", 5, 1, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSequence(0)
			if v := Between(seq, tt.lo, tt.hi); v != tt.want {
				t.Errorf("Between(%d, %d) = %d, expected %d", tt.lo, tt.hi, v, tt.want)
			}
			if seq.Drawn() != tt.drawn {
				t.Errorf("expected %d draws, got %d", tt.drawn, seq.Drawn())
			}
		})
	}
}

func TestBetween_UsesOffset(t *testing.T) {
	seq := NewSequence(2)

	if v := Between(seq, 3, 5); v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
}

func TestPowerOfTwo(t *testing.T) {
	tests := []struct {
		name  string
		lo    int
		hi    int
		draws []int
		want  int
	}{
		{"single candidate", 2, 2, nil, 2},
		{"single candidate in wide range", 2, 3, nil, 2},
		{"first of three", 1, 4, []int{0}, 1},
		{"last of three", 1, 4, []int{2}, 4},
		{"between two and eight", 2, 8, []int{1}, 4},
		{"no candidate", 3, 3, nil, 0},
		{"empty range", 1, 0, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSequence(tt.draws...)
			got := PowerOfTwo(seq, tt.lo, tt.hi)
			if got != tt.want {
				t.Errorf("PowerOfTwo(%d, %d) = %d, expected %d", tt.lo, tt.hi, got, tt.want)
			}
			if seq.Drawn() != len(tt.draws) {
				t.Errorf("expected %d draws, got %d", len(tt.draws), seq.Drawn())
			}
		})
	}
}

func TestNew_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("sources with equal seeds diverged")
		}
	}
}

func TestSequence_PanicsWhenExhausted(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on exhausted sequence")
		}
	}()
	NewSequence().Intn(2)
}

func TestSequence_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range value")
		}
	}()
	NewSequence(5).Intn(2)
}
