package tracking

import (
	"math"
	"testing"
)

func TestNewHysteresis_RejectsBadBand(t *testing.T) {
	cases := [][2]float64{{0, 0}, {0.2, 0.2}, {0.2, 0.3}, {1.2, 0.1}, {0.2, -0.1}}
	for _, c := range cases {
		if _, err := NewHysteresis(c[0], c[1]); err == nil {
			t.Fatalf("expected error for enter=%v exit=%v", c[0], c[1])
		}
	}
	if _, err := NewHysteresis(math.NaN(), 0.05); err == nil {
		t.Fatalf("expected error for NaN enter")
	}
	if _, err := NewHysteresis(0.15, math.NaN()); err == nil {
		t.Fatalf("expected error for NaN exit")
	}
	if _, err := NewHysteresis(0.15, 0.05); err != nil {
		t.Fatalf("valid band rejected: %v", err)
	}
}

func TestHysteresis_EnterAndExit(t *testing.T) {
	h, _ := NewHysteresis(0.15, 0.05)
	steps := []struct {
		score   float64
		want    State
		changed bool
	}{
		{0.10, StateNone, false},
		{0.15, StateTracking, true},
		{0.08, StateTracking, false},
		{0.05, StateTracking, false},
		{0.04, StateNone, true},
		{0.14, StateNone, false},
	}
	for i, s := range steps {
		got, changed := h.Observe(s.score)
		if got != s.want || changed != s.changed {
			t.Fatalf("step %d score=%v: got (%v,%v) want (%v,%v)", i, s.score, got, changed, s.want, s.changed)
		}
	}
}

func TestHysteresis_NoOscillationNearEnterThreshold(t *testing.T) {
	h, _ := NewHysteresis(0.15, 0.05)
	transitions := 0
	for i := 0; i < 200; i++ {
		score := 0.15 + 0.01
		if i%2 == 1 {
			score = 0.15 - 0.01
		}
		if _, changed := h.Observe(score); changed {
			transitions++
		}
	}
	if transitions != 1 {
		t.Fatalf("expected a single transition while hovering, got %d", transitions)
	}
}

func TestHysteresis_NoOscillationNearExitThreshold(t *testing.T) {
	h, _ := NewHysteresis(0.30, 0.10)
	h.Observe(0.9)
	transitions := 0
	for i := 0; i < 200; i++ {
		score := 0.11
		if i%2 == 1 {
			score = 0.09
		}
		if _, changed := h.Observe(score); changed {
			transitions++
		}
	}
	if transitions != 1 || h.State() != StateNone {
		t.Fatalf("expected one exit and no re-entry, got %d transitions state=%v", transitions, h.State())
	}
}

func TestHysteresis_Reset(t *testing.T) {
	h, _ := NewHysteresis(0.15, 0.05)
	h.Observe(1)
	h.Reset()
	if h.State() != StateNone {
		t.Fatalf("reset should return to none")
	}
}
