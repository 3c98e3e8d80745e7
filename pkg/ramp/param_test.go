// ABOUTME: Tests for the software automation timeline
// ABOUTME: Tests continuous interpolation between events
package ramp

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Abs(b))
}

func TestParamDefaultBeforeEvents(t *testing.T) {
	p := NewParam(0.7)
	if p.ValueAt(5) != 0.7 {
		t.Errorf("expected default 0.7, got %f", p.ValueAt(5))
	}

	_ = p.SetValueAtTime(0.2, 1)
	if p.ValueAt(0.5) != 0.7 {
		t.Errorf("expected default before first event, got %f", p.ValueAt(0.5))
	}
	if p.ValueAt(1) != 0.2 {
		t.Errorf("expected set value at event time, got %f", p.ValueAt(1))
	}
	if p.ValueAt(100) != 0.2 {
		t.Errorf("expected value to hold after last event, got %f", p.ValueAt(100))
	}
}

func TestParamLinearRamp(t *testing.T) {
	p := NewParam(0)
	_ = p.SetValueAtTime(1, 2)
	_ = p.LinearRampToValueAtTime(0, 4)

	tests := []struct {
		at       float64
		expected float64
	}{
		{2, 1},
		{2.5, 0.75},
		{3, 0.5},
		{4, 0},
		{5, 0},
	}
	for _, tt := range tests {
		if got := p.ValueAt(tt.at); !almostEqual(got, tt.expected) {
			t.Errorf("at %.2f: expected %f, got %f", tt.at, tt.expected, got)
		}
	}
}

func TestParamExponentialRamp(t *testing.T) {
	p := NewParam(0)
	_ = p.SetValueAtTime(680, 1)
	_ = p.ExponentialRampToValueAtTime(220, 1.42)

	if got := p.ValueAt(1); !almostEqual(got, 680) {
		t.Errorf("expected 680 at start, got %f", got)
	}
	mid := math.Sqrt(680 * 220) // geometric mean at the halfway point
	if got := p.ValueAt(1.21); !almostEqual(got, mid) {
		t.Errorf("expected %f halfway, got %f", mid, got)
	}
	if got := p.ValueAt(1.42); !almostEqual(got, 220) {
		t.Errorf("expected 220 at end, got %f", got)
	}
}

func TestParamDripEnvelope(t *testing.T) {
	p := NewParam(1)
	if err := Apply(p, AttackRelease(0.001, 1, 0.04, 0.002, 0.6), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := p.ValueAt(3); !almostEqual(got, 0.001) {
		t.Errorf("expected floor at start, got %f", got)
	}
	if got := p.ValueAt(3.04); !almostEqual(got, 1) {
		t.Errorf("expected peak after attack, got %f", got)
	}
	if got := p.ValueAt(3.6); !almostEqual(got, 0.002) {
		t.Errorf("expected release floor, got %f", got)
	}

	// strictly rising during attack, strictly falling during release
	prev := p.ValueAt(3)
	for at := 3.005; at <= 3.04; at += 0.005 {
		v := p.ValueAt(at)
		if v <= prev {
			t.Fatalf("attack not rising at %.3f", at)
		}
		prev = v
	}
	for at := 3.1; at <= 3.6; at += 0.05 {
		v := p.ValueAt(at)
		if v >= prev {
			t.Fatalf("release not falling at %.3f", at)
		}
		prev = v
	}
}

func TestParamExponentialFromZeroHolds(t *testing.T) {
	p := NewParam(0)
	_ = p.SetValueAtTime(0, 0)
	_ = p.ExponentialRampToValueAtTime(1, 1)

	if p.ValueAt(0.5) != 0 {
		t.Errorf("expected ramp from zero to hold 0, got %f", p.ValueAt(0.5))
	}
	if p.ValueAt(1) != 1 {
		t.Errorf("expected target at ramp end, got %f", p.ValueAt(1))
	}
}

func TestParamRampWithoutPredecessorJumps(t *testing.T) {
	p := NewParam(0.5)
	_ = p.LinearRampToValueAtTime(1, 2)

	if p.ValueAt(1.9) != 0.5 {
		t.Errorf("expected default before the ramp time, got %f", p.ValueAt(1.9))
	}
	if p.ValueAt(2) != 1 {
		t.Errorf("expected target at ramp time, got %f", p.ValueAt(2))
	}
}

func TestParamOutOfOrderInsertion(t *testing.T) {
	p := NewParam(0)
	_ = p.LinearRampToValueAtTime(1, 2)
	_ = p.SetValueAtTime(0, 1)

	events := p.Events()
	if events[0].Time != 1 || events[1].Time != 2 {
		t.Fatalf("expected events sorted by time, got %+v", events)
	}
	if got := p.ValueAt(1.5); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5 halfway, got %f", got)
	}
}

func TestParamRejectsNegativeTime(t *testing.T) {
	p := NewParam(0)
	if err := p.SetValueAtTime(1, -1); err == nil {
		t.Error("expected error for negative event time")
	}
}
