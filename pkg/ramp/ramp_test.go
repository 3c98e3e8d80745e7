// ABOUTME: Tests for ramp specs
// ABOUTME: Tests validation, the exponential target policy and Apply
package ramp

import (
	"errors"
	"math"
	"testing"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

func TestExponentialRampRejectsNonPositiveTargets(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"zero", 0},
		{"negative", -0.5},
		{"negative zero", math.Copysign(0, -1)},
		{"nan", math.NaN()},
		{"infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParam(1)
			err := p.ExponentialRampToValueAtTime(tt.value, 1)
			if !errors.Is(err, audio.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			if len(p.Events()) != 0 {
				t.Error("expected rejected ramp to leave no event")
			}
		})
	}
}

func TestExponentialRampAcceptsSmallFloors(t *testing.T) {
	p := NewParam(1)
	for _, v := range []float64{0.001, 0.002, 1e-9} {
		if err := p.ExponentialRampToValueAtTime(v, 1); err != nil {
			t.Errorf("expected %g to be accepted, got %v", v, err)
		}
	}
	for _, ev := range p.Events() {
		if ev.Value <= 0 {
			t.Errorf("target was altered: %g", ev.Value)
		}
	}
}

func TestLinearAndSetAcceptZero(t *testing.T) {
	p := NewParam(1)
	if err := p.SetValueAtTime(0, 0); err != nil {
		t.Errorf("set to zero: %v", err)
	}
	if err := p.LinearRampToValueAtTime(0, 1); err != nil {
		t.Errorf("linear ramp to zero: %v", err)
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"empty", Spec{}, false},
		{"envelope", AttackRelease(0.001, 1, 0.04, 0.002, 0.6), false},
		{"sweep", Sweep(680, 220, 0.42), false},
		{"exponential to zero", Spec{{Offset: 0, Value: 1, Interp: Set}, {Offset: 1, Value: 0, Interp: Exponential}}, true},
		{"negative offset", Spec{{Offset: -0.1, Value: 1}}, true},
		{"out of order", Spec{{Offset: 1, Value: 1}, {Offset: 0.5, Value: 2, Interp: Linear}}, true},
		{"unknown interpolation", Spec{{Offset: 0, Value: 1, Interp: Interpolation(7)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if !errors.Is(err, audio.ErrInvalidParameter) {
					t.Errorf("expected ErrInvalidParameter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	p := NewParam(1)
	spec := Spec{
		{Offset: 0, Value: 0.5, Interp: Set},
		{Offset: 0.5, Value: 1, Interp: Linear},
		{Offset: 1, Value: 0, Interp: Exponential},
	}

	err := Apply(p, spec, 10)
	if !errors.Is(err, audio.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if len(p.Events()) != 0 {
		t.Errorf("expected no events after failed Apply, got %d", len(p.Events()))
	}
}

func TestApplyOffsetsFromAnchor(t *testing.T) {
	p := NewParam(0)
	if err := Apply(p, Sweep(2400, 1100, 3.5), 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := p.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Time != 2.5 || events[0].Value != 2400 || events[0].Interp != Set {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Time != 6 || events[1].Value != 1100 || events[1].Interp != Exponential {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestSpecEnd(t *testing.T) {
	if (Spec{}).End() != 0 {
		t.Error("expected empty spec to end at 0")
	}
	if AttackRelease(0.001, 0.22, 0.7, 0.002, 3.6).End() != 3.6 {
		t.Error("expected envelope to end at its release point")
	}
}
