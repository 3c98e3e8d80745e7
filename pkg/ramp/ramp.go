// ABOUTME: Ramp specs and validation
// ABOUTME: A Spec is an ordered list of timed targets applied relative to an anchor
package ramp

import (
	"fmt"
	"math"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Interpolation selects how a parameter reaches a point's value
type Interpolation int

const (
	Set Interpolation = iota // jump at the point's time
	Linear
	Exponential
)

func (i Interpolation) String() string {
	switch i {
	case Set:
		return "set"
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// Point is one automation target, Offset seconds after the anchor
type Point struct {
	Offset float64
	Value  float64
	Interp Interpolation
}

// Spec is an ordered sequence of points for a single parameter
type Spec []Point

// Automatable is a parameter that accepts scheduled automation
type Automatable interface {
	SetValueAtTime(value, at float64) error
	LinearRampToValueAtTime(value, at float64) error
	ExponentialRampToValueAtTime(value, at float64) error
}

// Validate checks every point; offsets must be finite, non-negative and non-decreasing
func (s Spec) Validate() error {
	prev := 0.0
	for i, p := range s {
		if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) || p.Offset < 0 {
			return fmt.Errorf("ramp point %d offset %g: %w", i, p.Offset, audio.ErrInvalidParameter)
		}
		if p.Offset < prev {
			return fmt.Errorf("ramp point %d offset %g before %g: %w", i, p.Offset, prev, audio.ErrInvalidParameter)
		}
		prev = p.Offset
		if err := ValidateTarget(p.Interp, p.Value); err != nil {
			return fmt.Errorf("ramp point %d: %w", i, err)
		}
	}
	return nil
}

// End returns the offset of the last point, or 0 for an empty spec
func (s Spec) End() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Offset
}

// ValidateTarget checks a single target value for the given interpolation
func ValidateTarget(interp Interpolation, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("target %g: %w", value, audio.ErrInvalidParameter)
	}
	switch interp {
	case Set, Linear:
		return nil
	case Exponential:
		if value <= 0 {
			return fmt.Errorf("exponential ramp to non-positive target %g: %w", value, audio.ErrInvalidParameter)
		}
		return nil
	default:
		return fmt.Errorf("interpolation %d: %w", interp, audio.ErrInvalidParameter)
	}
}

// Apply validates the whole spec, then schedules each point at anchor+Offset.
// Nothing is applied if validation fails.
func Apply(p Automatable, spec Spec, anchor float64) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	for _, pt := range spec {
		at := anchor + pt.Offset
		var err error
		switch pt.Interp {
		case Set:
			err = p.SetValueAtTime(pt.Value, at)
		case Linear:
			err = p.LinearRampToValueAtTime(pt.Value, at)
		case Exponential:
			err = p.ExponentialRampToValueAtTime(pt.Value, at)
		}
		if err != nil {
			return fmt.Errorf("apply %s ramp at %.3fs: %w", pt.Interp, at, err)
		}
	}
	return nil
}

// AttackRelease builds an exponential envelope: floor at 0, peak after attack,
// releaseFloor at releaseAt.
func AttackRelease(floor, peak, attack, releaseFloor, releaseAt float64) Spec {
	return Spec{
		{Offset: 0, Value: floor, Interp: Set},
		{Offset: attack, Value: peak, Interp: Exponential},
		{Offset: releaseAt, Value: releaseFloor, Interp: Exponential},
	}
}

// Sweep builds an exponential glide from one value to another
func Sweep(from, to, over float64) Spec {
	return Spec{
		{Offset: 0, Value: from, Interp: Set},
		{Offset: over, Value: to, Interp: Exponential},
	}
}

// Constant holds a single value from the anchor on
func Constant(value float64) Spec {
	return Spec{{Offset: 0, Value: value, Interp: Set}}
}
