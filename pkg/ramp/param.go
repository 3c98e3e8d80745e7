// ABOUTME: Software automation timeline for a scalar parameter
// ABOUTME: Evaluates set/linear/exponential events as continuous curves
package ramp

import (
	"fmt"
	"math"
	"sort"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Event is one scheduled change on a Param
type Event struct {
	Time   float64
	Value  float64
	Interp Interpolation
}

// Param holds a default value and a time-sorted list of events.
// Not safe for concurrent use.
type Param struct {
	defaultValue float64
	events       []Event
}

// NewParam creates a parameter that reads defaultValue until its first event
func NewParam(defaultValue float64) *Param {
	return &Param{defaultValue: defaultValue}
}

// SetValueAtTime jumps to value at the given time
func (p *Param) SetValueAtTime(value, at float64) error {
	return p.insert(Event{Time: at, Value: value, Interp: Set})
}

// LinearRampToValueAtTime ramps linearly from the previous event to value
func (p *Param) LinearRampToValueAtTime(value, at float64) error {
	return p.insert(Event{Time: at, Value: value, Interp: Linear})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to value.
// value must be strictly positive.
func (p *Param) ExponentialRampToValueAtTime(value, at float64) error {
	return p.insert(Event{Time: at, Value: value, Interp: Exponential})
}

func (p *Param) insert(e Event) error {
	if math.IsNaN(e.Time) || math.IsInf(e.Time, 0) || e.Time < 0 {
		return fmt.Errorf("event time %g: %w", e.Time, audio.ErrInvalidParameter)
	}
	if err := ValidateTarget(e.Interp, e.Value); err != nil {
		return err
	}
	// Events at equal times keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > e.Time })
	p.events = append(p.events, Event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
	return nil
}

// Events returns a copy of the scheduled events
func (p *Param) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Default returns the value before any event
func (p *Param) Default() float64 {
	return p.defaultValue
}

// ValueAt evaluates the automation curve at time t.
//
// A ramp interpolates from the preceding event's value and time. A ramp with
// no preceding event behaves as a jump at its own time. An exponential ramp
// whose starting value is not positive holds that value until the ramp ends.
func (p *Param) ValueAt(t float64) float64 {
	// index of first event strictly after t
	next := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t })

	if next < len(p.events) && next > 0 {
		ev := p.events[next]
		if ev.Interp != Set {
			prev := p.events[next-1]
			return interpolate(prev.Value, prev.Time, ev.Value, ev.Time, ev.Interp, t)
		}
	}

	if next == 0 {
		return p.defaultValue
	}
	return p.events[next-1].Value
}

func interpolate(v0, t0, v1, t1 float64, interp Interpolation, t float64) float64 {
	span := t1 - t0
	if span <= 0 {
		return v1
	}
	frac := (t - t0) / span
	switch interp {
	case Linear:
		return v0 + (v1-v0)*frac
	case Exponential:
		if v0 <= 0 {
			return v0
		}
		return v0 * math.Pow(v1/v0, frac)
	default:
		return v0
	}
}
