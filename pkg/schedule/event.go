// ABOUTME: Scheduled events and timelines
// ABOUTME: Immutable event records plus timeline validation and queries
package schedule

import (
	"fmt"
	"math"
	"sort"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

// Voice holds the synthesis instructions for one event. A voice plays
// Buffer when it is set and an oscillator otherwise. Ramp offsets are
// relative to the event's start time.
type Voice struct {
	Buffer    *audio.SampleBuffer
	Waveform  synth.Waveform
	Frequency ramp.Spec
	Gain      ramp.Spec
	Lowpass   ramp.Spec
}

// IsOscillator reports whether the voice is synthesized by an oscillator
func (v Voice) IsOscillator() bool {
	return v.Buffer == nil
}

// Validate checks the voice's ramps and source
func (v Voice) Validate() error {
	if v.IsOscillator() && len(v.Frequency) == 0 {
		return fmt.Errorf("oscillator voice needs a frequency ramp: %w", audio.ErrInvalidParameter)
	}
	if len(v.Gain) == 0 {
		return fmt.Errorf("voice needs a gain ramp: %w", audio.ErrInvalidParameter)
	}
	if err := v.Frequency.Validate(); err != nil {
		return fmt.Errorf("frequency: %w", err)
	}
	if err := v.Gain.Validate(); err != nil {
		return fmt.Errorf("gain: %w", err)
	}
	if err := v.Lowpass.Validate(); err != nil {
		return fmt.Errorf("lowpass: %w", err)
	}
	return nil
}

// Event is one sound placed at absolute times. Bus names a shared gain stage;
// an empty Bus routes straight to the destination.
type Event struct {
	Label string
	Bus   string
	Start float64
	Stop  float64
	Voice Voice
}

// Duration is the scheduled playing time
func (e Event) Duration() float64 {
	return e.Stop - e.Start
}

// Timeline is a snapshot of scheduled events sharing one anchor
type Timeline struct {
	Anchor float64
	Events []Event
	Buses  map[string]float64
}

// End returns the latest stop time, or the anchor for an empty timeline
func (tl *Timeline) End() float64 {
	end := tl.Anchor
	for _, e := range tl.Events {
		end = math.Max(end, e.Stop)
	}
	return end
}

// ByBus groups events by bus name, preserving schedule order
func (tl *Timeline) ByBus() map[string][]Event {
	groups := make(map[string][]Event)
	for _, e := range tl.Events {
		groups[e.Bus] = append(groups[e.Bus], e)
	}
	return groups
}

// BusNames returns declared bus names in sorted order
func (tl *Timeline) BusNames() []string {
	names := make([]string, 0, len(tl.Buses))
	for name := range tl.Buses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the timeline invariants: every event starts at or after
// the anchor, stops at or after its start, has a valid voice and routes to a
// declared bus.
func (tl *Timeline) Validate() error {
	if !finite(tl.Anchor) || tl.Anchor < 0 {
		return fmt.Errorf("anchor %g: %w", tl.Anchor, audio.ErrInvalidParameter)
	}
	for name, level := range tl.Buses {
		if name == "" || !finite(level) || level < 0 {
			return fmt.Errorf("bus %q level %g: %w", name, level, audio.ErrInvalidParameter)
		}
	}
	for _, e := range tl.Events {
		if !finite(e.Start) || !finite(e.Stop) {
			return fmt.Errorf("event %s times: %w", e.Label, audio.ErrInvalidParameter)
		}
		if e.Start < tl.Anchor {
			return fmt.Errorf("event %s starts at %.3fs before anchor %.3fs: %w", e.Label, e.Start, tl.Anchor, audio.ErrInvalidParameter)
		}
		if e.Stop < e.Start {
			return fmt.Errorf("event %s stops at %.3fs before it starts at %.3fs: %w", e.Label, e.Stop, e.Start, audio.ErrInvalidParameter)
		}
		if e.Bus != "" {
			if _, ok := tl.Buses[e.Bus]; !ok {
				return fmt.Errorf("event %s routes to undeclared bus %q: %w", e.Label, e.Bus, audio.ErrInvalidParameter)
			}
		}
		if err := e.Voice.Validate(); err != nil {
			return fmt.Errorf("event %s: %w", e.Label, err)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
