// ABOUTME: Tests for graph realization and offline rendering
// ABOUTME: Checks node counts, cleanup on failure and rendered event placement
package schedule

import (
	"errors"
	"math"
	"testing"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/render"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

var errNoFilters = errors.New("no filters available")

// filterlessMixer refuses to create lowpass filters
type filterlessMixer struct {
	*render.Mixer
}

func (filterlessMixer) NewLowpass() (render.Filter, error) {
	return nil, errNoFilters
}

func ones(n, sampleRate int) *audio.SampleBuffer {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return audio.NewSampleBuffer(s, sampleRate)
}

func sceneTimeline(t *testing.T) *Timeline {
	t.Helper()
	s := newScheduler(t, synth.NewSeededRNG(7))
	if _, err := s.ScheduleNoiseBed(0, NoiseBedSpec{
		Noise:     synth.NoiseSpec{Duration: 1, PeakGain: 0.18, Color: synth.ColorBright},
		Delay:     DefaultBedDelay,
		GuardBand: DefaultGuardBand,
	}); err != nil {
		t.Fatalf("ScheduleNoiseBed failed: %v", err)
	}
	if _, err := s.ScheduleToneSequence(0, ToneSequenceSpec{
		Bus:      "drips",
		BusLevel: 0.18,
		Series:   SeriesSpec{Offset: 0.5, Count: 2, Spacing: 0.5},
		Tone:     DefaultDrip(),
	}); err != nil {
		t.Fatalf("ScheduleToneSequence failed: %v", err)
	}
	if _, err := s.ScheduleSwell(0, DefaultSwell()); err != nil {
		t.Fatalf("ScheduleSwell failed: %v", err)
	}
	return s.Timeline()
}

func TestRealizeBuildsGraph(t *testing.T) {
	m, err := render.NewMixer(8000, 0)
	if err != nil {
		t.Fatalf("NewMixer failed: %v", err)
	}
	tl := sceneTimeline(t)

	g, err := Realize(m, tl)
	if err != nil {
		t.Fatalf("Realize failed: %v", err)
	}

	// 1 bus + bed (source, gain) + 2 drips (osc, gain) + swell (source, lowpass, gain)
	if g.Nodes() != 10 {
		t.Errorf("expected 10 nodes, got %d", g.Nodes())
	}
	// bus->dest, bed 2 edges, drips 2 edges each, swell 3 edges
	if m.Connections() != 10 {
		t.Errorf("expected 10 connections, got %d", m.Connections())
	}

	g.Teardown()
	g.Teardown()
	if g.Nodes() != 0 {
		t.Errorf("expected no nodes after Teardown, got %d", g.Nodes())
	}
	if m.Connections() != 0 {
		t.Errorf("expected no connections after Teardown, got %d", m.Connections())
	}
}

func TestRealizeRejectsInvalidTimeline(t *testing.T) {
	m, _ := render.NewMixer(8000, 0)
	tl := &Timeline{Anchor: 1, Events: []Event{{
		Label: "early",
		Start: 0,
		Stop:  1,
		Voice: Voice{Buffer: ones(10, 8000), Gain: ramp.Constant(1)},
	}}}

	if _, err := Realize(m, tl); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if m.Connections() != 0 {
		t.Errorf("expected no connections, got %d", m.Connections())
	}
}

func TestRealizeFailureLeavesNothingConnected(t *testing.T) {
	m, _ := render.NewMixer(8000, 0)
	c := filterlessMixer{Mixer: m}

	_, err := Realize(c, sceneTimeline(t))
	if !errors.Is(err, errNoFilters) {
		t.Fatalf("expected errNoFilters, got %v", err)
	}
	if m.Connections() != 0 {
		t.Errorf("expected partial graph to be disconnected, got %d connections", m.Connections())
	}
}

func TestRenderTimelinePlacesEvents(t *testing.T) {
	tl := &Timeline{
		Anchor: 0,
		Buses:  map[string]float64{"half": 0.5},
		Events: []Event{{
			Label: "block",
			Bus:   "half",
			Start: 0.1,
			Stop:  0.2,
			Voice: Voice{Buffer: ones(50, 100), Gain: ramp.Constant(1)},
		}},
	}

	buf, err := RenderTimeline(tl, 100)
	if err != nil {
		t.Fatalf("RenderTimeline failed: %v", err)
	}
	if buf.Len() < 20 {
		t.Fatalf("expected at least 20 frames, got %d", buf.Len())
	}
	for i := 0; i < 20; i++ {
		want := 0.0
		if i >= 10 {
			want = 0.5
		}
		if buf.At(i) != want {
			t.Errorf("frame %d: expected %f, got %f", i, want, buf.At(i))
		}
	}
}

func TestRenderTimelineDripLevel(t *testing.T) {
	s := newScheduler(t, fixedRandom(0))
	if _, err := s.ScheduleToneSequence(0, ToneSequenceSpec{
		Bus:      "drips",
		BusLevel: 0.18,
		Series:   SeriesSpec{Count: 1},
		Tone:     DefaultDrip(),
	}); err != nil {
		t.Fatalf("ScheduleToneSequence failed: %v", err)
	}

	buf, err := RenderTimeline(s.Timeline(), 8000)
	if err != nil {
		t.Fatalf("RenderTimeline failed: %v", err)
	}
	if math.Abs(buf.Duration()-0.65) > 0.01 {
		t.Errorf("expected ~0.65s of audio, got %f", buf.Duration())
	}
	peak := buf.Peak()
	if peak < 0.1 || peak > 0.18+1e-9 {
		t.Errorf("expected drip peak in (0.1, 0.18], got %f", peak)
	}
}

func TestRenderTimelineRejectsBadRate(t *testing.T) {
	if _, err := RenderTimeline(&Timeline{}, 0); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
