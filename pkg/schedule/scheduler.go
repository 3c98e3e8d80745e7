// ABOUTME: Scheduler that places sound events relative to an anchor
// ABOUTME: Noise beds, jittered burst series, tonal drip sequences and filtered swells
package schedule

import (
	"fmt"
	"maps"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

const (
	// DefaultBedDelay is how long after the anchor a noise bed starts
	DefaultBedDelay = 0.05

	// DefaultGuardBand keeps a bed's source alive past its buffer
	DefaultGuardBand = 1.0

	// DefaultBurstHold is how long each burst source stays scheduled
	DefaultBurstHold = 0.4
)

// NoiseBedSpec describes one long noise buffer under the whole scene
type NoiseBedSpec struct {
	Label     string
	Bus       string
	Noise     synth.NoiseSpec
	Delay     float64
	GuardBand float64
}

// SeriesSpec places Count events Spacing apart from Offset, each delayed by
// a uniform random amount in [0, Jitter)
type SeriesSpec struct {
	Offset  float64
	Count   int
	Spacing float64
	Jitter  float64
}

func (s SeriesSpec) validate() error {
	if s.Count < 0 {
		return fmt.Errorf("series count %d: %w", s.Count, audio.ErrInvalidParameter)
	}
	for _, v := range []float64{s.Offset, s.Spacing, s.Jitter} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("series timing %g: %w", v, audio.ErrInvalidParameter)
		}
	}
	return nil
}

// BurstSeriesSpec describes a series of transients sharing one bus
type BurstSeriesSpec struct {
	Label     string
	Bus       string
	Series    SeriesSpec
	Transient synth.TransientSpec
	Hold      float64
}

// ToneSpec describes one oscillator drip: an exponential frequency glide
// under an exponential attack and release
type ToneSpec struct {
	Waveform     synth.Waveform
	StartFreq    float64
	EndFreq      float64
	Glide        float64
	Floor        float64
	Peak         float64
	Attack       float64
	ReleaseFloor float64
	Release      float64
	Length       float64
}

// DefaultDrip is a sine falling from 680Hz to 220Hz
func DefaultDrip() ToneSpec {
	return ToneSpec{
		Waveform:     synth.WaveSine,
		StartFreq:    680,
		EndFreq:      220,
		Glide:        0.42,
		Floor:        0.001,
		Peak:         1,
		Attack:       0.04,
		ReleaseFloor: 0.002,
		Release:      0.6,
		Length:       0.65,
	}
}

func (t ToneSpec) frequency() ramp.Spec {
	return ramp.Sweep(t.StartFreq, t.EndFreq, t.Glide)
}

func (t ToneSpec) gain() ramp.Spec {
	return ramp.AttackRelease(t.Floor, t.Peak, t.Attack, t.ReleaseFloor, t.Release)
}

func (t ToneSpec) validate() error {
	if t.Glide <= 0 || t.Attack <= 0 || t.Length <= 0 {
		return fmt.Errorf("tone timing: %w", audio.ErrInvalidParameter)
	}
	if t.Release < t.Attack {
		return fmt.Errorf("tone release %g before attack %g: %w", t.Release, t.Attack, audio.ErrInvalidParameter)
	}
	if err := t.frequency().Validate(); err != nil {
		return fmt.Errorf("tone frequency: %w", err)
	}
	if err := t.gain().Validate(); err != nil {
		return fmt.Errorf("tone gain: %w", err)
	}
	return nil
}

// ToneSequenceSpec describes a series of tones on a dedicated bus
type ToneSequenceSpec struct {
	Label    string
	Bus      string
	BusLevel float64
	Series   SeriesSpec
	Tone     ToneSpec
}

// SwellSpec describes a noise buffer under a falling lowpass and an
// attack/release envelope peaking at Noise.PeakGain
type SwellSpec struct {
	Label        string
	Bus          string
	Offset       float64
	Noise        synth.NoiseSpec
	CutoffStart  float64
	CutoffEnd    float64
	Floor        float64
	Attack       float64
	ReleaseFloor float64
	ReleaseAt    float64
	Length       float64
}

// DefaultSwell is the exhale: 3.5s of soft noise, cutoff 2400Hz to 1100Hz
func DefaultSwell() SwellSpec {
	return SwellSpec{
		Label:        "swell",
		Offset:       2.5,
		Noise:        synth.NoiseSpec{Duration: 3.5, PeakGain: 0.22, Color: synth.ColorSoft},
		CutoffStart:  2400,
		CutoffEnd:    1100,
		Floor:        0.001,
		Attack:       0.7,
		ReleaseFloor: 0.002,
		ReleaseAt:    3.6,
		Length:       4.1,
	}
}

func (s SwellSpec) cutoff() ramp.Spec {
	return ramp.Sweep(s.CutoffStart, s.CutoffEnd, s.Noise.Duration)
}

func (s SwellSpec) gain() ramp.Spec {
	return ramp.AttackRelease(s.Floor, s.Noise.PeakGain, s.Attack, s.ReleaseFloor, s.ReleaseAt)
}

// Scheduler accumulates events for one composition. It is not safe for
// concurrent use.
type Scheduler struct {
	sampleRate int
	rng        synth.Random
	anchor     float64
	anchored   bool
	events     []Event
	buses      map[string]float64
}

// NewScheduler creates a scheduler. A nil rng uses the system random source.
func NewScheduler(sampleRate int, rng synth.Random) (*Scheduler, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", sampleRate, audio.ErrInvalidParameter)
	}
	if rng == nil {
		rng = synth.SystemRandom()
	}
	return &Scheduler{
		sampleRate: sampleRate,
		rng:        rng,
		buses:      make(map[string]float64),
	}, nil
}

// SampleRate returns the rate buffers are generated at
func (s *Scheduler) SampleRate() int { return s.sampleRate }

// DeclareBus creates or updates a shared gain stage
func (s *Scheduler) DeclareBus(name string, level float64) error {
	if name == "" {
		return fmt.Errorf("bus needs a name: %w", audio.ErrInvalidParameter)
	}
	if !finite(level) || level < 0 {
		return fmt.Errorf("bus %q level %g: %w", name, level, audio.ErrInvalidParameter)
	}
	s.buses[name] = level
	return nil
}

// Timeline returns a snapshot of everything scheduled so far. Its anchor is
// the earliest anchor passed to any Schedule call.
func (s *Scheduler) Timeline() *Timeline {
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return &Timeline{
		Anchor: s.anchor,
		Events: events,
		Buses:  maps.Clone(s.buses),
	}
}

// ScheduleNoiseBed places one noise buffer from anchor+Delay until
// anchor+duration+GuardBand
func (s *Scheduler) ScheduleNoiseBed(anchor float64, spec NoiseBedSpec) (Event, error) {
	if err := checkAnchor(anchor); err != nil {
		return Event{}, err
	}
	if !finite(spec.Delay) || spec.Delay < 0 || !finite(spec.GuardBand) || spec.GuardBand < 0 {
		return Event{}, fmt.Errorf("noise bed timing: %w", audio.ErrInvalidParameter)
	}
	if err := s.ensureBus(spec.Bus, 1); err != nil {
		return Event{}, err
	}

	buf, err := synth.GenerateNoise(spec.Noise, s.sampleRate, s.rng)
	if err != nil {
		return Event{}, fmt.Errorf("noise bed: %w", err)
	}

	ev := Event{
		Label: labelOr(spec.Label, "bed"),
		Bus:   spec.Bus,
		Start: anchor + spec.Delay,
		Stop:  anchor + spec.Noise.Duration + spec.GuardBand,
		Voice: Voice{
			Buffer: buf,
			Gain:   ramp.Constant(spec.Noise.PeakGain),
		},
	}
	if ev.Stop < ev.Start {
		ev.Stop = ev.Start + buf.Duration()
	}
	s.add(anchor, ev)
	return ev, nil
}

// ScheduleBurstSeries places Count transients, each with its own buffer,
// all routed through one bus
func (s *Scheduler) ScheduleBurstSeries(anchor float64, spec BurstSeriesSpec) ([]Event, error) {
	if err := checkAnchor(anchor); err != nil {
		return nil, err
	}
	if err := spec.Series.validate(); err != nil {
		return nil, err
	}
	if err := spec.Transient.Validate(); err != nil {
		return nil, err
	}
	hold := spec.Hold
	if hold == 0 {
		hold = spec.Transient.Duration
	}
	if !finite(hold) || hold < 0 {
		return nil, fmt.Errorf("burst hold %g: %w", hold, audio.ErrInvalidParameter)
	}
	bus := labelOr(spec.Bus, "bursts")
	if err := s.ensureBus(bus, 1); err != nil {
		return nil, err
	}

	label := labelOr(spec.Label, "burst")
	events := make([]Event, 0, spec.Series.Count)
	for i := 0; i < spec.Series.Count; i++ {
		start := anchor + spec.Series.Offset + float64(i)*spec.Series.Spacing + synth.Uniform(s.rng, 0, spec.Series.Jitter)
		buf, err := synth.GenerateTransient(spec.Transient, s.sampleRate, s.rng)
		if err != nil {
			return nil, fmt.Errorf("burst %d: %w", i, err)
		}
		events = append(events, Event{
			Label: fmt.Sprintf("%s-%d", label, i),
			Bus:   bus,
			Start: start,
			Stop:  start + hold,
			Voice: Voice{
				Buffer: buf,
				Gain:   ramp.Constant(spec.Transient.PeakGain),
			},
		})
	}

	for _, ev := range events {
		s.add(anchor, ev)
	}
	return events, nil
}

// ScheduleToneSequence places Count oscillator tones on a dedicated bus at
// BusLevel
func (s *Scheduler) ScheduleToneSequence(anchor float64, spec ToneSequenceSpec) ([]Event, error) {
	if err := checkAnchor(anchor); err != nil {
		return nil, err
	}
	if err := spec.Series.validate(); err != nil {
		return nil, err
	}
	if err := spec.Tone.validate(); err != nil {
		return nil, err
	}
	bus := labelOr(spec.Bus, "tones")
	if err := s.DeclareBus(bus, spec.BusLevel); err != nil {
		return nil, err
	}

	label := labelOr(spec.Label, "tone")
	events := make([]Event, 0, spec.Series.Count)
	for i := 0; i < spec.Series.Count; i++ {
		start := anchor + spec.Series.Offset + float64(i)*spec.Series.Spacing + synth.Uniform(s.rng, 0, spec.Series.Jitter)
		ev := Event{
			Label: fmt.Sprintf("%s-%d", label, i),
			Bus:   bus,
			Start: start,
			Stop:  start + spec.Tone.Length,
			Voice: Voice{
				Waveform:  spec.Tone.Waveform,
				Frequency: spec.Tone.frequency(),
				Gain:      spec.Tone.gain(),
			},
		}
		events = append(events, ev)
		s.add(anchor, ev)
	}
	return events, nil
}

// ScheduleSwell places one noise buffer behind a lowpass whose cutoff falls
// across the buffer
func (s *Scheduler) ScheduleSwell(anchor float64, spec SwellSpec) (Event, error) {
	if err := checkAnchor(anchor); err != nil {
		return Event{}, err
	}
	if !finite(spec.Offset) || spec.Offset < 0 || !finite(spec.Length) || spec.Length <= 0 {
		return Event{}, fmt.Errorf("swell timing: %w", audio.ErrInvalidParameter)
	}
	if spec.Attack <= 0 || spec.ReleaseAt < spec.Attack {
		return Event{}, fmt.Errorf("swell envelope: %w", audio.ErrInvalidParameter)
	}
	if err := spec.Noise.Validate(); err != nil {
		return Event{}, err
	}
	if err := spec.cutoff().Validate(); err != nil {
		return Event{}, fmt.Errorf("swell cutoff: %w", err)
	}
	if err := spec.gain().Validate(); err != nil {
		return Event{}, fmt.Errorf("swell gain: %w", err)
	}
	if err := s.ensureBus(spec.Bus, 1); err != nil {
		return Event{}, err
	}

	buf, err := synth.GenerateNoise(spec.Noise, s.sampleRate, s.rng)
	if err != nil {
		return Event{}, fmt.Errorf("swell: %w", err)
	}

	start := anchor + spec.Offset
	ev := Event{
		Label: labelOr(spec.Label, "swell"),
		Bus:   spec.Bus,
		Start: start,
		Stop:  start + spec.Length,
		Voice: Voice{
			Buffer:  buf,
			Gain:    spec.gain(),
			Lowpass: spec.cutoff(),
		},
	}
	s.add(anchor, ev)
	return ev, nil
}

func (s *Scheduler) add(anchor float64, ev Event) {
	if !s.anchored || anchor < s.anchor {
		s.anchor = anchor
		s.anchored = true
	}
	s.events = append(s.events, ev)
}

// ensureBus declares a bus at level unless it exists; the empty name is the destination
func (s *Scheduler) ensureBus(name string, level float64) error {
	if name == "" {
		return nil
	}
	if _, ok := s.buses[name]; ok {
		return nil
	}
	return s.DeclareBus(name, level)
}

func checkAnchor(anchor float64) error {
	if !finite(anchor) || anchor < 0 {
		return fmt.Errorf("anchor %g: %w", anchor, audio.ErrInvalidParameter)
	}
	return nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
