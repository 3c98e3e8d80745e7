// ABOUTME: The ice scene recipe
// ABOUTME: Frost bed, crackle bursts, water drips and an exhale swell
package compose

import (
	"github.com/frostbloom/frostbloom-go/pkg/schedule"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

// IceSceneName is the registry name of IceScene
const IceSceneName = "ice"

// IceScene is the twelve second "whisper of ice" composition. Every layer
// is exported so hosts can tune it before composing.
type IceScene struct {
	SceneDuration float64
	Bed           schedule.NoiseBedSpec
	Crackles      schedule.BurstSeriesSpec
	Drips         schedule.ToneSequenceSpec
	Swell         schedule.SwellSpec
}

// NewIceScene returns the scene with its reference tuning
func NewIceScene() *IceScene {
	const sceneDuration = 12.0

	return &IceScene{
		SceneDuration: sceneDuration,
		Bed: schedule.NoiseBedSpec{
			Label:     "frost",
			Noise:     synth.NoiseSpec{Duration: sceneDuration, PeakGain: 0.18, Color: synth.ColorBright},
			Delay:     schedule.DefaultBedDelay,
			GuardBand: schedule.DefaultGuardBand,
		},
		Crackles: schedule.BurstSeriesSpec{
			Label:     "crackle",
			Bus:       "crackles",
			Series:    schedule.SeriesSpec{Offset: 1.5, Count: 6, Spacing: 1.1, Jitter: 0.6},
			Transient: synth.TransientSpec{Duration: 0.2, PeakGain: 0.22, Curve: synth.CurveSharpDecay},
			Hold:      schedule.DefaultBurstHold,
		},
		Drips: schedule.ToneSequenceSpec{
			Label:    "drip",
			Bus:      "drips",
			BusLevel: 0.18,
			Series:   schedule.SeriesSpec{Offset: 6.5, Count: 3, Spacing: 1.15, Jitter: 0.25},
			Tone:     schedule.DefaultDrip(),
		},
		Swell: func() schedule.SwellSpec {
			s := schedule.DefaultSwell()
			s.Label = "exhale"
			return s
		}(),
	}
}

func (*IceScene) Name() string { return IceSceneName }

func (r *IceScene) Duration() float64 { return r.SceneDuration }

// Compose schedules the bed, crackles, drips and swell against anchor
func (r *IceScene) Compose(s *schedule.Scheduler, anchor float64) error {
	if _, err := s.ScheduleNoiseBed(anchor, r.Bed); err != nil {
		return err
	}
	if _, err := s.ScheduleBurstSeries(anchor, r.Crackles); err != nil {
		return err
	}
	if _, err := s.ScheduleToneSequence(anchor, r.Drips); err != nil {
		return err
	}
	_, err := s.ScheduleSwell(anchor, r.Swell)
	return err
}

// ComposeIceScene composes the reference scene at anchor
func ComposeIceScene(anchor float64, sampleRate int, rng synth.Random) (*schedule.Timeline, error) {
	return Compose(NewIceScene(), anchor, sampleRate, rng)
}
