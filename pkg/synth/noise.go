// ABOUTME: Colored noise generator with a decay envelope
// ABOUTME: Bright noise carries a 14-cycle shimmer, soft noise is attenuated
package synth

import (
	"fmt"
	"math"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Color selects the spectral profile of generated noise
type Color int

const (
	ColorSoft Color = iota
	ColorBright
)

func (c Color) String() string {
	switch c {
	case ColorSoft:
		return "soft"
	case ColorBright:
		return "bright"
	default:
		return "unknown"
	}
}

const (
	shimmerCycles    = 14
	shimmerAmplitude = 0.25
	brightMix        = 0.7
	softMix          = 0.4
	noiseDecay       = 1.35
)

// NoiseSpec describes a noise buffer
type NoiseSpec struct {
	Duration float64 // seconds, > 0
	PeakGain float64 // 0-1, applied as node gain when scheduled
	Color    Color
}

// Validate checks the spec without generating anything
func (s NoiseSpec) Validate() error {
	if err := validateDuration(s.Duration); err != nil {
		return err
	}
	if err := validateGain(s.PeakGain); err != nil {
		return err
	}
	if s.Color != ColorSoft && s.Color != ColorBright {
		return fmt.Errorf("noise color %d: %w", s.Color, audio.ErrInvalidParameter)
	}
	return nil
}

// NoiseEnvelope is the decay applied across a noise buffer, t in [0,1]
func NoiseEnvelope(t float64) float64 {
	return math.Pow(1-clamp01(t), noiseDecay)
}

// GenerateNoise renders floor(duration*sampleRate) samples of colored noise.
func GenerateNoise(spec NoiseSpec, sampleRate int, rng Random) (*audio.SampleBuffer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	n, err := bufferLength(spec.Duration, sampleRate)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = SystemRandom()
	}

	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(n)
		base := Bipolar(rng)

		var tone float64
		if spec.Color == ColorBright {
			shimmer := math.Sin(2*math.Pi*shimmerCycles*t) * shimmerAmplitude
			tone = base*brightMix + shimmer
		} else {
			tone = base * softMix
		}

		samples[i] = tone * NoiseEnvelope(t)
	}

	return audio.NewSampleBuffer(samples, sampleRate), nil
}

func bufferLength(duration float64, sampleRate int) (int, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("sample rate %d: %w", sampleRate, audio.ErrInvalidParameter)
	}
	n := int(math.Floor(duration * float64(sampleRate)))
	if n < 1 {
		return 0, fmt.Errorf("duration %gs is shorter than one sample at %dHz: %w",
			duration, sampleRate, audio.ErrInvalidParameter)
	}
	return n, nil
}

func validateDuration(d float64) error {
	if !(d > 0) || math.IsInf(d, 0) {
		return fmt.Errorf("duration %g: %w", d, audio.ErrInvalidParameter)
	}
	return nil
}

func validateGain(g float64) error {
	if !(g >= 0 && g <= 1) {
		return fmt.Errorf("peak gain %g outside [0,1]: %w", g, audio.ErrInvalidParameter)
	}
	return nil
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
