// ABOUTME: Short transient noise generator
// ABOUTME: Crackle bursts use a sharp power decay, taps a linear one
package synth

import (
	"fmt"
	"math"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Curve selects the envelope of a transient
type Curve int

const (
	CurveLinearDecay Curve = iota // tap
	CurveSharpDecay               // crackle
)

const sharpDecayPower = 2.6

func (c Curve) String() string {
	switch c {
	case CurveLinearDecay:
		return "linear-decay"
	case CurveSharpDecay:
		return "sharp-decay"
	default:
		return "unknown"
	}
}

// Envelope returns the curve's amplitude at normalized position t in [0,1]
func (c Curve) Envelope(t float64) float64 {
	t = clamp01(t)
	if c == CurveSharpDecay {
		return math.Pow(1-t, sharpDecayPower)
	}
	return 1 - t
}

// TransientSpec describes a short noise burst
type TransientSpec struct {
	Duration float64
	PeakGain float64
	Curve    Curve
}

// Validate checks the spec without generating anything
func (s TransientSpec) Validate() error {
	if err := validateDuration(s.Duration); err != nil {
		return err
	}
	if err := validateGain(s.PeakGain); err != nil {
		return err
	}
	if s.Curve != CurveLinearDecay && s.Curve != CurveSharpDecay {
		return fmt.Errorf("transient curve %d: %w", s.Curve, audio.ErrInvalidParameter)
	}
	return nil
}

// GenerateTransient renders uniform noise shaped by the spec's curve
func GenerateTransient(spec TransientSpec, sampleRate int, rng Random) (*audio.SampleBuffer, error) {
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
		samples[i] = Bipolar(rng) * spec.Curve.Envelope(t)
	}

	return audio.NewSampleBuffer(samples, sampleRate), nil
}
