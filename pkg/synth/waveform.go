// ABOUTME: Oscillator waveforms and the tonal sweep generator
// ABOUTME: Sweeps glide exponentially between two frequencies
package synth

import (
	"fmt"
	"math"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Waveform is an oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	default:
		return "unknown"
	}
}

// Sample returns the waveform value at phase in [0,1)
func (w Waveform) Sample(phase float64) float64 {
	phase -= math.Floor(phase)
	switch w {
	case WaveTriangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case WaveSawtooth:
		return 2*phase - 1
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// SweepSpec describes a tone gliding from StartFreq to EndFreq
type SweepSpec struct {
	Waveform  Waveform
	StartFreq float64 // Hz, > 0
	EndFreq   float64 // Hz, > 0
	Duration  float64
}

// Validate checks the spec without generating anything
func (s SweepSpec) Validate() error {
	if err := validateDuration(s.Duration); err != nil {
		return err
	}
	if !(s.StartFreq > 0) || !(s.EndFreq > 0) {
		return fmt.Errorf("sweep %g->%gHz: %w", s.StartFreq, s.EndFreq, audio.ErrInvalidParameter)
	}
	return nil
}

// FrequencyAt returns the instantaneous frequency at time t seconds into the sweep
func (s SweepSpec) FrequencyAt(t float64) float64 {
	p := clamp01(t / s.Duration)
	return s.StartFreq * math.Pow(s.EndFreq/s.StartFreq, p)
}

// GenerateSweep renders the sweep at unit amplitude
func GenerateSweep(spec SweepSpec, sampleRate int) (*audio.SampleBuffer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	n, err := bufferLength(spec.Duration, sampleRate)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, n)
	phase := 0.0
	for i := range samples {
		samples[i] = spec.Waveform.Sample(phase)
		phase += spec.FrequencyAt(float64(i)/float64(sampleRate)) / float64(sampleRate)
		phase -= math.Floor(phase)
	}

	return audio.NewSampleBuffer(samples, sampleRate), nil
}
