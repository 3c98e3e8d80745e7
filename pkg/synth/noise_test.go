// ABOUTME: Tests for the colored noise generator
// ABOUTME: Tests buffer length, envelope endpoints, determinism and validation
package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// constRandom always returns the same value
type constRandom float64

func (c constRandom) Float64() float64 { return float64(c) }

func TestGenerateNoiseLength(t *testing.T) {
	tests := []struct {
		name       string
		duration   float64
		sampleRate int
	}{
		{"scene bed", 12, 44100},
		{"swell", 3.5, 44100},
		{"short", 0.2, 48000},
		{"fractional", 0.0105, 22050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := GenerateNoise(NoiseSpec{Duration: tt.duration, PeakGain: 0.5, Color: ColorBright}, tt.sampleRate, NewSeededRNG(1))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expected := int(math.Floor(tt.duration * float64(tt.sampleRate)))
			if buf.Len() != expected {
				t.Errorf("expected %d samples, got %d", expected, buf.Len())
			}
			if buf.SampleRate() != tt.sampleRate {
				t.Errorf("expected sample rate %d, got %d", tt.sampleRate, buf.SampleRate())
			}
		})
	}
}

func TestGenerateNoiseEnvelopeEndpoints(t *testing.T) {
	// 0.75 maps to base 0.5, so soft noise is a constant 0.2 times the envelope
	buf, err := GenerateNoise(NoiseSpec{Duration: 1, PeakGain: 1, Color: ColorSoft}, 44100, constRandom(0.75))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := buf.At(0) / 0.2
	if math.Abs(first-1) > 1e-9 {
		t.Errorf("expected first envelope factor 1, got %f", first)
	}

	last := buf.At(buf.Len()-1) / 0.2
	if last > 1e-3 || last < 0 {
		t.Errorf("expected last envelope factor <= 1e-3, got %g", last)
	}
}

func TestNoiseEnvelopeShape(t *testing.T) {
	if NoiseEnvelope(0) != 1 {
		t.Errorf("expected envelope(0)=1, got %f", NoiseEnvelope(0))
	}
	if NoiseEnvelope(1) != 0 {
		t.Errorf("expected envelope(1)=0, got %f", NoiseEnvelope(1))
	}
	prev := NoiseEnvelope(0)
	for i := 1; i <= 100; i++ {
		v := NoiseEnvelope(float64(i) / 100)
		if v >= prev {
			t.Fatalf("envelope not decreasing at t=%.2f: %f >= %f", float64(i)/100, v, prev)
		}
		prev = v
	}
}

func TestGenerateNoiseBrightShimmer(t *testing.T) {
	// 0.5 maps to base 0, leaving only the shimmer
	buf, err := GenerateNoise(NoiseSpec{Duration: 1, PeakGain: 1, Color: ColorBright}, 5600, constRandom(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.At(0) != 0 {
		t.Errorf("expected shimmer to start at 0, got %f", buf.At(0))
	}

	// t = 100/5600 is a quarter of the first shimmer cycle
	expected := shimmerAmplitude * NoiseEnvelope(100.0/5600.0)
	if math.Abs(buf.At(100)-expected) > 1e-9 {
		t.Errorf("expected %f at quarter cycle, got %f", expected, buf.At(100))
	}
}

func TestGenerateNoiseBounded(t *testing.T) {
	for _, color := range []Color{ColorSoft, ColorBright} {
		buf, err := GenerateNoise(NoiseSpec{Duration: 0.5, PeakGain: 1, Color: color}, 44100, NewSeededRNG(99))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		limit := softMix
		if color == ColorBright {
			limit = brightMix + shimmerAmplitude
		}
		if buf.Peak() > limit {
			t.Errorf("%s noise peak %f exceeds %f", color, buf.Peak(), limit)
		}
	}
}

func TestGenerateNoiseDeterministic(t *testing.T) {
	spec := NoiseSpec{Duration: 0.25, PeakGain: 0.18, Color: ColorBright}

	a, err := GenerateNoise(spec, 44100, NewSeededRNG(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateNoise(spec, 44100, NewSeededRNG(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := GenerateNoise(spec, 44100, NewSeededRNG(8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := true
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("same seed produced different sample at %d", i)
		}
		if a.At(i) != c.At(i) {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical buffers")
	}
}

func TestGenerateNoiseInvalid(t *testing.T) {
	tests := []struct {
		name       string
		spec       NoiseSpec
		sampleRate int
	}{
		{"zero duration", NoiseSpec{Duration: 0, PeakGain: 0.1}, 44100},
		{"negative duration", NoiseSpec{Duration: -1, PeakGain: 0.1}, 44100},
		{"nan duration", NoiseSpec{Duration: math.NaN(), PeakGain: 0.1}, 44100},
		{"infinite duration", NoiseSpec{Duration: math.Inf(1), PeakGain: 0.1}, 44100},
		{"zero sample rate", NoiseSpec{Duration: 1, PeakGain: 0.1}, 0},
		{"negative sample rate", NoiseSpec{Duration: 1, PeakGain: 0.1}, -44100},
		{"gain above one", NoiseSpec{Duration: 1, PeakGain: 1.5}, 44100},
		{"negative gain", NoiseSpec{Duration: 1, PeakGain: -0.1}, 44100},
		{"unknown color", NoiseSpec{Duration: 1, PeakGain: 0.1, Color: Color(9)}, 44100},
		{"shorter than a sample", NoiseSpec{Duration: 1e-6, PeakGain: 0.1}, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := GenerateNoise(tt.spec, tt.sampleRate, NewSeededRNG(1))
			if !errors.Is(err, audio.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			if buf != nil {
				t.Error("expected nil buffer on error")
			}
		})
	}
}

func TestColorString(t *testing.T) {
	if ColorBright.String() != "bright" || ColorSoft.String() != "soft" {
		t.Errorf("unexpected color names: %s, %s", ColorBright, ColorSoft)
	}
}
