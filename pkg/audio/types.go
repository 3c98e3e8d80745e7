// ABOUTME: Audio type definitions
// ABOUTME: Defines sample buffers, output formats and sample conversion
package audio

import "math"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes an encoded output stream
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// SampleBuffer is a mono run of float samples in [-1,1] at a fixed rate.
// It is never modified after construction.
type SampleBuffer struct {
	samples    []float64
	sampleRate int
}

// NewSampleBuffer wraps samples without copying; the caller gives up ownership
func NewSampleBuffer(samples []float64, sampleRate int) *SampleBuffer {
	return &SampleBuffer{samples: samples, sampleRate: sampleRate}
}

// Len returns the number of samples
func (b *SampleBuffer) Len() int { return len(b.samples) }

// SampleRate returns the sample rate in Hz
func (b *SampleBuffer) SampleRate() int { return b.sampleRate }

// Duration returns the buffer length in seconds
func (b *SampleBuffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// At returns sample i, or 0 outside the buffer
func (b *SampleBuffer) At(i int) float64 {
	if i < 0 || i >= len(b.samples) {
		return 0
	}
	return b.samples[i]
}

// Samples returns a copy of the sample data
func (b *SampleBuffer) Samples() []float64 {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

// Peak returns the largest absolute sample value
func (b *SampleBuffer) Peak() float64 {
	peak := 0.0
	for _, s := range b.samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

func clampUnit(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}

// FloatToInt16 converts a float sample to 16-bit PCM with clipping
func FloatToInt16(f float64) int16 {
	return int16(math.Round(clampUnit(f) * 32767))
}

// FloatToInt24 converts a float sample to a 24-bit value held in an int32
func FloatToInt24(f float64) int32 {
	return int32(math.Round(clampUnit(f) * Max24Bit))
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	// Take lower 24 bits, pack little-endian
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}
