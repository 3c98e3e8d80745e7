// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used when exporting at a rate other than the synthesis rate
package resample

import (
	"fmt"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate int) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("resample %d -> %d: %w", inputRate, outputRate, audio.ErrInvalidParameter)
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}, nil
}

// OutputSamplesNeeded calculates how many output samples a whole input of
// inputSamples produces
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	if inputSamples <= 0 {
		return 0
	}
	return int(float64(inputSamples-1)/r.ratio) + 1
}

// Resample converts input to the output rate and returns the number of
// samples written. The last input sample is held past the end.
func (r *Resampler) Resample(input []float64, output []float64) int {
	if len(input) == 0 {
		return 0
	}

	n := min(len(output), r.OutputSamplesNeeded(len(input)))
	last := len(input) - 1
	for outIdx := 0; outIdx < n; outIdx++ {
		inputPos := float64(outIdx) * r.ratio
		inputIdx := int(inputPos)
		if inputIdx >= last {
			output[outIdx] = input[last]
			continue
		}

		// Linear interpolation
		frac := inputPos - float64(inputIdx)
		output[outIdx] = input[inputIdx]*(1.0-frac) + input[inputIdx+1]*frac
	}
	return n
}

// Buffer returns buf at outputRate, or buf itself when the rates match
func Buffer(buf *audio.SampleBuffer, outputRate int) (*audio.SampleBuffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("resample needs a buffer: %w", audio.ErrInvalidParameter)
	}
	if buf.SampleRate() == outputRate {
		return buf, nil
	}

	r, err := New(buf.SampleRate(), outputRate)
	if err != nil {
		return nil, err
	}
	out := make([]float64, r.OutputSamplesNeeded(buf.Len()))
	r.Resample(buf.Samples(), out)
	return audio.NewSampleBuffer(out, outputRate), nil
}
