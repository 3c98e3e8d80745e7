// ABOUTME: PCM audio encoder
// ABOUTME: Quantizes float samples to 16-bit or 24-bit little endian PCM
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCMEncoder creates a 16-bit or 24-bit PCM encoder
func NewPCMEncoder(bitDepth int) (*PCMEncoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	return &PCMEncoder{bitDepth: bitDepth}, nil
}

// BitDepth returns 16 or 24
func (e *PCMEncoder) BitDepth() int {
	return e.bitDepth
}

// BytesPerSample is 2 for 16-bit and 3 for 24-bit output
func (e *PCMEncoder) BytesPerSample() int {
	return e.bitDepth / 8
}

// Quantize clips sample to [-1,1] and scales it to the encoder's bit depth
func (e *PCMEncoder) Quantize(sample float64) int {
	if e.bitDepth == 24 {
		return int(audio.FloatToInt24(sample))
	}
	return int(audio.FloatToInt16(sample))
}

// EncodeTo writes as many samples as fit into dst and returns the number of
// bytes written. It does not allocate.
func (e *PCMEncoder) EncodeTo(dst []byte, samples []float64) int {
	size := e.BytesPerSample()
	n := len(dst) / size
	if n > len(samples) {
		n = len(samples)
	}

	for i, sample := range samples[:n] {
		if e.bitDepth == 24 {
			bytes := audio.SampleTo24Bit(int32(e.Quantize(sample)))
			copy(dst[i*3:], bytes[:])
		} else {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(e.Quantize(sample))))
		}
	}
	return n * size
}
