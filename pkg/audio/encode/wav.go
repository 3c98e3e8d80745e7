// ABOUTME: WAV export of rendered buffers
// ABOUTME: Writes mono PCM WAV files through go-audio/wav
package encode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

const wavFormatPCM = 1

// WriteWAV writes buf as a mono PCM WAV file at bitDepth 16 or 24
func WriteWAV(w io.WriteSeeker, buf *audio.SampleBuffer, bitDepth int) error {
	if buf == nil || buf.SampleRate() <= 0 {
		return fmt.Errorf("wav export needs a buffer: %w", audio.ErrInvalidParameter)
	}
	pcm, err := NewPCMEncoder(bitDepth)
	if err != nil {
		return err
	}

	data := make([]int, buf.Len())
	for i := range data {
		data[i] = pcm.Quantize(buf.At(i))
	}

	enc := wav.NewEncoder(w, buf.SampleRate(), bitDepth, 1, wavFormatPCM)
	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

// ReadWAV loads a mono PCM WAV file written by WriteWAV
func ReadWAV(r io.ReadSeeker) (*audio.SampleBuffer, audio.Format, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, audio.Format{}, fmt.Errorf("not a valid wav file: %w", audio.ErrInvalidParameter)
	}
	intBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to read wav samples: %w", err)
	}

	format := audio.Format{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if format.Channels != 1 {
		return nil, format, fmt.Errorf("expected mono wav, got %d channels: %w", format.Channels, audio.ErrInvalidParameter)
	}

	scale := 32767.0
	if format.BitDepth == 24 {
		scale = audio.Max24Bit
	}
	samples := make([]float64, len(intBuf.Data))
	for i, v := range intBuf.Data {
		samples[i] = float64(v) / scale
	}
	return audio.NewSampleBuffer(samples, format.SampleRate), format, nil
}
