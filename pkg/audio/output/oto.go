// ABOUTME: Oto-backed audio device
// ABOUTME: One process-wide oto context with a player per stream
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/frostbloom/frostbloom-go/pkg/render"
)

// Device is the process's audio output
type Device struct {
	Volume

	otoCtx     *oto.Context
	sampleRate int
	start      time.Time
}

var (
	deviceOnce sync.Once
	device     *Device
	deviceErr  error
)

// OpenDevice opens the audio device at sampleRate. oto cannot be
// reinitialized, so later calls return the same device and fail if they ask
// for a different rate.
func OpenDevice(sampleRate int) (*Device, error) {
	deviceOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			deviceErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		device = &Device{
			Volume:     Volume{volume: 100},
			otoCtx:     ctx,
			sampleRate: sampleRate,
			start:      time.Now(),
		}
		log.Printf("Audio output initialized: %dHz, mono", sampleRate)
	})

	if deviceErr != nil {
		return nil, deviceErr
	}
	if device.sampleRate != sampleRate {
		return nil, fmt.Errorf("audio device already open at %dHz, cannot switch to %dHz", device.sampleRate, sampleRate)
	}
	return device, nil
}

// SampleRate returns the device rate
func (d *Device) SampleRate() int { return d.sampleRate }

// Elapsed is the device clock in seconds
func (d *Device) Elapsed() float64 {
	return time.Since(d.start).Seconds()
}

// NewStream creates a suspended stream whose clock starts at the device's
// current time
func (d *Device) NewStream(sampleRate int) (*Stream, error) {
	if sampleRate != d.sampleRate {
		return nil, fmt.Errorf("stream rate %dHz does not match device rate %dHz: %w", sampleRate, d.sampleRate, render.ErrUnavailable)
	}
	if err := d.otoCtx.Err(); err != nil {
		return nil, fmt.Errorf("audio device failed: %w", err)
	}

	mixer, err := render.NewMixer(sampleRate, d.Elapsed())
	if err != nil {
		return nil, err
	}
	p := d.otoCtx.NewPlayer(newMixerReader(mixer, &d.Volume))
	return &Stream{Mixer: mixer, player: p}, nil
}

// Factory adapts NewStream to render.Factory
func (d *Device) Factory() render.Factory {
	return func(sampleRate int) (render.Context, error) {
		return d.NewStream(sampleRate)
	}
}
