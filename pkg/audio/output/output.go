// ABOUTME: Stream rendering context
// ABOUTME: A software mixer pulled by a player, with software volume control
package output

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/frostbloom/frostbloom-go/pkg/audio/encode"
	"github.com/frostbloom/frostbloom-go/pkg/render"
)

// bitDepth is the PCM depth handed to the device
const bitDepth = 16

// player is the part of an oto player a Stream drives
type player interface {
	Play()
	Pause()
	Close() error
}

// Stream is a render.Context whose output is played as it renders
type Stream struct {
	*render.Mixer

	mu     sync.Mutex
	player player
	closed bool
}

// Resume starts the mixer clock and the player
func (s *Stream) Resume(ctx context.Context) error {
	if err := s.Mixer.Resume(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Play()
	return nil
}

// Suspend pauses the player and freezes the clock
func (s *Stream) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.player.Pause()
	}
	s.Mixer.Suspend()
}

// Close stops playback and releases the graph
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var closeErr error
	if err := s.player.Close(); err != nil {
		closeErr = fmt.Errorf("failed to close player: %w", err)
	}
	if err := s.Mixer.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// Volume is a software gain shared by every stream of a device
type Volume struct {
	mu     sync.Mutex
	volume int
	muted  bool
}

// SetVolume sets the volume (0-100)
func (v *Volume) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	v.mu.Lock()
	v.volume = volume
	v.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (v *Volume) SetMuted(muted bool) {
	v.mu.Lock()
	v.muted = muted
	v.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (v *Volume) GetVolume() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

// IsMuted returns mute state
func (v *Volume) IsMuted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

// multiplier calculates the linear gain for the current settings
func (v *Volume) multiplier() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.muted {
		return 0.0
	}
	return float64(v.volume) / 100.0
}

// mixerReader renders a mixer into signed 16-bit little endian mono PCM.
// It never returns EOF; a suspended or closed mixer reads as silence.
type mixerReader struct {
	mixer  *render.Mixer
	volume *Volume
	pcm    *encode.PCMEncoder
	buf    []float64
}

func newMixerReader(mixer *render.Mixer, volume *Volume) *mixerReader {
	// 16-bit is always a supported depth
	pcm, _ := encode.NewPCMEncoder(bitDepth)
	return &mixerReader{mixer: mixer, volume: volume, pcm: pcm}
}

func (r *mixerReader) Read(p []byte) (int, error) {
	frames := len(p) / r.pcm.BytesPerSample()
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float64, frames)
	}
	buf := r.buf[:frames]

	r.mixer.Render(buf)
	if gain := r.volume.multiplier(); gain != 1 {
		for i := range buf {
			buf[i] *= gain
		}
	}
	return r.pcm.EncodeTo(p, buf), nil
}
