// ABOUTME: Stream and PCM reader tests
// ABOUTME: Uses a fake player so no audio device is needed
package output

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/render"
)

type fakePlayer struct {
	playing bool
	closed  bool
}

func (p *fakePlayer) Play()  { p.playing = true }
func (p *fakePlayer) Pause() { p.playing = false }
func (p *fakePlayer) Close() error {
	p.closed = true
	p.playing = false
	return nil
}

func TestStreamImplementsContext(t *testing.T) {
	var _ render.Context = (*Stream)(nil)
}

func newTestStream(t *testing.T) (*Stream, *fakePlayer) {
	t.Helper()
	m, err := render.NewMixer(100, 0)
	if err != nil {
		t.Fatalf("NewMixer failed: %v", err)
	}
	p := &fakePlayer{}
	return &Stream{Mixer: m, player: p}, p
}

func TestStreamLifecycle(t *testing.T) {
	s, p := newTestStream(t)

	if err := s.Resume(context.Background()); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !p.playing || s.State() != render.StateRunning {
		t.Errorf("expected playing and running, got playing=%v state=%v", p.playing, s.State())
	}

	s.Suspend()
	if p.playing || s.State() != render.StateSuspended {
		t.Errorf("expected paused and suspended, got playing=%v state=%v", p.playing, s.State())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if !p.closed || s.State() != render.StateClosed {
		t.Errorf("expected closed player and context, got closed=%v state=%v", p.closed, s.State())
	}
	if err := s.Resume(context.Background()); err == nil {
		t.Error("expected Resume on a closed stream to fail")
	}
}

func TestMixerReaderPCM(t *testing.T) {
	tests := []struct {
		name   string
		volume int
		muted  bool
		want   int16
	}{
		{"full volume", 100, false, 16384},
		{"half volume", 50, false, 8192},
		{"muted", 100, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := render.NewMixer(100, 0)
			src, _ := m.NewBufferSource(audio.NewSampleBuffer([]float64{0.5, 0.5, 0.5, 0.5}, 100))
			_ = src.Connect(m.Destination())
			_ = src.Start(0)
			_ = m.Resume(context.Background())

			vol := &Volume{volume: tt.volume, muted: tt.muted}
			r := newMixerReader(m, vol)

			p := make([]byte, 8)
			n, err := r.Read(p)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if n != 8 {
				t.Fatalf("expected 8 bytes, got %d", n)
			}
			for i := 0; i < 4; i++ {
				got := int16(binary.LittleEndian.Uint16(p[i*2:]))
				if got != tt.want {
					t.Errorf("frame %d: expected %d, got %d", i, tt.want, got)
				}
			}
		})
	}
}

func TestMixerReaderSilentWhenSuspended(t *testing.T) {
	m, _ := render.NewMixer(100, 0)
	r := newMixerReader(m, &Volume{volume: 100})

	p := []byte{1, 2, 3, 4, 5}
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes for 2 whole frames, got %d", n)
	}
	for i := 0; i < n; i++ {
		if p[i] != 0 {
			t.Errorf("byte %d: expected silence, got %d", i, p[i])
		}
	}
	if m.CurrentTime() != 0 {
		t.Errorf("expected suspended clock to stay at 0, got %f", m.CurrentTime())
	}
}

func TestVolumeClamps(t *testing.T) {
	v := &Volume{}
	v.SetVolume(150)
	if v.GetVolume() != 100 {
		t.Errorf("expected 100, got %d", v.GetVolume())
	}
	v.SetVolume(-5)
	if v.GetVolume() != 0 {
		t.Errorf("expected 0, got %d", v.GetVolume())
	}
	v.SetMuted(true)
	if !v.IsMuted() || v.multiplier() != 0 {
		t.Error("expected muted volume to silence output")
	}
}
