// ABOUTME: Software rendering context
// ABOUTME: Pull-based graph renderer with sample-accurate scheduling
package render

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

const defaultQ = math.Sqrt2 / 2

type nodeKind int

const (
	kindDestination nodeKind = iota
	kindBuffer
	kindOscillator
	kindGain
	kindLowpass
)

// Mixer renders a node graph in software. Time advances only while the
// mixer is running and only as fast as Render is called.
//
// One goroutine may call Render while another builds the graph.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	epoch      float64
	frame      int64
	state      State
	dest       *node
	nodes      []*node
}

// NewMixer creates a suspended mixer whose clock starts at epoch seconds
func NewMixer(sampleRate int, epoch float64) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", sampleRate, audio.ErrInvalidParameter)
	}
	if epoch < 0 || math.IsNaN(epoch) || math.IsInf(epoch, 0) {
		return nil, fmt.Errorf("epoch %g: %w", epoch, audio.ErrInvalidParameter)
	}

	m := &Mixer{
		sampleRate: sampleRate,
		epoch:      epoch,
		state:      StateSuspended,
	}
	m.dest = m.newNode(kindDestination)
	return m, nil
}

// NewMixerFactory returns a Factory whose mixers start at clock()
func NewMixerFactory(clock func() float64) Factory {
	return func(sampleRate int) (Context, error) {
		return NewMixer(sampleRate, clock())
	}
}

// MonotonicClock returns seconds elapsed since the call, read from the
// monotonic wall clock
func MonotonicClock() func() float64 {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

// SampleRate returns the rendering rate in Hz
func (m *Mixer) SampleRate() int { return m.sampleRate }

// CurrentTime returns the time of the next frame to be rendered
func (m *Mixer) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeOf(m.frame)
}

func (m *Mixer) timeOf(frame int64) float64 {
	return m.epoch + float64(frame)/float64(m.sampleRate)
}

// State returns the lifecycle state
func (m *Mixer) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Resume lets Render advance the clock
func (m *Mixer) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return ErrClosed
	}
	m.state = StateRunning
	return nil
}

// Suspend freezes the clock; Render produces silence until Resume
func (m *Mixer) Suspend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		m.state = StateSuspended
	}
}

// Close disconnects every node. Safe to call more than once.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil
	}
	m.state = StateClosed
	for _, n := range m.nodes {
		n.inputs = nil
		n.outputs = nil
	}
	m.nodes = nil
	return nil
}

// Destination is the final output node
func (m *Mixer) Destination() Node { return m.dest }

// Connections counts the live edges of the graph
func (m *Mixer) Connections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.nodes {
		total += len(n.outputs)
	}
	return total
}

// Render fills dst with the next len(dst) frames and returns how many frames
// the clock advanced. A suspended or closed mixer writes silence and returns 0.
func (m *Mixer) Render(dst []float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		clear(dst)
		return 0
	}

	for i := range dst {
		dst[i] = m.dest.value(m.frame, m.timeOf(m.frame))
		m.frame++
	}
	return len(dst)
}

// NewBufferSource creates a one-shot player for buf
func (m *Mixer) NewBufferSource(buf *audio.SampleBuffer) (Source, error) {
	if buf == nil || buf.SampleRate() <= 0 {
		return nil, fmt.Errorf("buffer source needs a buffer: %w", audio.ErrInvalidParameter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil, ErrClosed
	}
	n := m.newNode(kindBuffer)
	n.buf = buf
	return &sourceNode{node: n}, nil
}

// NewOscillator creates a tone source at 440Hz
func (m *Mixer) NewOscillator(wave synth.Waveform) (Oscillator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil, ErrClosed
	}
	n := m.newNode(kindOscillator)
	n.wave = wave
	n.freq = ramp.NewParam(440)
	return &oscillatorNode{sourceNode: sourceNode{node: n}}, nil
}

// NewGain creates a unity gain stage
func (m *Mixer) NewGain() (Gain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil, ErrClosed
	}
	n := m.newNode(kindGain)
	n.gain = ramp.NewParam(1)
	return &gainNode{node: n}, nil
}

// NewLowpass creates a Butterworth lowpass at 350Hz
func (m *Mixer) NewLowpass() (Filter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil, ErrClosed
	}
	n := m.newNode(kindLowpass)
	n.freq = ramp.NewParam(350)
	n.q = ramp.NewParam(defaultQ)
	return &filterNode{node: n}, nil
}

func (m *Mixer) newNode(kind nodeKind) *node {
	n := &node{m: m, kind: kind, lastFrame: -1}
	m.nodes = append(m.nodes, n)
	return n
}

// lockedParam guards a Param shared with the render goroutine
type lockedParam struct {
	mu *sync.Mutex
	p  *ramp.Param
}

func (lp lockedParam) SetValueAtTime(value, at float64) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.p.SetValueAtTime(value, at)
}

func (lp lockedParam) LinearRampToValueAtTime(value, at float64) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.p.LinearRampToValueAtTime(value, at)
}

func (lp lockedParam) ExponentialRampToValueAtTime(value, at float64) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.p.ExponentialRampToValueAtTime(value, at)
}
