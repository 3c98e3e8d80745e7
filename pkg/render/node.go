// ABOUTME: Mixer graph nodes
// ABOUTME: Buffer sources, oscillators, gain stages and a biquad lowpass
package render

import (
	"fmt"
	"math"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

type node struct {
	m       *Mixer
	kind    nodeKind
	inputs  []*node
	outputs []*node

	// sources
	buf              *audio.SampleBuffer
	wave             synth.Waveform
	start, stop      float64
	started, stopped bool
	phase            float64

	// params
	gain, freq, q *ramp.Param

	// biquad history
	x1, x2, y1, y2 float64

	// output of the most recent frame, so fan-out does not re-run state
	lastFrame int64
	last      float64
}

type mixerNode interface {
	mixerNode() *node
}

func (n *node) mixerNode() *node { return n }

// Connect routes this node into dst
func (n *node) Connect(dst Node) error {
	target, ok := dst.(mixerNode)
	if !ok {
		return ErrForeignNode
	}
	d := target.mixerNode()
	if d.m != n.m {
		return ErrForeignNode
	}

	n.m.mu.Lock()
	defer n.m.mu.Unlock()

	if n.m.state == StateClosed {
		return ErrClosed
	}
	if n.kind == kindDestination {
		return fmt.Errorf("destination has no outputs: %w", ErrInvalidState)
	}
	if d.kind == kindBuffer || d.kind == kindOscillator {
		return fmt.Errorf("sources take no inputs: %w", ErrInvalidState)
	}
	for _, o := range n.outputs {
		if o == d {
			return nil
		}
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
	return nil
}

// Disconnect removes every outgoing edge
func (n *node) Disconnect() {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()

	for _, d := range n.outputs {
		for i, in := range d.inputs {
			if in == n {
				d.inputs = append(d.inputs[:i], d.inputs[i+1:]...)
				break
			}
		}
	}
	n.outputs = nil
}

func (n *node) value(frame int64, t float64) float64 {
	if n.lastFrame == frame {
		return n.last
	}
	// cycles read the previous frame's value
	n.lastFrame = frame

	var out float64
	switch n.kind {
	case kindDestination:
		out = n.sumInputs(frame, t)
	case kindBuffer:
		if n.active(t) {
			idx := int(math.Floor((t-n.start)*float64(n.buf.SampleRate()) + 1e-9))
			out = n.buf.At(idx)
		}
	case kindOscillator:
		if n.active(t) {
			out = n.wave.Sample(n.phase)
			n.phase += n.freq.ValueAt(t) / float64(n.m.sampleRate)
			n.phase -= math.Floor(n.phase)
		}
	case kindGain:
		out = n.sumInputs(frame, t) * n.gain.ValueAt(t)
	case kindLowpass:
		out = n.lowpass(n.sumInputs(frame, t), t)
	}

	n.last = out
	return out
}

func (n *node) sumInputs(frame int64, t float64) float64 {
	sum := 0.0
	for _, in := range n.inputs {
		sum += in.value(frame, t)
	}
	return sum
}

func (n *node) active(t float64) bool {
	if !n.started || t < n.start {
		return false
	}
	return !n.stopped || t < n.stop
}

// lowpass runs one step of an RBJ cookbook biquad
func (n *node) lowpass(x, t float64) float64 {
	sr := float64(n.m.sampleRate)
	f := n.freq.ValueAt(t)
	f = math.Max(10, math.Min(f, 0.49*sr))
	q := n.q.ValueAt(t)
	if q <= 0 {
		q = defaultQ
	}

	w0 := 2 * math.Pi * f / sr
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 - cosw) / 2
	b1 := 1 - cosw
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha

	y := (b0*x + b1*n.x1 + b2*n.x2 - a1*n.y1 - a2*n.y2) / a0
	n.x2, n.x1 = n.x1, x
	n.y2, n.y1 = n.y1, y
	return y
}

type sourceNode struct {
	*node
}

// Start schedules playback at an absolute context time
func (s *sourceNode) Start(at float64) error {
	if at < 0 || math.IsNaN(at) || math.IsInf(at, 0) {
		return fmt.Errorf("start time %g: %w", at, audio.ErrInvalidParameter)
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.state == StateClosed {
		return ErrClosed
	}
	if s.started {
		return fmt.Errorf("source already started: %w", ErrInvalidState)
	}
	s.start = at
	s.started = true
	return nil
}

// Stop schedules the end of playback at an absolute context time
func (s *sourceNode) Stop(at float64) error {
	if at < 0 || math.IsNaN(at) || math.IsInf(at, 0) {
		return fmt.Errorf("stop time %g: %w", at, audio.ErrInvalidParameter)
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.state == StateClosed {
		return ErrClosed
	}
	if !s.started {
		return fmt.Errorf("stop before start: %w", ErrInvalidState)
	}
	s.stop = at
	s.stopped = true
	return nil
}

type oscillatorNode struct {
	sourceNode
}

func (o *oscillatorNode) Frequency() ramp.Automatable {
	return lockedParam{mu: &o.m.mu, p: o.freq}
}

type gainNode struct {
	*node
}

func (g *gainNode) Gain() ramp.Automatable {
	return lockedParam{mu: &g.m.mu, p: g.gain}
}

type filterNode struct {
	*node
}

func (f *filterNode) Frequency() ramp.Automatable {
	return lockedParam{mu: &f.m.mu, p: f.freq}
}

func (f *filterNode) Q() ramp.Automatable {
	return lockedParam{mu: &f.m.mu, p: f.q}
}
