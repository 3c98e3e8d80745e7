// ABOUTME: Rendering context and node interfaces
// ABOUTME: Implemented by the software mixer, the oto output and the Web Audio backend
package render

import (
	"context"
	"errors"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

var (
	// ErrClosed is returned by operations on a closed context
	ErrClosed = errors.New("render context closed")

	// ErrForeignNode is returned when connecting nodes from different contexts
	ErrForeignNode = errors.New("node belongs to another context")

	// ErrInvalidState is returned for misuse such as starting a source twice
	ErrInvalidState = errors.New("invalid node state")

	// ErrUnavailable is returned when the host refuses to create or resume a context
	ErrUnavailable = errors.New("audio output unavailable")
)

// State is the lifecycle state of a rendering context
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Node is a vertex of the audio graph
type Node interface {
	// Connect routes this node's output into dst
	Connect(dst Node) error

	// Disconnect removes all outgoing connections
	Disconnect()
}

// Source is a node that plays between scheduled start and stop times
type Source interface {
	Node
	Start(at float64) error
	Stop(at float64) error
}

// Oscillator is a periodic tone source
type Oscillator interface {
	Source
	Frequency() ramp.Automatable
}

// Gain scales the sum of its inputs
type Gain interface {
	Node
	Gain() ramp.Automatable
}

// Filter is a resonant lowpass
type Filter interface {
	Node
	Frequency() ramp.Automatable
	Q() ramp.Automatable
}

// Context owns a node graph and the clock its events are scheduled on
type Context interface {
	SampleRate() int

	// CurrentTime is the context clock in seconds. It never decreases.
	CurrentTime() float64

	State() State

	// Resume starts or continues rendering
	Resume(ctx context.Context) error

	// Close stops rendering and releases the graph
	Close() error

	Destination() Node

	NewBufferSource(buf *audio.SampleBuffer) (Source, error)
	NewOscillator(wave synth.Waveform) (Oscillator, error)
	NewGain() (Gain, error)
	NewLowpass() (Filter, error)
}

// Factory creates a rendering context at the given sample rate
type Factory func(sampleRate int) (Context, error)
