// ABOUTME: Realizes a timeline as a node graph on a render context
// ABOUTME: Builds buses and per-event chains, and tears down partial graphs on error
package schedule

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/render"
)

// Graph is the set of nodes one timeline created on a context
type Graph struct {
	mu    sync.Mutex
	nodes []render.Node
}

func (g *Graph) track(n render.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, n)
}

// Nodes returns how many nodes the graph still holds
func (g *Graph) Nodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Teardown disconnects every node. Safe to call more than once.
func (g *Graph) Teardown() {
	g.mu.Lock()
	nodes := g.nodes
	g.nodes = nil
	g.mu.Unlock()

	for _, n := range nodes {
		n.Disconnect()
	}
}

// Realize validates tl and wires it into c: each event becomes
// source -> [lowpass] -> gain -> bus or destination, started and stopped at
// its absolute times. If anything fails, every node created so far is
// disconnected and no graph is returned.
func Realize(c render.Context, tl *Timeline) (*Graph, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{}
	fail := func(err error) (*Graph, error) {
		g.Teardown()
		return nil, err
	}

	buses := make(map[string]render.Gain, len(tl.Buses))
	for _, name := range tl.BusNames() {
		bus, err := c.NewGain()
		if err != nil {
			return fail(fmt.Errorf("bus %s: %w", name, err))
		}
		g.track(bus)
		if err := ramp.Apply(bus.Gain(), ramp.Constant(tl.Buses[name]), 0); err != nil {
			return fail(fmt.Errorf("bus %s level: %w", name, err))
		}
		if err := bus.Connect(c.Destination()); err != nil {
			return fail(fmt.Errorf("bus %s: %w", name, err))
		}
		buses[name] = bus
	}

	for _, ev := range tl.Events {
		var out render.Node = c.Destination()
		if ev.Bus != "" {
			out = buses[ev.Bus]
		}
		if err := realizeEvent(c, g, ev, out); err != nil {
			return fail(fmt.Errorf("event %s: %w", ev.Label, err))
		}
	}

	log.Printf("Realized %d events on %d buses (anchor %.3fs, end %.3fs)",
		len(tl.Events), len(tl.Buses), tl.Anchor, tl.End())
	return g, nil
}

func realizeEvent(c render.Context, g *Graph, ev Event, out render.Node) error {
	var src render.Source
	if ev.Voice.IsOscillator() {
		osc, err := c.NewOscillator(ev.Voice.Waveform)
		if err != nil {
			return err
		}
		g.track(osc)
		if err := ramp.Apply(osc.Frequency(), ev.Voice.Frequency, ev.Start); err != nil {
			return fmt.Errorf("frequency: %w", err)
		}
		src = osc
	} else {
		buf, err := c.NewBufferSource(ev.Voice.Buffer)
		if err != nil {
			return err
		}
		g.track(buf)
		src = buf
	}

	var head render.Node = src
	if len(ev.Voice.Lowpass) > 0 {
		lp, err := c.NewLowpass()
		if err != nil {
			return err
		}
		g.track(lp)
		if err := ramp.Apply(lp.Frequency(), ev.Voice.Lowpass, ev.Start); err != nil {
			return fmt.Errorf("lowpass: %w", err)
		}
		if err := head.Connect(lp); err != nil {
			return err
		}
		head = lp
	}

	gain, err := c.NewGain()
	if err != nil {
		return err
	}
	g.track(gain)
	if err := ramp.Apply(gain.Gain(), ev.Voice.Gain, ev.Start); err != nil {
		return fmt.Errorf("gain: %w", err)
	}
	if err := head.Connect(gain); err != nil {
		return err
	}
	if err := gain.Connect(out); err != nil {
		return err
	}

	if err := src.Start(ev.Start); err != nil {
		return err
	}
	return src.Stop(ev.Stop)
}

// RenderTimeline renders tl offline from its anchor to its last stop time
func RenderTimeline(tl *Timeline, sampleRate int) (*audio.SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", sampleRate, audio.ErrInvalidParameter)
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}

	m, err := render.NewMixer(sampleRate, tl.Anchor)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	g, err := Realize(m, tl)
	if err != nil {
		return nil, err
	}
	defer g.Teardown()

	if err := m.Resume(context.Background()); err != nil {
		return nil, err
	}

	frames := int(math.Ceil((tl.End() - tl.Anchor) * float64(sampleRate)))
	samples := make([]float64, frames)
	m.Render(samples)
	return audio.NewSampleBuffer(samples, sampleRate), nil
}
