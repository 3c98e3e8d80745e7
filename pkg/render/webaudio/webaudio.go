//go:build js

// ABOUTME: Browser rendering context backed by the Web Audio API
// ABOUTME: Maps render nodes and automation onto AudioContext objects via GopherJS
package webaudio

import (
	"context"
	"fmt"
	"math"

	"github.com/gopherjs/gopherjs/js"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/ramp"
	"github.com/frostbloom/frostbloom-go/pkg/render"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

// Context wraps a browser AudioContext
type Context struct {
	ctx    *js.Object
	dest   *node
	closed bool
}

// New creates an AudioContext. The browser picks the hardware rate when
// sampleRate is zero.
func New(sampleRate int) (*Context, error) {
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil, fmt.Errorf("web audio not supported: %w", render.ErrUnavailable)
	}

	var obj *js.Object
	err := catch(func() {
		if sampleRate > 0 {
			obj = ctor.New(js.M{"sampleRate": sampleRate})
		} else {
			obj = ctor.New()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create audio context: %v: %w", err, render.ErrUnavailable)
	}

	c := &Context{ctx: obj}
	c.dest = &node{owner: c, obj: obj.Get("destination")}
	return c, nil
}

// Factory returns a render.Factory creating Web Audio contexts
func Factory() render.Factory {
	return func(sampleRate int) (render.Context, error) {
		return New(sampleRate)
	}
}

func (c *Context) SampleRate() int {
	return c.ctx.Get("sampleRate").Int()
}

func (c *Context) CurrentTime() float64 {
	return c.ctx.Get("currentTime").Float()
}

func (c *Context) State() render.State {
	if c.closed {
		return render.StateClosed
	}
	switch c.ctx.Get("state").String() {
	case "running":
		return render.StateRunning
	case "closed":
		return render.StateClosed
	default:
		return render.StateSuspended
	}
}

// Resume asks the browser to start rendering and waits for the promise to
// settle. Autoplay policy rejects it outside a user gesture.
func (c *Context) Resume(ctx context.Context) error {
	if c.closed {
		return render.ErrClosed
	}
	if c.State() == render.StateRunning {
		return nil
	}

	done := make(chan error, 1)
	err := catch(func() {
		c.ctx.Call("resume").Call("then",
			func() { done <- nil },
			func(reason *js.Object) {
				done <- fmt.Errorf("resume rejected: %s: %w", reason.String(), render.ErrUnavailable)
			},
		)
	})
	if err != nil {
		return fmt.Errorf("resume: %v: %w", err, render.ErrUnavailable)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return catch(func() { c.ctx.Call("close") })
}

func (c *Context) Destination() render.Node {
	return c.dest
}

func (c *Context) NewBufferSource(buf *audio.SampleBuffer) (render.Source, error) {
	if c.closed {
		return nil, render.ErrClosed
	}
	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("buffer source needs samples: %w", audio.ErrInvalidParameter)
	}

	samples := make([]float32, buf.Len())
	for i, s := range buf.Samples() {
		samples[i] = float32(s)
	}

	var src *js.Object
	err := catch(func() {
		abuf := c.ctx.Call("createBuffer", 1, buf.Len(), buf.SampleRate())
		abuf.Call("copyToChannel", samples, 0)
		src = c.ctx.Call("createBufferSource")
		src.Set("buffer", abuf)
	})
	if err != nil {
		return nil, err
	}
	return &source{node: node{owner: c, obj: src}}, nil
}

func (c *Context) NewOscillator(wave synth.Waveform) (render.Oscillator, error) {
	if c.closed {
		return nil, render.ErrClosed
	}
	var osc *js.Object
	err := catch(func() {
		osc = c.ctx.Call("createOscillator")
		osc.Set("type", wave.String())
	})
	if err != nil {
		return nil, err
	}
	return &oscillator{source: source{node: node{owner: c, obj: osc}}}, nil
}

func (c *Context) NewGain() (render.Gain, error) {
	if c.closed {
		return nil, render.ErrClosed
	}
	var g *js.Object
	if err := catch(func() { g = c.ctx.Call("createGain") }); err != nil {
		return nil, err
	}
	return &gain{node: node{owner: c, obj: g}}, nil
}

func (c *Context) NewLowpass() (render.Filter, error) {
	if c.closed {
		return nil, render.ErrClosed
	}
	var f *js.Object
	err := catch(func() {
		f = c.ctx.Call("createBiquadFilter")
		f.Set("type", "lowpass")
	})
	if err != nil {
		return nil, err
	}
	return &filter{node: node{owner: c, obj: f}}, nil
}

type node struct {
	owner *Context
	obj   *js.Object
}

func (n *node) Connect(dst render.Node) error {
	if n.owner.closed {
		return render.ErrClosed
	}
	target, ok := unwrap(dst)
	if !ok || target.owner != n.owner {
		return render.ErrForeignNode
	}
	if n == n.owner.dest {
		return fmt.Errorf("destination has no outputs: %w", render.ErrInvalidState)
	}
	return catch(func() { n.obj.Call("connect", target.obj) })
}

func (n *node) Disconnect() {
	if n == n.owner.dest {
		return
	}
	// Already disconnected nodes throw; there is nothing to report
	_ = catch(func() { n.obj.Call("disconnect") })
}

func unwrap(dst render.Node) (*node, bool) {
	switch v := dst.(type) {
	case *node:
		return v, true
	case *source:
		return &v.node, true
	case *oscillator:
		return &v.node, true
	case *gain:
		return &v.node, true
	case *filter:
		return &v.node, true
	default:
		return nil, false
	}
}

type source struct {
	node
	started bool
	stopped bool
}

func (s *source) Start(at float64) error {
	if err := checkTime(at); err != nil {
		return err
	}
	if s.started {
		return fmt.Errorf("source already started: %w", render.ErrInvalidState)
	}
	if err := catch(func() { s.obj.Call("start", at) }); err != nil {
		return err
	}
	s.started = true
	return nil
}

func (s *source) Stop(at float64) error {
	if err := checkTime(at); err != nil {
		return err
	}
	if !s.started || s.stopped {
		return fmt.Errorf("source not playing: %w", render.ErrInvalidState)
	}
	if err := catch(func() { s.obj.Call("stop", at) }); err != nil {
		return err
	}
	s.stopped = true
	return nil
}

type oscillator struct {
	source
}

func (o *oscillator) Frequency() ramp.Automatable {
	return param{o.obj.Get("frequency")}
}

type gain struct {
	node
}

func (g *gain) Gain() ramp.Automatable {
	return param{g.obj.Get("gain")}
}

type filter struct {
	node
}

func (f *filter) Frequency() ramp.Automatable {
	return param{f.obj.Get("frequency")}
}

func (f *filter) Q() ramp.Automatable {
	return param{f.obj.Get("Q")}
}

// param adapts an AudioParam
type param struct {
	obj *js.Object
}

func (p param) SetValueAtTime(value, at float64) error {
	return p.schedule("setValueAtTime", ramp.Set, value, at)
}

func (p param) LinearRampToValueAtTime(value, at float64) error {
	return p.schedule("linearRampToValueAtTime", ramp.Linear, value, at)
}

func (p param) ExponentialRampToValueAtTime(value, at float64) error {
	return p.schedule("exponentialRampToValueAtTime", ramp.Exponential, value, at)
}

func (p param) schedule(method string, interp ramp.Interpolation, value, at float64) error {
	if err := ramp.ValidateTarget(interp, value); err != nil {
		return err
	}
	if err := checkTime(at); err != nil {
		return err
	}
	return catch(func() { p.obj.Call(method, value, at) })
}

func checkTime(at float64) error {
	if at < 0 || math.IsNaN(at) || math.IsInf(at, 0) {
		return fmt.Errorf("time %g: %w", at, audio.ErrInvalidParameter)
	}
	return nil
}

// catch converts a thrown JavaScript exception into an error
func catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(*js.Error); ok {
				err = fmt.Errorf("web audio: %s: %w", jsErr.Error(), render.ErrInvalidState)
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
