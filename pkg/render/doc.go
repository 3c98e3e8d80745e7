// ABOUTME: Audio rendering context abstraction
// ABOUTME: Defines the node graph interfaces and a software mixer implementation
// Package render defines the audio rendering context the engine schedules
// against: buffer sources, oscillators, gain stages and lowpass filters
// connected into a graph that ends at a destination, with every start, stop
// and parameter change stamped on the context's clock.
//
// Mixer is the software implementation. It renders the graph sample by
// sample on demand, which makes it usable both for offline rendering and as
// the sample source of a realtime output device.
//
// Example:
//
//	m, _ := render.NewMixer(44100, 0)
//	src, _ := m.NewBufferSource(buf)
//	g, _ := m.NewGain()
//	_ = src.Connect(g)
//	_ = g.Connect(m.Destination())
//	_ = src.Start(0.5)
//	_ = m.Resume(ctx)
//	m.Render(out)
package render
