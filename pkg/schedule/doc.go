// ABOUTME: Event scheduling on an anchored timeline
// ABOUTME: Places generated buffers and tonal voices at absolute start and stop times
// Package schedule turns generator specs into timed events and realizes them
// on a render.Context.
//
// A Scheduler accumulates events relative to an anchor time: a noise bed, a
// jittered series of transient bursts, a sequence of oscillator drips on a
// shared bus and a filtered swell. Timeline snapshots the result. Realize
// wires a Timeline into a context's node graph, and RenderTimeline renders
// one offline through the software mixer.
package schedule
