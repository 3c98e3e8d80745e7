// ABOUTME: Signal generator package for procedural soundscapes
// ABOUTME: Produces noise, transient and tonal sweep sample buffers
// Package synth generates the raw signals a soundscape is built from.
//
// Generators are pure functions of their spec, the sample rate and a Random
// source. Pass a seeded source to get the same buffer on every run:
//
//	rng := synth.NewSeededRNG(42)
//	bed, err := synth.GenerateNoise(synth.NoiseSpec{
//	    Duration: 12,
//	    PeakGain: 0.18,
//	    Color:    synth.ColorBright,
//	}, 44100, rng)
//
// Peak gains are validated here but applied later as node gain by the
// scheduler, so buffers always span the full [-1,1] range.
package synth
