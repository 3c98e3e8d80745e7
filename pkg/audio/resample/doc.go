// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts rendered buffers between sample rates
// Package resample provides sample rate conversion for mono float buffers.
//
// Uses linear interpolation. Handles both upsampling and downsampling.
//
// Example:
//
//	out, err := resample.Buffer(rendered, 48000)
package resample
