// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines SampleBuffer, Format and sample conversion functions
// Package audio provides the fundamental types shared by the synthesis engine.
//
// This package defines:
//   - SampleBuffer: an immutable mono buffer of float samples produced by a generator
//   - Format: describes an encoded output stream (sample rate, channels, bit depth)
//   - ErrInvalidParameter: the sentinel wrapped by every validation failure
//
// It also provides conversions from float samples to 16-bit and 24-bit PCM.
//
// Example:
//
//	buf := audio.NewSampleBuffer(samples, 44100)
//	fmt.Println(buf.Duration())
//
//	pcm := audio.FloatToInt16(buf.At(0))
package audio
