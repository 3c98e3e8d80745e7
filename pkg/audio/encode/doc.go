// ABOUTME: Audio encoder package for rendered soundscapes
// ABOUTME: Provides PCM encoding and WAV export
// Package encode turns rendered float samples into PCM bytes and WAV files.
//
// Supports: PCM (16-bit and 24-bit), WAV via go-audio
//
// Example:
//
//	buf, err := schedule.RenderTimeline(tl, 44100)
//	err = encode.WriteWAV(file, buf, 16)
package encode
