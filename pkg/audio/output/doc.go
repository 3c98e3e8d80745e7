// ABOUTME: Realtime audio output
// ABOUTME: Plays render contexts through the system speakers with oto
// Package output plays rendering contexts on the system audio device.
//
// oto allows a single context per process, so OpenDevice returns one shared
// Device. Each session context is a Stream: a software mixer pulled by its
// own oto player, with a clock that continues the device's timeline.
//
// Example:
//
//	dev, err := output.OpenDevice(44100)
//	sess, err := session.New(session.Config{NewContext: dev.Factory()})
package output
