// ABOUTME: Playback session lifecycle
// ABOUTME: Owns one rendering context per composition with idempotent trigger semantics
// Package session owns the rendering context a composition plays on.
//
// A Session moves Idle -> Armed -> Playing on Trigger and back to Idle on
// Release or when its cooldown expires. Triggering an active session never
// schedules a second composition; it only resumes a suspended context and
// restarts the cooldown. Trigger and Release are safe for concurrent use.
package session
