// ABOUTME: Soundscape recipes
// ABOUTME: Assembles scheduling primitives into complete compositions
// Package compose holds soundscape recipes. A Recipe schedules its layers
// against a single anchor; Compose runs a recipe on a fresh scheduler and
// returns the validated timeline.
//
// IceScene is the reference recipe: a bright noise bed, six crackle bursts,
// three water drips and an exhale swell over twelve seconds.
package compose
