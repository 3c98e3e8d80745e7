// ABOUTME: Parameter automation package
// ABOUTME: Linear, exponential and step ramps for gain and frequency parameters
// Package ramp models scalar parameter automation the way audio rendering
// contexts expose it: a default value plus time-stamped set, linear-ramp and
// exponential-ramp events, realised as continuous interpolation.
//
// Exponential ramps must target a strictly positive value. A target of zero,
// a negative value or a non-finite value is rejected with
// audio.ErrInvalidParameter; values are never clamped. Small positive floors
// such as 0.001 are accepted exactly as requested.
//
// Example:
//
//	gain := ramp.NewParam(1)
//	env := ramp.AttackRelease(0.001, 1, 0.04, 0.002, 0.6)
//	if err := ramp.Apply(gain, env, startTime); err != nil {
//	    return err
//	}
//	v := gain.ValueAt(startTime + 0.02)
package ramp
