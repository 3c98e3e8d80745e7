// ABOUTME: Shared error values for the synthesis packages
// ABOUTME: Validation failures wrap ErrInvalidParameter
package audio

import "errors"

// ErrInvalidParameter reports malformed input: non-positive durations or
// sample rates, gains out of range, or exponential ramps to non-positive targets.
var ErrInvalidParameter = errors.New("invalid parameter")
