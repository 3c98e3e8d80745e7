// ABOUTME: Recipe interface, Compose entry point and recipe registry
// ABOUTME: Hosts select recipes by name
package compose

import (
	"errors"
	"fmt"
	"sort"

	"github.com/frostbloom/frostbloom-go/pkg/schedule"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

// ErrUnknownRecipe is returned by Lookup for unregistered names
var ErrUnknownRecipe = errors.New("unknown recipe")

// Recipe schedules one composition relative to an anchor
type Recipe interface {
	Name() string

	// Duration is the nominal scene length in seconds, excluding guard bands
	Duration() float64

	Compose(s *schedule.Scheduler, anchor float64) error
}

// Compose runs recipe on a new scheduler and returns the validated timeline
func Compose(recipe Recipe, anchor float64, sampleRate int, rng synth.Random) (*schedule.Timeline, error) {
	s, err := schedule.NewScheduler(sampleRate, rng)
	if err != nil {
		return nil, err
	}
	if err := recipe.Compose(s, anchor); err != nil {
		return nil, fmt.Errorf("compose %s: %w", recipe.Name(), err)
	}

	tl := s.Timeline()
	tl.Anchor = anchor
	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("compose %s: %w", recipe.Name(), err)
	}
	return tl, nil
}

var registry = map[string]func() Recipe{
	IceSceneName: func() Recipe { return NewIceScene() },
}

// Lookup returns a fresh recipe with default tunables
func Lookup(name string) (Recipe, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return ctor(), nil
}

// Names lists the registered recipes
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
