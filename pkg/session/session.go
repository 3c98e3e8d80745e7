// ABOUTME: Session state machine
// ABOUTME: Trigger composes and realizes a recipe, Release tears it down
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/compose"
	"github.com/frostbloom/frostbloom-go/pkg/render"
	"github.com/frostbloom/frostbloom-go/pkg/schedule"
	"github.com/frostbloom/frostbloom-go/pkg/synth"
)

// ErrPlaybackUnavailable is returned when the host refuses to create or
// resume a rendering context
var ErrPlaybackUnavailable = errors.New("playback unavailable")

const (
	// DefaultSampleRate is used when Config.SampleRate is zero
	DefaultSampleRate = 44100

	// DefaultAnchorLead is how far ahead of the context clock a composition
	// is anchored
	DefaultAnchorLead = 0.05

	// cooldownTail is added to the recipe duration for the default cooldown
	cooldownTail = 1500 * time.Millisecond
)

// State is the session lifecycle state
type State int

const (
	StateIdle State = iota
	StateArmed
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Timer is a cancellable pending call
type Timer interface {
	Stop() bool
}

// AfterFunc calls f after d on its own goroutine
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config holds session configuration
type Config struct {
	SampleRate int
	Recipe     compose.Recipe
	NewContext render.Factory
	Random     synth.Random

	// Cooldown returns the session to Idle after a trigger. Zero derives it
	// from the recipe: max(duration+1.5s, last stop).
	Cooldown time.Duration

	AnchorLead float64

	// OnStateChange is called for every transition, in order, after the
	// session lock is released. It must not call Trigger or Release
	// synchronously.
	OnStateChange func(State)

	AfterFunc AfterFunc
}

// Session plays one composition at a time
type Session struct {
	config Config

	mu          sync.Mutex
	state       State
	ctx         render.Context
	graph       *schedule.Graph
	timeline    *schedule.Timeline
	id          string
	anchor      float64
	hasAnchor   bool
	timer       Timer
	cooldownSeq uint64

	notifyMu sync.Mutex
}

// New creates an idle session
func New(config Config) (*Session, error) {
	if config.NewContext == nil {
		return nil, fmt.Errorf("session needs a context factory: %w", audio.ErrInvalidParameter)
	}
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.SampleRate < 0 {
		return nil, fmt.Errorf("sample rate %d: %w", config.SampleRate, audio.ErrInvalidParameter)
	}
	if config.Recipe == nil {
		config.Recipe = compose.NewIceScene()
	}
	if config.Random == nil {
		config.Random = synth.SystemRandom()
	}
	if config.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown %v: %w", config.Cooldown, audio.ErrInvalidParameter)
	}
	if config.AnchorLead == 0 {
		config.AnchorLead = DefaultAnchorLead
	}
	if config.AnchorLead < 0 || math.IsNaN(config.AnchorLead) || math.IsInf(config.AnchorLead, 0) {
		return nil, fmt.Errorf("anchor lead %g: %w", config.AnchorLead, audio.ErrInvalidParameter)
	}
	if config.AfterFunc == nil {
		config.AfterFunc = systemAfterFunc
	}

	return &Session{config: config}, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID identifies the most recent composition, or "" before the first trigger
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Anchor returns the most recent composition's anchor
func (s *Session) Anchor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// Timeline returns the active composition, or nil when idle
func (s *Session) Timeline() *schedule.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return nil
	}
	return s.timeline
}

// Trigger starts the composition if the session is idle. On an active
// session it only resumes a suspended context and restarts the cooldown.
func (s *Session) Trigger(ctx context.Context) error {
	s.mu.Lock()
	var transitions []State
	err := s.triggerLocked(ctx, &transitions)
	s.unlockAndNotify(transitions)
	return err
}

func (s *Session) triggerLocked(ctx context.Context, transitions *[]State) error {
	if s.state != StateIdle {
		if s.ctx.State() != render.StateRunning {
			if err := s.ctx.Resume(ctx); err != nil {
				return fmt.Errorf("%w: resume: %w", ErrPlaybackUnavailable, err)
			}
			log.Printf("Session %s: resumed suspended context", s.id)
		}
		s.startCooldownLocked()
		return nil
	}

	c, err := s.config.NewContext(s.config.SampleRate)
	if err != nil {
		return fmt.Errorf("%w: create context: %v", ErrPlaybackUnavailable, err)
	}

	anchor := c.CurrentTime() + s.config.AnchorLead
	if s.hasAnchor && anchor <= s.anchor {
		anchor = math.Nextafter(s.anchor, math.Inf(1))
	}

	tl, err := compose.Compose(s.config.Recipe, anchor, s.config.SampleRate, s.config.Random)
	if err != nil {
		c.Close()
		return err
	}

	graph, err := schedule.Realize(c, tl)
	if err != nil {
		c.Close()
		if errors.Is(err, audio.ErrInvalidParameter) {
			return err
		}
		return fmt.Errorf("%w: realize: %v", ErrPlaybackUnavailable, err)
	}

	s.ctx = c
	s.graph = graph
	s.timeline = tl
	s.anchor = anchor
	s.hasAnchor = true
	s.id = uuid.New().String()
	s.setStateLocked(StateArmed, transitions)

	if c.State() != render.StateRunning {
		if err := c.Resume(ctx); err != nil {
			s.teardownLocked(transitions)
			return fmt.Errorf("%w: resume: %w", ErrPlaybackUnavailable, err)
		}
	}

	s.setStateLocked(StatePlaying, transitions)
	s.startCooldownLocked()
	log.Printf("Session %s: playing %s with %d events (anchor %.3fs, end %.3fs)",
		s.id, s.config.Recipe.Name(), len(tl.Events), anchor, tl.End())
	return nil
}

// Release cancels the cooldown, tears down the graph and closes the context.
// Releasing an idle session does nothing.
func (s *Session) Release() {
	s.mu.Lock()
	var transitions []State
	if s.state != StateIdle {
		log.Printf("Session %s: released", s.id)
		s.teardownLocked(&transitions)
	}
	s.unlockAndNotify(transitions)
}

// ReleaseAsync runs Release on its own goroutine and returns a channel that
// is closed once it has finished. Hosts whose callbacks must not block use it
// while a trigger may still hold the session.
func (s *Session) ReleaseAsync() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Release()
	}()
	return done
}

func (s *Session) expire(seq uint64) {
	s.mu.Lock()
	var transitions []State
	if s.state != StateIdle && s.cooldownSeq == seq {
		log.Printf("Session %s: cooldown elapsed", s.id)
		s.teardownLocked(&transitions)
	}
	s.unlockAndNotify(transitions)
}

func (s *Session) cooldownLocked() time.Duration {
	if s.config.Cooldown > 0 {
		return s.config.Cooldown
	}
	d := time.Duration(s.config.Recipe.Duration()*float64(time.Second)) + cooldownTail
	if s.timeline != nil {
		span := time.Duration((s.timeline.End() - s.anchor) * float64(time.Second))
		if span > d {
			d = span
		}
	}
	return d
}

func (s *Session) startCooldownLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cooldownSeq++
	seq := s.cooldownSeq
	s.timer = s.config.AfterFunc(s.cooldownLocked(), func() { s.expire(seq) })
}

func (s *Session) teardownLocked(transitions *[]State) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cooldownSeq++
	if s.graph != nil {
		s.graph.Teardown()
		s.graph = nil
	}
	if s.ctx != nil {
		if err := s.ctx.Close(); err != nil {
			log.Printf("Session %s: close context: %v", s.id, err)
		}
		s.ctx = nil
	}
	s.setStateLocked(StateIdle, transitions)
}

func (s *Session) setStateLocked(state State, transitions *[]State) {
	if s.state == state {
		return
	}
	s.state = state
	*transitions = append(*transitions, state)
}

// unlockAndNotify releases mu and delivers transitions in order
func (s *Session) unlockAndNotify(transitions []State) {
	if len(transitions) == 0 || s.config.OnStateChange == nil {
		s.mu.Unlock()
		return
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, st := range transitions {
		s.config.OnStateChange(st)
	}
}
