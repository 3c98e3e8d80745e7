// ABOUTME: Adapts a playback session to the control server
// ABOUTME: Reports session state as protocol state updates
package remote

import (
	"context"

	"github.com/frostbloom/frostbloom-go/internal/protocol"
	"github.com/frostbloom/frostbloom-go/pkg/session"
)

// SessionController drives a session on behalf of remote clients
type SessionController struct {
	Session *session.Session
	Recipe  string
}

// Trigger starts or resumes the session
func (c *SessionController) Trigger(ctx context.Context) error {
	return c.Session.Trigger(ctx)
}

// Release stops the session
func (c *SessionController) Release() {
	c.Session.Release()
}

// Status reports the session as a state update
func (c *SessionController) Status() protocol.StateUpdate {
	update := protocol.StateUpdate{
		State:  c.Session.State().String(),
		Recipe: c.Recipe,
	}
	if tl := c.Session.Timeline(); tl != nil {
		update.SessionID = c.Session.ID()
		update.Anchor = tl.Anchor
		update.Events = len(tl.Events)
	}
	return update
}
