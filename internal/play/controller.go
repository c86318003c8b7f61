// Package play drives the session manager and the runtime bridge together:
// every navigation remounts the instance at the new position and clears the
// feedback of the previous one.
package play

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/session"
	"github.com/abhisek/quizarcade/internal/templates"
)

// State is a snapshot of what the play view shows.
type State struct {
	Active       bool                          `json:"active"`
	SessionID    string                        `json:"sessionId,omitempty"`
	Index        int                           `json:"index"`
	Total        int                           `json:"total"`
	HasPrev      bool                          `json:"hasPrev"`
	HasNext      bool                          `json:"hasNext"`
	Prompt       string                        `json:"prompt,omitempty"`
	QuestionType quiz.QuestionType             `json:"questionType,omitempty"`
	TemplateName string                        `json:"templateName,omitempty"`
	Instructions string                        `json:"instructions,omitempty"`
	Controls     []templates.ControlDescriptor `json:"controls,omitempty"`
	FrameID      string                        `json:"frameId,omitempty"`
	Phase        string                        `json:"phase"`
	Feedback     *bridge.Feedback              `json:"feedback,omitempty"`
}

// Progress returns the fraction of instances reached.
func (s State) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Index+1) / float64(s.Total)
}

// Controller serializes access to the session manager and owns the bridge
// on which the current instance runs.
type Controller struct {
	mu      sync.Mutex
	manager *session.Manager
	bridge  *bridge.Bridge
}

// NewController creates a controller.
func NewController(m *session.Manager, b *bridge.Bridge) *Controller {
	return &Controller{manager: m, bridge: b}
}

// Bridge returns the runtime bridge.
func (c *Controller) Bridge() *bridge.Bridge { return c.bridge }

// Create assembles a new session, replacing the current one, and mounts its
// first instance.
func (c *Controller) Create(ctx context.Context, questions []quiz.Question) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.manager.Create(ctx, questions); err != nil {
		return c.stateLocked(), err
	}
	c.bridge.Unload()
	if err := c.mountLocked(); err != nil {
		return c.stateLocked(), err
	}
	return c.stateLocked(), nil
}

// Resume rehydrates the persisted session without mounting it. It returns
// ErrNoActiveSession when none is stored.
func (c *Controller) Resume(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manager.Current() == nil {
		s, err := c.manager.Load(ctx)
		if err != nil {
			return State{}, err
		}
		if s == nil {
			return State{}, session.ErrNoActiveSession
		}
	}
	return c.stateLocked(), nil
}

// Mount rehydrates the session if needed and makes the current instance the
// active document. Mounting the instance that is already live is a no-op.
func (c *Controller) Mount(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manager.Current() == nil {
		s, err := c.manager.Load(ctx)
		if err != nil {
			return State{}, err
		}
		if s == nil {
			return State{}, session.ErrNoActiveSession
		}
	}
	if err := c.mountLocked(); err != nil {
		return c.stateLocked(), err
	}
	return c.stateLocked(), nil
}

// GoTo moves to index (clamped) and mounts the instance there.
func (c *Controller) GoTo(ctx context.Context, index int) (State, error) {
	return c.navigate(ctx, func() (*session.Session, error) {
		return c.manager.GoTo(ctx, index)
	})
}

// Next moves one instance forward.
func (c *Controller) Next(ctx context.Context) (State, error) {
	return c.navigate(ctx, func() (*session.Session, error) {
		return c.manager.Next(ctx)
	})
}

// Prev moves one instance back.
func (c *Controller) Prev(ctx context.Context) (State, error) {
	return c.navigate(ctx, func() (*session.Session, error) {
		return c.manager.Prev(ctx)
	})
}

func (c *Controller) navigate(_ context.Context, move func() (*session.Session, error)) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := move(); err != nil {
		return c.stateLocked(), err
	}
	if err := c.mountLocked(); err != nil {
		return c.stateLocked(), err
	}
	return c.stateLocked(), nil
}

// Exit tears down the live document. The session stays persisted so the
// play view can be entered again.
func (c *Controller) Exit() {
	c.bridge.Unload()
}

// Clear removes the session and tears down the live document.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bridge.Unload()
	return c.manager.Clear(ctx)
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe registers fn for bridge events.
func (c *Controller) Subscribe(fn func(bridge.Event)) (unsubscribe func()) {
	return c.bridge.Subscribe(fn)
}

func (c *Controller) mountLocked() error {
	s := c.manager.Current()
	if s == nil {
		return session.ErrNoActiveSession
	}
	if _, err := c.bridge.Load(s.Current().Code); err != nil {
		return fmt.Errorf("mount instance %d: %w", s.Index+1, err)
	}
	return nil
}

func (c *Controller) stateLocked() State {
	s := c.manager.Current()
	if s == nil {
		return State{Phase: bridge.WaitingForEngine.String()}
	}

	inst := s.Current()
	st := State{
		Active:       true,
		SessionID:    s.ID,
		Index:        s.Index,
		Total:        s.Len(),
		HasPrev:      s.HasPrev(),
		HasNext:      s.HasNext(),
		Prompt:       inst.Question.Prompt,
		QuestionType: inst.Question.Type,
		TemplateName: inst.Template.Name,
		Instructions: inst.Template.Instructions,
		Controls:     inst.Template.Controls,
		Phase:        bridge.WaitingForEngine.String(),
	}

	// Feedback and phase belong to the live frame only, and only when it
	// runs the current instance.
	if f := c.bridge.Active(); f != nil && f.Fingerprint() == bridge.Fingerprint(inst.Code) {
		st.FrameID = f.ID()
		st.Phase = c.bridge.Phase().String()
		if fb, ok := c.bridge.Feedback(); ok {
			st.Feedback = &fb
		}
	}
	return st
}

// IsNoSession reports whether err means there is nothing to play.
func IsNoSession(err error) bool {
	return errors.Is(err, session.ErrNoActiveSession)
}
