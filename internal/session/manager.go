package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizarcade/internal/inject"
	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/templates"
)

// Selector pairs questions with templates.
type Selector interface {
	Select(ctx context.Context, questions []quiz.Question) ([]templates.Pairing, error)
}

// ChangeKind identifies a session change reported to observers.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "session.created"
	ChangeNavigate ChangeKind = "session.navigated"
	ChangeCleared  ChangeKind = "session.cleared"
)

// Change describes a persisted session change.
type Change struct {
	Kind    ChangeKind
	Session *Session
	From    int
	To      int
}

// Observer is notified after a change has been persisted.
type Observer interface {
	Observe(ctx context.Context, c Change)
}

// Manager owns the in-memory session and keeps the store in sync with it.
// A Manager is not safe for concurrent use; callers serialize access.
type Manager struct {
	store     Store
	selector  Selector
	observers []Observer
	now       func() time.Time
	newID     func() string

	current *Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithObserver registers an observer for persisted changes.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// NewManager creates a Manager in the uninitialized state.
func NewManager(store Store, selector Selector, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		selector: selector,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Current returns the in-memory session, or nil when uninitialized.
func (m *Manager) Current() *Session {
	return m.current
}

// Create assembles a session from questions, persists it and makes it
// current. It is all-or-nothing: on failure nothing is persisted and the
// previous session, in memory and in the store, is left untouched.
func (m *Manager) Create(ctx context.Context, questions []quiz.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAssemblyFailed, ErrNoQuestions)
	}
	if err := quiz.ValidateAll(questions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssemblyFailed, err)
	}

	pairs, err := m.selector.Select(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssemblyFailed, err)
	}
	if len(pairs) != len(questions) {
		return nil, fmt.Errorf("%w: selected %d templates for %d questions", ErrAssemblyFailed, len(pairs), len(questions))
	}

	instances := make([]GameInstance, len(pairs))
	for i, p := range pairs {
		instances[i] = GameInstance{
			Question: p.Question,
			Template: p.Template,
			Code:     inject.Inject(p.Template.Code, p.Question),
		}
	}

	s := &Session{
		ID:        m.newID(),
		CreatedAt: m.now().UTC(),
		Instances: instances,
		Index:     0,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.current = s
	m.notify(ctx, Change{Kind: ChangeCreated, Session: s, From: 0, To: 0})
	return s, nil
}

// Load rehydrates the session from the store. A missing session yields
// (nil, nil) and leaves the manager uninitialized. A stored blob that breaks
// the session invariants is treated as missing.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !s.valid() {
		m.current = nil
		return nil, nil
	}
	m.current = s
	return s, nil
}

// GoTo moves to index, clamped to the session bounds, and persists the new
// position. Out-of-range indexes clamp rather than fail. If no session is in
// memory one is loaded first; ErrNoActiveSession is returned if none exists.
func (m *Manager) GoTo(ctx context.Context, index int) (*Session, error) {
	if m.current == nil {
		if _, err := m.Load(ctx); err != nil {
			return nil, err
		}
		if m.current == nil {
			return nil, ErrNoActiveSession
		}
	}

	s := m.current
	from := s.Index
	to := Clamp(index, s.Len())
	if to == from {
		return s, nil
	}

	s.Index = to
	if err := m.store.Save(ctx, s); err != nil {
		s.Index = from
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.notify(ctx, Change{Kind: ChangeNavigate, Session: s, From: from, To: to})
	return s, nil
}

// Next moves one instance forward.
func (m *Manager) Next(ctx context.Context) (*Session, error) {
	return m.step(ctx, 1)
}

// Prev moves one instance back.
func (m *Manager) Prev(ctx context.Context) (*Session, error) {
	return m.step(ctx, -1)
}

func (m *Manager) step(ctx context.Context, delta int) (*Session, error) {
	if m.current == nil {
		if _, err := m.Load(ctx); err != nil {
			return nil, err
		}
		if m.current == nil {
			return nil, ErrNoActiveSession
		}
	}
	return m.GoTo(ctx, m.current.Index+delta)
}

// Clear empties the store and returns the manager to uninitialized.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	prev := m.current
	m.current = nil
	m.notify(ctx, Change{Kind: ChangeCleared, Session: prev})
	return nil
}

func (m *Manager) notify(ctx context.Context, c Change) {
	for _, o := range m.observers {
		o.Observe(ctx, c)
	}
}
