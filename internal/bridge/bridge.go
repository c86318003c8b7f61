// Package bridge hosts one executable game document at a time and turns the
// messages it posts into feedback for the host.
package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("bridge closed")

// Host is the isolated execution environment. Mount makes a frame's document
// live; Unmount tears it down. The host reports inbound messages back through
// Bridge.Deliver using the *Frame it was given.
type Host interface {
	Mount(f *Frame) error
	Unmount(f *Frame)
}

// EventKind classifies bridge notifications.
type EventKind int

const (
	EventMounted EventKind = iota
	EventPhase
	EventFeedback
)

// Event is sent to subscribers after the bridge state changes.
type Event struct {
	Kind     EventKind
	FrameID  string
	Phase    Phase
	Feedback Feedback
	// Message is the decoded message behind EventPhase and EventFeedback.
	Message Message
}

// Bridge owns the single active frame.
type Bridge struct {
	host  Host
	newID func() string

	mu       sync.Mutex
	active   *Frame
	feedback *Feedback
	closed   bool
	subs     map[int]func(Event)
	nextSub  int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithIDGenerator overrides frame ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(b *Bridge) { b.newID = fn }
}

// New creates a Bridge mounting documents on host.
func New(host Host, opts ...Option) *Bridge {
	b := &Bridge{
		host:  host,
		newID: uuid.NewString,
		subs:  make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers fn for bridge events and returns a function that
// removes it. Callbacks run on the goroutine that caused the change, after
// the bridge lock is released.
func (b *Bridge) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Load makes code the active document. Loading the document that is already
// active is a no-op; any other code tears down the current frame first and
// mounts a fresh one, so handlers bound to the old frame can never reach the
// new state.
func (b *Bridge) Load(code string) (*Frame, error) {
	fp := Fingerprint(code)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.active != nil && b.active.fingerprint == fp {
		f := b.active
		b.mu.Unlock()
		return f, nil
	}

	old := b.active
	b.active = nil
	b.feedback = nil
	f := newFrame(b.newID(), code, fp)
	b.mu.Unlock()

	if old != nil {
		old.cancel()
		b.host.Unmount(old)
	}

	if err := b.host.Mount(f); err != nil {
		f.cancel()
		return nil, fmt.Errorf("mount frame: %w", err)
	}

	b.mu.Lock()
	if b.closed || b.active != nil {
		// Closed or superseded while mounting.
		b.mu.Unlock()
		f.cancel()
		b.host.Unmount(f)
		if b.closed {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("mount frame: superseded by a concurrent load")
	}
	b.active = f
	subs := b.subscribers()
	b.mu.Unlock()

	notify(subs, Event{Kind: EventMounted, FrameID: f.id, Phase: WaitingForEngine})
	return f, nil
}

// Active returns the active frame, or nil.
func (b *Bridge) Active() *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Lookup returns the active frame if its ID is id.
func (b *Bridge) Lookup(id string) *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil && b.active.id == id {
		return b.active
	}
	return nil
}

// Deliver handles a raw message posted by the document in f. Messages from a
// frame that is not the active one, and malformed messages, are dropped
// silently. It reports whether the message changed bridge state.
func (b *Bridge) Deliver(f *Frame, raw []byte) bool {
	msg, ok := Decode(raw)
	if !ok {
		return false
	}

	b.mu.Lock()
	if f == nil || f != b.active || f.torn() {
		b.mu.Unlock()
		return false
	}

	var ev Event
	switch msg.Type {
	case TypeReady:
		if f.phase == EngineWrapped {
			b.mu.Unlock()
			return false
		}
		f.phase = EngineWrapped
		ev = Event{Kind: EventPhase, FrameID: f.id, Phase: f.phase, Message: msg}
	default:
		fb, _ := msg.Feedback()
		b.feedback = &fb
		ev = Event{Kind: EventFeedback, FrameID: f.id, Phase: f.phase, Feedback: fb, Message: msg}
	}
	subs := b.subscribers()
	b.mu.Unlock()

	notify(subs, ev)
	return true
}

// Feedback returns the latest feedback for the active frame.
func (b *Bridge) Feedback() (Feedback, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.feedback == nil {
		return Feedback{}, false
	}
	return *b.feedback, true
}

// Phase returns the engine phase of the active frame.
func (b *Bridge) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return WaitingForEngine
	}
	return b.active.phase
}

// Unload tears down the active frame, if any. The bridge stays usable.
func (b *Bridge) Unload() {
	b.mu.Lock()
	f := b.active
	b.active = nil
	b.feedback = nil
	b.mu.Unlock()

	if f != nil {
		f.cancel()
		b.host.Unmount(f)
	}
}

// Close tears down the active frame. Further loads fail with ErrClosed.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.Unload()
}

// subscribers snapshots callbacks; b.mu must be held.
func (b *Bridge) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(b.subs))
	for i := 0; i < b.nextSub; i++ {
		if fn, ok := b.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
