package bridge

import (
	"context"
)

// Phase tracks the reporting shim inside a mounted document.
type Phase int

const (
	// WaitingForEngine: the shim is polling for the template's engine.
	WaitingForEngine Phase = iota
	// EngineWrapped: the engine's end operation now reports quiz-end.
	EngineWrapped
)

func (p Phase) String() string {
	switch p {
	case WaitingForEngine:
		return "waiting for engine"
	case EngineWrapped:
		return "engine wrapped"
	default:
		return "unknown"
	}
}

// Frame is the handle for one mounted document. A Frame is the capability a
// host uses to deliver messages; only the bridge's active Frame is honoured.
type Frame struct {
	id          string
	code        string
	fingerprint string

	ctx    context.Context
	cancel context.CancelFunc

	// guarded by the owning Bridge's mutex
	phase Phase
}

func newFrame(id, code, fingerprint string) *Frame {
	ctx, cancel := context.WithCancel(context.Background())
	return &Frame{
		id:          id,
		code:        code,
		fingerprint: fingerprint,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the unguessable frame identifier handed to the host page.
func (f *Frame) ID() string { return f.id }

// Code returns the executable document.
func (f *Frame) Code() string { return f.code }

// Fingerprint returns the content fingerprint of the document.
func (f *Frame) Fingerprint() string { return f.fingerprint }

// Done is closed when the frame is torn down. Host-side loops serving this
// frame (socket pumps, timers) must stop when it fires.
func (f *Frame) Done() <-chan struct{} { return f.ctx.Done() }

// Context returns a context cancelled on teardown.
func (f *Frame) Context() context.Context { return f.ctx }

func (f *Frame) torn() bool { return f.ctx.Err() != nil }
