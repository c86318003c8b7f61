package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/session"
)

// Relay turns session changes and bridge events into published events.
// Publish failures are logged and never reach the caller.
type Relay struct {
	pub Publisher
	now func() time.Time

	mu      sync.Mutex
	current *position
}

// position is a copy of the session fields attached to bridge events, so
// that bridge goroutines never read the live session.
type position struct {
	id    string
	index int
	total int
}

// NewRelay creates a relay publishing to pub.
func NewRelay(pub Publisher) *Relay {
	return &Relay{pub: pub, now: time.Now}
}

// Observe implements session.Observer.
func (r *Relay) Observe(ctx context.Context, c session.Change) {
	r.mu.Lock()
	if c.Kind == session.ChangeCleared || c.Session == nil {
		r.current = nil
	} else {
		r.current = &position{id: c.Session.ID, index: c.To, total: c.Session.Len()}
	}
	r.mu.Unlock()

	e := Event{At: r.now().UTC(), Index: c.To}
	switch c.Kind {
	case session.ChangeCreated:
		e.Type = SessionCreated
	case session.ChangeNavigate:
		e.Type = SessionNavigated
	case session.ChangeCleared:
		e.Type = SessionCleared
	default:
		return
	}
	if c.Session != nil {
		e.SessionID = c.Session.ID
		e.Total = c.Session.Len()
	}
	r.publish(ctx, e)
}

// BridgeEvent is a bridge subscriber.
func (r *Relay) BridgeEvent(ev bridge.Event) {
	e := Event{At: r.now().UTC(), FrameID: ev.FrameID}

	r.mu.Lock()
	if p := r.current; p != nil {
		e.SessionID = p.id
		e.Index = p.index
		e.Total = p.total
	}
	r.mu.Unlock()

	switch ev.Kind {
	case bridge.EventMounted:
		e.Type = GameMounted
	case bridge.EventPhase:
		e.Type = EngineWrapped
	case bridge.EventFeedback:
		e.Type = AnswerFeedback
		ok := ev.Feedback.IsCorrect
		e.IsCorrect = &ok
		e.Explanation = ev.Feedback.Explanation
		e.ChoiceIndex = ev.Message.ChoiceIndex
	default:
		return
	}
	r.publish(context.Background(), e)
}

func (r *Relay) publish(ctx context.Context, e Event) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.pub.Publish(ctx, e); err != nil {
		log.Printf("events: publish %s: %v", e.Type, err)
	}
}
