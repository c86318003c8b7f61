package events

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/session"
)

type memPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (m *memPublisher) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

func (m *memPublisher) Close() error { return nil }

func newTestRelay(pub Publisher) *Relay {
	r := NewRelay(pub)
	r.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func testSession() *session.Session {
	return &session.Session{ID: "s-1", Instances: make([]session.GameInstance, 3), Index: 1}
}

func TestRelay_SessionChanges(t *testing.T) {
	pub := &memPublisher{}
	r := newTestRelay(pub)
	s := testSession()

	r.Observe(context.Background(), session.Change{Kind: session.ChangeCreated, Session: s})
	r.Observe(context.Background(), session.Change{Kind: session.ChangeNavigate, Session: s, From: 0, To: 1})
	r.Observe(context.Background(), session.Change{Kind: session.ChangeCleared, Session: s})

	require.Len(t, pub.events, 3)
	assert.Equal(t, SessionCreated, pub.events[0].Type)
	assert.Equal(t, "s-1", pub.events[0].SessionID)
	assert.Equal(t, 3, pub.events[0].Total)
	assert.Equal(t, SessionNavigated, pub.events[1].Type)
	assert.Equal(t, 1, pub.events[1].Index)
	assert.Equal(t, SessionCleared, pub.events[2].Type)
}

func TestRelay_BridgeEventsCarrySessionPosition(t *testing.T) {
	pub := &memPublisher{}
	r := newTestRelay(pub)
	r.Observe(context.Background(), session.Change{Kind: session.ChangeNavigate, Session: testSession(), To: 1})

	idx := 2
	r.BridgeEvent(bridge.Event{Kind: bridge.EventMounted, FrameID: "f1"})
	r.BridgeEvent(bridge.Event{Kind: bridge.EventPhase, FrameID: "f1", Phase: bridge.EngineWrapped})
	r.BridgeEvent(bridge.Event{
		Kind:     bridge.EventFeedback,
		FrameID:  "f1",
		Feedback: bridge.Feedback{IsCorrect: false, Explanation: "nope"},
		Message:  bridge.Message{Type: bridge.TypeChoice, ChoiceIndex: &idx},
	})

	require.Len(t, pub.events, 4)
	assert.Equal(t, GameMounted, pub.events[1].Type)
	assert.Equal(t, EngineWrapped, pub.events[2].Type)

	fb := pub.events[3]
	assert.Equal(t, AnswerFeedback, fb.Type)
	assert.Equal(t, "s-1", fb.SessionID)
	assert.Equal(t, 1, fb.Index)
	require.NotNil(t, fb.IsCorrect)
	assert.False(t, *fb.IsCorrect)
	assert.Equal(t, "nope", fb.Explanation)
	require.NotNil(t, fb.ChoiceIndex)
	assert.Equal(t, 2, *fb.ChoiceIndex)
}

func TestRelay_PublishErrorIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	pub := &memPublisher{err: errors.New("broker down")}
	r := newTestRelay(pub)
	r.Observe(context.Background(), session.Change{Kind: session.ChangeCreated, Session: testSession()})

	assert.Contains(t, buf.String(), "broker down")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(log.New(&buf, "", 0))

	ok := true
	require.NoError(t, p.Publish(context.Background(), Event{Type: AnswerFeedback, IsCorrect: &ok}))
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "event game.feedback "))
	assert.Contains(t, line, `"isCorrect":true`)
	assert.NoError(t, p.Close())
}
