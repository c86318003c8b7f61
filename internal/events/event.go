// Package events publishes play activity (sessions assembled, navigation,
// answer feedback) to a message broker or the process log.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Type names an event.
type Type string

const (
	SessionCreated   Type = "session.created"
	SessionNavigated Type = "session.navigated"
	SessionCleared   Type = "session.cleared"
	GameMounted      Type = "game.mounted"
	EngineWrapped    Type = "game.engine_wrapped"
	AnswerFeedback   Type = "game.feedback"
)

// Event is the JSON body published for each activity.
type Event struct {
	Type        Type      `json:"type"`
	At          time.Time `json:"at"`
	SessionID   string    `json:"sessionId,omitempty"`
	Index       int       `json:"index"`
	Total       int       `json:"total,omitempty"`
	FrameID     string    `json:"frameId,omitempty"`
	IsCorrect   *bool     `json:"isCorrect,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	ChoiceIndex *int      `json:"choiceIndex,omitempty"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the standard logger.
type LogPublisher struct {
	logger *log.Logger
}

// NewLogPublisher returns a publisher writing to logger, or to the standard
// logger when logger is nil.
func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.logger.Printf("event %s %s", e.Type, b)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
