// Package session sequences assembled game instances and persists playback
// position across restarts.
package session

import (
	"time"

	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/templates"
)

// GameInstance is one question bound to one template. Code is the injected
// document, computed once at assembly.
type GameInstance struct {
	Question quiz.Question      `json:"question"`
	Template templates.Template `json:"template"`
	Code     string             `json:"codeWithQuestion"`
}

// Session is the ordered set of instances plus the current position.
// A Session always has at least one instance and 0 <= Index < len(Instances).
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Instances []GameInstance `json:"instances"`
	Index     int            `json:"index"`
}

// Len returns the number of instances.
func (s *Session) Len() int { return len(s.Instances) }

// Current returns the instance at Index.
func (s *Session) Current() GameInstance { return s.Instances[s.Index] }

// HasPrev reports whether a previous instance exists.
func (s *Session) HasPrev() bool { return s.Index > 0 }

// HasNext reports whether a next instance exists.
func (s *Session) HasNext() bool { return s.Index+1 < len(s.Instances) }

// Progress returns the fraction of instances reached, counting the current one.
func (s *Session) Progress() float64 {
	if len(s.Instances) == 0 {
		return 0
	}
	return float64(s.Index+1) / float64(len(s.Instances))
}

// Clamp limits i to [0, n-1]. n must be positive.
func Clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// valid reports whether a rehydrated session satisfies its invariants.
func (s *Session) valid() bool {
	return s != nil && len(s.Instances) > 0 && s.Index >= 0 && s.Index < len(s.Instances)
}
