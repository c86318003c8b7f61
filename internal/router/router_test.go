package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	states  int
	keys    int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case screen.StateMsg:
		s.states++
	case tea.KeyPressMsg:
		s.keys++
	}
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopMsg(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Update(PushScreenMsg{Screen: &stubScreen{title: "second"}})
	r.Update(PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.View(80, 24) != "first" {
		t.Errorf("expected view 'first', got %q", r.View(80, 24))
	}
}

func TestPopNoopAtRoot(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at root, got %d", r.Depth())
	}
}

func TestStateFansOutToWholeStack(t *testing.T) {
	s1 := &stubScreen{title: "console"}
	s2 := &stubScreen{title: "controls"}
	r := New(s1)
	r.Push(s2)

	r.Update(screen.StateMsg{State: play.State{Index: 1, Total: 3}})
	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	if s1.states != 1 || s2.states != 1 {
		t.Errorf("expected both screens to get the state, got %d and %d", s1.states, s2.states)
	}
	if s1.keys != 0 || s2.keys != 1 {
		t.Errorf("expected only the active screen to get keys, got %d and %d", s1.keys, s2.keys)
	}
}
