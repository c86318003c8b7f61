// Package console is the operator's view of the running session: position,
// prompt, engine phase and the latest feedback, with navigation keys.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/router"
	"github.com/abhisek/quizarcade/internal/screen"
	"github.com/abhisek/quizarcade/internal/screens/controls"
	"github.com/abhisek/quizarcade/internal/ui/components"
	"github.com/abhisek/quizarcade/internal/ui/layout"
)

const actionTimeout = 10 * time.Second

// Controller is the part of play.Controller the console drives.
type Controller interface {
	State() play.State
	Mount(ctx context.Context) (play.State, error)
	GoTo(ctx context.Context, index int) (play.State, error)
	Next(ctx context.Context) (play.State, error)
	Prev(ctx context.Context) (play.State, error)
	Exit()
}

// ConsoleScreen implements screen.Screen.
type ConsoleScreen struct {
	ctrl   Controller
	addr   string
	state  play.State
	goTo   *components.NumberInput
	errMsg string
}

var _ screen.Screen = (*ConsoleScreen)(nil)
var _ screen.KeyHintProvider = (*ConsoleScreen)(nil)

// New creates the console. addr is the play view URL shown to the operator.
func New(ctrl Controller, addr string) *ConsoleScreen {
	return &ConsoleScreen{ctrl: ctrl, addr: addr, state: ctrl.State()}
}

func (s *ConsoleScreen) Init() tea.Cmd {
	return s.refresh()
}

func (s *ConsoleScreen) Title() string {
	if !s.state.Active {
		return "No active session"
	}
	return components.NewProgressBar(s.state.Index, s.state.Total, 0).Label()
}

func (s *ConsoleScreen) KeyHints() []layout.KeyHint {
	if s.goTo != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "←/p", Description: "Prev"},
		{Key: "→/n", Description: "Next"},
		{Key: "g", Description: "Go to"},
		{Key: "c", Description: "Controls"},
		{Key: "m", Description: "Mount"},
		{Key: "x", Description: "Unmount"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *ConsoleScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.state = msg.State
		return s, nil

	case screen.ErrMsg:
		s.errMsg = describe(msg.Err)
		return s, nil

	case tea.KeyPressMsg:
		if s.goTo != nil {
			return s.handleGoToKey(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ConsoleScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	switch msg.String() {
	case "right", "n":
		return s, s.run(s.ctrl.Next)
	case "left", "p":
		return s, s.run(s.ctrl.Prev)
	case "m":
		return s, s.run(s.ctrl.Mount)
	case "x":
		return s, func() tea.Msg {
			s.ctrl.Exit()
			return screen.StateMsg{State: s.ctrl.State()}
		}
	case "g":
		if !s.state.Active {
			s.errMsg = describe(errNoSession)
			return s, nil
		}
		in := components.NewNumberInput(fmt.Sprintf("1-%d", s.state.Total), 6)
		s.goTo = &in
		return s, in.Init()
	case "c":
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: controls.New(s.state)}
		}
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

func (s *ConsoleScreen) handleGoToKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.goTo = nil
		return s, nil
	case "enter":
		n, err := s.goTo.Value()
		s.goTo = nil
		if err != nil {
			return s, nil
		}
		return s, s.run(func(ctx context.Context) (play.State, error) {
			return s.ctrl.GoTo(ctx, n-1)
		})
	}
	in, cmd := s.goTo.Update(msg)
	s.goTo = &in
	return s, cmd
}

// run performs a controller action off the update loop.
func (s *ConsoleScreen) run(action func(context.Context) (play.State, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		st, err := action(ctx)
		if err != nil {
			return screen.ErrMsg{Err: err}
		}
		return screen.StateMsg{State: st}
	}
}

func (s *ConsoleScreen) refresh() tea.Cmd {
	return func() tea.Msg {
		return screen.StateMsg{State: s.ctrl.State()}
	}
}

var errNoSession = errors.New("no active session")

func describe(err error) string {
	if play.IsNoSession(err) || errors.Is(err, errNoSession) {
		return "No active session. Upload a document in the play view first."
	}
	return err.Error()
}
