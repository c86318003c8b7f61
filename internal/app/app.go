// Package app is the operator console shown while the play view is served.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/router"
	"github.com/abhisek/quizarcade/internal/screen"
	"github.com/abhisek/quizarcade/internal/screens/console"
	"github.com/abhisek/quizarcade/internal/ui/layout"
)

const pollInterval = time.Second

// refreshMsg asks the app to re-read the controller state.
type refreshMsg struct{}

// pollMsg drives the periodic refresh that picks up changes made from the
// browser, such as navigation or a new upload.
type pollMsg time.Time

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	ctrl   console.Controller
	addr   string
	width  int
	height int
}

func newAppModel(ctrl console.Controller, addr string) AppModel {
	return AppModel{
		router: router.New(console.New(ctrl, addr)),
		ctrl:   ctrl,
		addr:   addr,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), poll())
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func (m AppModel) fetch() tea.Cmd {
	return func() tea.Msg { return screen.StateMsg{State: m.ctrl.State()} }
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m, m.fetch()

	case pollMsg:
		return m, tea.Batch(m.fetch(), poll())

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.addr, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run shows the console until the operator quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *play.Controller, addr string) error {
	p := tea.NewProgram(newAppModel(ctrl, addr))

	// Bridge callbacks can run under the controller lock, so only post a
	// message here and read the state from a command.
	unsubscribe := ctrl.Subscribe(func(bridge.Event) {
		go p.Send(refreshMsg{})
	})
	defer unsubscribe()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running console:", err)
		return err
	}
	return nil
}
