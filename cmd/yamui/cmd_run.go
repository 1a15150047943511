package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"yamui/engine"
	"yamui/schema"
)

var runCmd = &cobra.Command{
	Use:   "run <schema.yaml>",
	Short: "Drive a schema interactively in the terminal",
	Long: "Drive a schema interactively: focus buttons, fire their click\n" +
		"actions, and watch navigation and state updates live.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchemaFile(args[0])
		if err != nil {
			return err
		}
		e, err := newEngine()
		if err != nil {
			return err
		}
		if err := e.LoadSchema(s); err != nil {
			return err
		}
		m := newRunModel(e, s)
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

type runKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Fire  key.Binding
	Back  key.Binding
	Quit  key.Binding
	State key.Binding
}

func (k runKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Fire, k.Back, k.State, k.Quit}
}

func (k runKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Fire}, {k.Back, k.State, k.Quit}}
}

var runKeys = runKeyMap{
	Next:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next button")),
	Prev:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous button")),
	Fire:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press button")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close modal / back")),
	State: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle state panel")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type runModel struct {
	eng       *engine.Engine
	sch       *schema.Schema
	focus     int
	showState bool
	status    string
	help      help.Model
}

func newRunModel(e *engine.Engine, s *schema.Schema) *runModel {
	m := &runModel{eng: e, sch: s, focus: -1, help: help.New()}
	m.focus = m.nextButton(-1, 1)
	return m
}

func (m *runModel) Init() tea.Cmd { return nil }

// currentWidgets returns the widget list the user is interacting with: the
// open modal's component when one is up, otherwise the current screen.
func (m *runModel) currentWidgets() []schema.Widget {
	if modal := m.eng.ActiveModal(); modal != "" {
		if c, ok := m.sch.Component(modal); ok {
			return c.Widgets
		}
	}
	if tpl, ok := m.sch.Template(m.eng.CurrentScreen()); ok {
		return tpl.Widgets
	}
	return nil
}

// nextButton finds the next focusable widget from start in direction dir.
func (m *runModel) nextButton(start, dir int) int {
	widgets := m.currentWidgets()
	if len(widgets) == 0 {
		return -1
	}
	i := start
	for range widgets {
		i += dir
		if i < 0 {
			i = len(widgets) - 1
		}
		if i >= len(widgets) {
			i = 0
		}
		if widgets[i].Kind == schema.KindButton {
			return i
		}
	}
	return -1
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	prevScreen := m.eng.CurrentScreen()
	prevModal := m.eng.ActiveModal()

	switch {
	case key.Matches(keyMsg, runKeys.Quit):
		return m, tea.Quit

	case key.Matches(keyMsg, runKeys.Next):
		m.focus = m.nextButton(m.focus, 1)

	case key.Matches(keyMsg, runKeys.Prev):
		m.focus = m.nextButton(m.focus, -1)

	case key.Matches(keyMsg, runKeys.State):
		m.showState = !m.showState

	case key.Matches(keyMsg, runKeys.Back):
		var err error
		if m.eng.ActiveModal() != "" {
			err = m.eng.CloseModal()
		} else {
			err = m.eng.PopScreen()
		}
		if err != nil {
			m.status = err.Error()
		} else {
			m.status = ""
		}

	case key.Matches(keyMsg, runKeys.Fire):
		if m.focus >= 0 {
			m.status = ""
			if err := m.fireClick(m.focus); err != nil {
				m.status = err.Error()
			}
		}
	}

	// Focus is per widget list; pick a fresh button when the list changed.
	if m.eng.CurrentScreen() != prevScreen || m.eng.ActiveModal() != prevModal {
		m.focus = m.nextButton(-1, 1)
	}
	return m, nil
}

// fireClick routes a click to the modal's component widget or the screen
// widget under focus.
func (m *runModel) fireClick(index int) error {
	if modal := m.eng.ActiveModal(); modal != "" {
		c, ok := m.sch.Component(modal)
		if !ok || index >= len(c.Widgets) {
			return nil
		}
		return m.runList(c.Widgets[index])
	}
	return m.eng.HandleWidgetEvent(index, schema.EventClick)
}

func (m *runModel) runList(w schema.Widget) error {
	return m.eng.RunActions(w.Events[schema.EventClick])
}

func (m *runModel) View() string {
	tpl, ok := m.sch.Template(m.eng.CurrentScreen())
	if !ok {
		return "no screen loaded\n"
	}
	focus := m.focus
	if m.eng.ActiveModal() != "" {
		focus = -1
	}
	out := renderTemplate(m.eng, m.sch, tpl, focus)
	if m.showState {
		out += "\n" + renderStatePanel(m.eng)
	}
	if m.status != "" {
		out += "\n" + dimStyle.Render(m.status)
	}
	return out + "\n" + m.help.View(runKeys) + "\n"
}

func renderStatePanel(e *engine.Engine) string {
	keys := e.State.Keys()
	if len(keys) == 0 {
		return dimStyle.Render("state: (empty)")
	}
	out := headingStyle.Render("state") + "\n"
	for _, k := range keys {
		out += fmt.Sprintf("  %s = %q\n", k, e.State.GetString(k, ""))
	}
	return out
}
