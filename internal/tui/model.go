// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typemaster/internal/diff"
	"github.com/verte-zerg/typemaster/internal/generator"
	"github.com/verte-zerg/typemaster/internal/lesson"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/session"
	"github.com/verte-zerg/typemaster/internal/stats"
)

// redrawInterval only controls how often the clock is repainted; elapsed
// time itself is counted by the session.
const redrawInterval = 250 * time.Millisecond

// redrawMsg is tagged with the session it was scheduled for so that a
// restarted session does not inherit the old redraw loop.
type redrawMsg struct {
	sessionID string
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	session *session.Controller
	lessons *lesson.Sequencer
	library []model.Text
	picker  *generator.Picker
	text    model.Text
	mode    model.Mode

	input []rune

	width  int
	height int

	keys keyMap
	help help.Model
}

type keyMap struct {
	Quit     key.Binding
	Switch   key.Binding
	Restart  key.Binding
	Next     key.Binding
	Previous key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Switch:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch mode")),
		Restart:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restart")),
		Next:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new text")),
		Previous: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous lesson")),
	}
}

func (k keyMap) shortHelp(mode model.Mode) []key.Binding {
	next := k.Next
	prev := k.Previous
	if mode == model.ModeLessons {
		next.SetHelp("ctrl+n", "next lesson")
	} else {
		prev.SetEnabled(false)
	}
	return []key.Binding{k.Switch, k.Restart, next, prev, k.Quit}
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	activeTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a typing TUI model. ctrl must already hold text.Body
// as its reference.
func NewModel(ctrl *session.Controller, seq *lesson.Sequencer, library []model.Text, picker *generator.Picker, text model.Text, mode model.Mode) *Model {
	return &Model{
		session: ctrl,
		lessons: seq,
		library: library,
		picker:  picker,
		text:    text,
		mode:    mode,
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case redrawMsg:
		if msg.sessionID != m.session.ID() || m.session.Status() != session.Running {
			return m, nil
		}
		return m, redrawCmd(msg.sessionID)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Switch):
		m.switchMode()
		return nil
	case key.Matches(msg, m.keys.Restart):
		m.restart()
		return nil
	case key.Matches(msg, m.keys.Next):
		if m.mode == model.ModeLessons {
			if m.lessons.Next() {
				m.input = nil
			}
			return nil
		}
		m.newText()
		return nil
	case key.Matches(msg, m.keys.Previous):
		if m.mode == model.ModeLessons && m.lessons.Previous() {
			m.input = nil
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.input) == 0 {
			return nil
		}
		return m.setInput(m.input[:len(m.input)-1])
	case tea.KeySpace:
		return m.typeRunes([]rune{' '})
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		return m.typeRunes(msg.Runes)
	default:
		return nil
	}
}

func (m *Model) switchMode() {
	if m.mode == model.ModeTest {
		m.mode = model.ModeLessons
		m.lessons.Input("")
	} else {
		m.mode = model.ModeTest
		m.session.Reset(m.text.Body)
	}
	m.input = nil
}

func (m *Model) restart() {
	if m.mode == model.ModeLessons {
		m.lessons.Input("")
	} else {
		m.session.Reset(m.text.Body)
	}
	m.input = nil
}

func (m *Model) newText() {
	text, ok := m.picker.Pick(m.library, m.text.ID)
	if !ok {
		m.restart()
		return
	}
	m.text = text
	m.session.Reset(text.Body)
	m.input = nil
}

// typeRunes appends to the buffer, dropping anything past the reference end.
func (m *Model) typeRunes(runes []rune) tea.Cmd {
	limit := len(m.targetRunes())
	next := make([]rune, len(m.input), len(m.input)+len(runes))
	copy(next, m.input)
	for _, r := range runes {
		if len(next) >= limit {
			break
		}
		next = append(next, r)
	}
	if len(next) == len(m.input) {
		return nil
	}
	return m.setInput(next)
}

// setInput forwards the whole buffer to the active engine.
func (m *Model) setInput(next []rune) tea.Cmd {
	if m.mode == model.ModeLessons {
		m.input = next
		m.lessons.Input(string(next))
		return nil
	}
	wasIdle := m.session.Status() == session.Idle
	if err := m.session.Input(string(next)); err != nil {
		if !errors.Is(err, session.ErrFinished) {
			logErrf("failed to update session: %v\n", err)
		}
		return nil
	}
	m.input = next
	if wasIdle && m.session.Status() == session.Running {
		return redrawCmd(m.session.ID())
	}
	return nil
}

func redrawCmd(sessionID string) tea.Cmd {
	return tea.Tick(redrawInterval, func(time.Time) tea.Msg {
		return redrawMsg{sessionID: sessionID}
	})
}

func (m *Model) targetRunes() []rune {
	if m.mode == model.ModeLessons {
		return []rune(m.lessons.Current().Text)
	}
	return []rune(m.text.Body)
}

func (m *Model) classes() []diff.Class {
	if m.mode == model.ModeLessons {
		return m.lessons.Classes()
	}
	return m.session.Classes()
}

// View implements tea.Model.
func (m *Model) View() string {
	target := m.targetRunes()
	if len(target) == 0 {
		return ""
	}
	cursorIndex := -1
	if len(m.input) < len(target) {
		cursorIndex = len(m.input)
	}
	cells := styleCells(target, m.classes(), cursorIndex)
	header := m.renderHeader()
	footer := m.renderFooter()
	helpLine := m.help.ShortHelpView(m.keys.shortHelp(m.mode))
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, joinCells(cells), footer, helpLine}, "\n\n")
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := layoutCells(cells, contentWidth)
	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.NewStyle().Width(contentWidth).Render(wrapped),
	)
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpRow := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return body + "\n" + footerLine + "\n" + helpRow
}

func (m *Model) renderHeader() string {
	test := inactiveTabStyle.Render("Typing Test")
	lessons := inactiveTabStyle.Render("Lessons")
	if m.mode == model.ModeLessons {
		lessons = activeTabStyle.Render("Lessons")
	} else {
		test = activeTabStyle.Render("Typing Test")
	}
	title := m.text.Title
	if m.mode == model.ModeLessons {
		title = m.lessons.Current().Title
	}
	return test + "  " + lessons + "  " + footerStyle.Render(title)
}

func (m *Model) renderFooter() string {
	if m.mode == model.ModeLessons {
		return m.renderLessonFooter()
	}
	snap := m.session.Snapshot()
	clock := "Time " + stats.FormatClock(snap.ElapsedTicks)
	var segments []string
	switch snap.Status {
	case session.Idle:
		segments = []string{clock, "Start typing to begin"}
	case session.Running:
		segments = []string{clock, fmt.Sprintf("Progress %d%%", snap.Progress())}
	case session.Finished:
		segments = []string{
			fmt.Sprintf("%d WPM", snap.Result.WPM),
			fmt.Sprintf("Accuracy %d%%", snap.Result.Accuracy),
			fmt.Sprintf("Errors %d", snap.Result.Errors),
			clock,
		}
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) renderLessonFooter() string {
	total := len(m.targetRunes())
	progress := 0
	if total > 0 {
		progress = len(m.input) * 100 / total
	}
	segments := []string{
		fmt.Sprintf("Lesson %d/%d", m.lessons.Index()+1, m.lessons.Set().Len()),
		fmt.Sprintf("Progress %d%%", progress),
	}
	footer := footerStyle.Render(strings.Join(segments, " · "))
	if m.lessons.Complete() {
		footer += "  " + doneStyle.Render("Lesson Complete!")
	}
	return footer
}
