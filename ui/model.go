// Package ui is the interactive reply picker.
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
	"ai_quick_actions/view"
)

// eventMsg carries one session event into Update.
type eventMsg struct {
	ev generator.Event
}

// eventsClosedMsg means the subscription ended.
type eventsClosedMsg struct{}

// keyHint is one entry of the shortcut bar.
type keyHint struct {
	key  string
	desc string
}

var hints = []keyHint{
	{"↑↓", "navigate"},
	{"⏎", "copy"},
	{"r", "regenerate"},
	{"o", "copy original"},
	{"q", "quit"},
}

// Deps are the collaborators of the model.
type Deps struct {
	Clipboard host.Clipboard
	Notifier  host.Notifier
	Logger    *zap.SugaredLogger
	Theme     Theme
}

// Model 展示各个回复变体，随会话事件刷新。
type Model struct {
	session     *generator.Session
	events      <-chan generator.Event
	unsubscribe func()

	clipboard host.Clipboard
	notifier  host.Notifier
	logger    *zap.SugaredLogger
	styles    styles

	// detail pane renderer; rebuilt only on resize
	renderer     *glamour.TermRenderer
	glamourStyle string

	snap   generator.Snapshot
	cursor int
	status string
	width  int
	height int
}

// NewModel subscribes to session. Call it before starting generation so no
// event is missed; the model reads Snapshot on every event regardless.
func NewModel(session *generator.Session, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.Theme.Name == "" {
		deps.Theme = DarkTheme
	}
	events, unsubscribe := session.Subscribe()
	m := Model{
		session:     session,
		events:      events,
		unsubscribe: unsubscribe,
		clipboard:   deps.Clipboard,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		styles:       newStyles(deps.Theme),
		glamourStyle: deps.Theme.Name,
		snap:         session.Snapshot(),
		width:        80,
		height:       24,
	}
	m.rebuildRenderer()
	return m
}

func detailWidth(width int) int {
	return max(width-4, 40)
}

func (m *Model) rebuildRenderer() {
	r, err := view.NewTerminalRenderer(m.glamourStyle, detailWidth(m.width))
	if err != nil {
		m.logger.Warnw("markdown renderer unavailable", "style", m.glamourStyle, "error", err)
		r = nil
	}
	m.renderer = r
}

func waitForEvent(events <-chan generator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildRenderer()
		return m, nil

	case eventMsg:
		m.snap = m.session.Snapshot()
		if n, ok := CompletionNotification(msg.ev); ok {
			notifyCmd := m.notify(n)
			return m, tea.Batch(notifyCmd, waitForEvent(m.events))
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		m.unsubscribe()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Slots)-1 {
			m.cursor++
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(m.snap.Slots) {
			m.cursor = i
		}
	case "enter", "c":
		m.copyReply()
	case "r":
		m.regenerate()
	case "o":
		m.copyText(m.snap.Text, "Copied original text")
	}
	return m, nil
}

func (m *Model) current() (generator.SlotState, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Slots) {
		return generator.SlotState{}, false
	}
	return m.snap.Slots[m.cursor], true
}

func (m *Model) copyReply() {
	sl, ok := m.current()
	if !ok {
		return
	}
	if sl.Status != generator.StatusDone {
		m.status = "Reply is not ready yet"
		return
	}
	m.copyText(sl.Result, fmt.Sprintf("Copied %s reply", sl.Variant.Title))
}

func (m *Model) copyText(text, okMsg string) {
	if m.clipboard == nil {
		m.status = "Clipboard is not available"
		return
	}
	if err := m.clipboard.WriteText(text); err != nil {
		m.logger.Warnw("copy failed", "error", err)
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = okMsg
}

func (m *Model) regenerate() {
	sl, ok := m.current()
	if !ok {
		return
	}
	if sl.Status != generator.StatusDone && sl.Status != generator.StatusFailed {
		return
	}
	if err := m.session.Regenerate(sl.ID); err != nil {
		m.status = "Regenerate failed: " + err.Error()
		return
	}
	m.snap = m.session.Snapshot()
	m.status = fmt.Sprintf("Regenerating %s reply...", sl.Variant.Title)
}

// notify updates the status line and returns the desktop notification as a
// command, so a slow notifier never blocks Update.
func (m *Model) notify(n host.Notification) tea.Cmd {
	m.status = n.Title
	if n.Message != "" {
		m.status += ": " + n.Message
	}
	if m.notifier == nil {
		return nil
	}
	notifier := m.notifier
	return func() tea.Msg {
		notifier.Notify(context.Background(), n)
		return nil
	}
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("Reply Suggestions"))
	b.WriteString("  ")
	b.WriteString(s.subtitle.Render(view.Preview(m.snap.Text, 60)))
	b.WriteString("\n\n")

	var rows []string
	for i, sl := range m.snap.Slots {
		rows = append(rows, m.row(i, sl))
	}
	b.WriteString(s.list.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if sl, ok := m.current(); ok {
		md := view.DetailMarkdown(m.snap.Text, sl)
		b.WriteString(s.detail.Render(strings.TrimRight(view.Render(m.renderer, md), "\n")))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(s.status.Render(m.status))
		b.WriteString("\n")
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.kbdKey.Render(h.key)+" "+s.kbdDesc.Render(h.desc))
	}
	b.WriteString(strings.Join(parts, "  "))
	return b.String()
}

func (m Model) row(i int, sl generator.SlotState) string {
	s := m.styles
	pointer := "  "
	title := s.item.Render(sl.Variant.Title)
	if i == m.cursor {
		pointer = s.cursor.Render("❯ ")
		title = s.selected.Render(sl.Variant.Title)
	}

	suffix := view.StatusSuffix(sl.Status)
	switch sl.Status {
	case generator.StatusPending:
		suffix = s.pending.Render(suffix)
	case generator.StatusDone:
		suffix = s.done.Render(suffix)
	case generator.StatusFailed:
		suffix = s.failed.Render(suffix)
	}

	return fmt.Sprintf("%s%s %s%s  %s", pointer, s.accessory.Render(fmt.Sprintf("%d", i+1)), title, suffix, s.accessory.Render(sl.Variant.Length))
}

// Run shows the picker until the user quits or ctx ends.
func Run(ctx context.Context, m Model) error {
	defer m.unsubscribe()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
