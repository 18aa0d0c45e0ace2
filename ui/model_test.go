package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
)

// quickGen answers at once; modifiers containing failOn fail.
type quickGen struct {
	failOn string
}

func (g quickGen) Generate(_ context.Context, source, modifier string) (string, error) {
	if g.failOn != "" && strings.Contains(modifier, g.failOn) {
		return "", errors.New("quota exceeded")
	}
	return "Re: " + source, nil
}

func newTestModel(t *testing.T, gen generator.TextGenerator) (Model, *generator.Session, *host.MemoryClipboard, *host.RecordingNotifier) {
	t.Helper()
	s, err := generator.NewSession(gen, generator.DefaultVariants())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	cb := &host.MemoryClipboard{}
	rec := &host.RecordingNotifier{}
	m := NewModel(s, Deps{Clipboard: cb, Notifier: rec, Theme: LightTheme})
	return m, s, cb, rec
}

// drain feeds every queued session event through Update.
func drain(t *testing.T, m Model, s *generator.Session) Model {
	t.Helper()
	m, _ = drainCmds(t, m, s)
	return m
}

// drainCmds is drain that also returns the commands Update produced.
func drainCmds(t *testing.T, m Model, s *generator.Session) (Model, []tea.Cmd) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	var cmds []tea.Cmd
	for {
		select {
		case ev := <-m.events:
			next, cmd := m.Update(eventMsg{ev: ev})
			m = next.(Model)
			cmds = append(cmds, cmd)
		default:
			return m, cmds
		}
	}
}

// runCmds executes cmds and any batches they return. The subscription
// must be closed first so event waits return at once.
func runCmds(cmds []tea.Cmd) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if batch, ok := cmd().(tea.BatchMsg); ok {
			runCmds(batch)
		}
	}
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_ShowsCompletedReplies(t *testing.T) {
	m, s, _, rec := newTestModel(t, quickGen{failOn: "5-7"})
	require.NoError(t, s.StartAll("Can we meet on Friday?"))
	m, cmds := drainCmds(t, m, s)

	out := m.View()
	assert.Contains(t, out, "Short")
	assert.Contains(t, out, "(Generated)")
	assert.Contains(t, out, "(Failed)")

	assert.Empty(t, rec.Sent(), "notifications are sent from commands, not from Update")
	assert.Regexp(t, "Reply Generated|Generation Error", m.status)

	s.Close()
	runCmds(cmds)
	var titles []string
	for _, n := range rec.Sent() {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"Reply Generated", "Reply Generated", "Generation Error"}, titles)
}

func TestModel_Navigation(t *testing.T) {
	m, s, _, _ := newTestModel(t, quickGen{})
	require.NoError(t, s.StartAll("hello"))
	m = drain(t, m, s)

	m, _ = press(m, "down")
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, "j")
	m, _ = press(m, "j")
	assert.Equal(t, 2, m.cursor, "cursor stops at the last row")
	m, _ = press(m, "k")
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, "1")
	assert.Equal(t, 0, m.cursor)
	m, _ = press(m, "3")
	assert.Equal(t, 2, m.cursor)
	m, _ = press(m, "9")
	assert.Equal(t, 2, m.cursor)
}

func TestModel_CopyReplyAndOriginal(t *testing.T) {
	m, s, cb, _ := newTestModel(t, quickGen{})

	m, _ = press(m, "enter")
	assert.Empty(t, cb.Text, "nothing to copy before generation")
	assert.Equal(t, "Reply is not ready yet", m.status)

	require.NoError(t, s.StartAll("Thanks for the update"))
	m = drain(t, m, s)

	m, _ = press(m, "c")
	assert.Equal(t, "Re: Thanks for the update", cb.Text)
	assert.Equal(t, "Copied Short reply", m.status)

	cb.Text = ""
	m, _ = press(m, "o")
	assert.Equal(t, "Thanks for the update", cb.Text)
}

func TestModel_RegenerateFailedSlot(t *testing.T) {
	m, s, _, _ := newTestModel(t, quickGen{failOn: "about 1 line"})
	require.NoError(t, s.StartAll("ping"))
	m = drain(t, m, s)

	sl, ok := m.current()
	require.True(t, ok)
	require.Equal(t, generator.StatusFailed, sl.Status)
	epoch := sl.Epoch

	m, _ = press(m, "r")
	assert.Contains(t, m.status, "Regenerating Short reply")
	m = drain(t, m, s)

	sl, _ = m.current()
	assert.Greater(t, sl.Epoch, epoch)
}

func TestModel_Quit(t *testing.T) {
	m, _, _, _ := newTestModel(t, quickGen{})
	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// the subscription is closed, so the pending event wait returns
	msg := waitForEvent(m.events)()
	assert.IsType(t, eventsClosedMsg{}, msg)
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("QUICK_ACTIONS_THEME", "")
	t.Setenv("COLORFGBG", "")
	assert.Equal(t, "light", DetectTheme("light").Name)
	assert.Equal(t, "dark", DetectTheme("").Name)

	t.Setenv("COLORFGBG", "0;15")
	assert.Equal(t, "light", DetectTheme("").Name)

	t.Setenv("QUICK_ACTIONS_THEME", "dark")
	assert.Equal(t, "dark", DetectTheme("").Name)
}

func TestModel_RendererBuiltOncePerSize(t *testing.T) {
	m, s, _, _ := newTestModel(t, quickGen{})
	require.NoError(t, s.StartAll("hello"))
	m = drain(t, m, s)

	require.NotNil(t, m.renderer)
	assert.Equal(t, "light", m.glamourStyle)
	first := m.renderer

	m, _ = press(m, "down")
	_ = m.View()
	m, _ = press(m, "up")
	out := m.View()
	assert.Same(t, first, m.renderer, "key presses reuse the renderer")
	assert.Contains(t, out, "Suggested Reply")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.NotSame(t, first, m.renderer, "resize rebuilds the renderer")
	assert.Equal(t, "light", m.glamourStyle)
}
