package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/lagoonchat/lagoon/internal/composer"
)

// Slash command constants.
const (
	cmdHelp   = "/help"
	cmdAttach = "/attach"
	cmdRemove = "/remove"
	cmdClear  = "/clear"
	cmdExit   = "/exit"
	cmdQuit   = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	Attach     key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		Attach:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/attach", "attach file")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "clear/quit")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()
	m.notice = ""

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		// Enter submits, Shift+Enter falls through to the textarea as a
		// newline.
		if k.Mod&tea.ModShift == 0 {
			return m.handleSubmit()
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncDraft()
	m.resizeViewport()
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	// Single Ctrl+C discards the draft, attachments included.
	m.composer.Draft().Clear()
	m.input.Reset()
	m.input.SetHeight(1)
	m.resizeViewport()
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(value, "/") {
		return m.handleSlashCommand(value)
	}

	m.syncDraft()
	err := m.composer.Send(m.ctx, m.chat)
	switch {
	case errors.Is(err, composer.ErrEmptyDraft):
		// Nothing to send, nothing to do.
		return m, nil
	case errors.Is(err, composer.ErrSendInFlight):
		m.notice = "Still sending the previous message..."
		m.rebuildViewportContent()
		return m, nil
	}

	// The textarea reset happens when the EventDraftCleared epoch arrives,
	// keeping widget state and draft state in lockstep.
	return m, nil
}

func (m *Model) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case cmdHelp:
		m.notice = "Commands: /attach <file>..., /remove <n>, /clear, /quit" +
			" | Enter: send, Shift+Enter: newline, Ctrl+C: discard draft, Ctrl+D: exit"

	case cmdAttach:
		if len(args) == 0 {
			m.notice = "Usage: /attach <file>..."
			break
		}
		m.resetInput()
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, attachFiles(m.ctx, m.composer, args))

	case cmdRemove:
		if len(args) != 1 {
			m.notice = "Usage: /remove <attachment number>"
			break
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || !m.composer.Draft().RemoveAttachment(n-1) {
			m.notice = "No attachment " + args[0]
			break
		}
		m.resetInput()

	case cmdClear:
		m.messages = nil
		m.resetInput()

	case cmdExit, cmdQuit:
		return m, m.cleanup()

	default:
		m.notice = "Unknown command: " + cmd
	}

	if strings.HasPrefix(m.input.Value(), "/") {
		m.resetInput()
	}
	m.rebuildViewportContent()
	return m, nil
}

// resetInput clears the textarea without touching the draft's message text;
// slash commands are never part of the message.
func (m *Model) resetInput() {
	m.input.Reset()
	m.input.SetHeight(1)
	m.composer.Draft().SetContent("")
	m.resizeViewport()
}

// cleanup cancels all in-flight pipeline work and quits. Abandoned sends
// and uploads are discarded without reconciliation.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}
