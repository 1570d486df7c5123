// Package tui provides the Bubble Tea terminal interface for Lagoon.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/composer"
	"github.com/lagoonchat/lagoon/internal/log"
)

// Memory bound to prevent unbounded growth of the message pane.
const maxMessages = 200

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	statusLines    = 1 // Attachment / error status line
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// Model is the Bubble Tea model for one open chat panel.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input     textarea.Model
	lastCtrlC time.Time

	// The composition pipeline owning the draft for this panel. The
	// textarea is the source of truth while typing; every keystroke is
	// mirrored into the draft, and the draft's reset epoch flows back to
	// reset the textarea after an optimistic clear.
	composer      *composer.Composer
	lastSeenEpoch uint64

	chat     api.Chat
	messages []api.ChatMessage
	notice   string // Transient notice line, cleared on next keystroke

	// Scrollable message viewport
	viewport viewport.Model
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations

	// Upload feedback
	spinner  spinner.Model
	progress progress.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	ctx       context.Context
	ctxCancel context.CancelFunc // Cancels in-flight pipeline work on exit

	logger log.Logger

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// Config contains all required parameters for a chat panel.
type Config struct {
	Composer *composer.Composer
	Chat     api.Chat
	Logger   log.Logger

	// History is the initial message backlog, oldest first.
	History []api.ChatMessage
}

// New creates a Model for one chat panel.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, cfg Config) (*Model, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if cfg.Composer == nil {
		return nil, errors.New("tui.New: composer is required")
	}
	if cfg.Chat.ID == "" {
		return nil, errors.New("tui.New: chat is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("tui.New: logger is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Write a message..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport with built-in keys disabled; keys are routed explicitly in
	// handleKey to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	messages := cfg.History
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	m := &Model{
		composer:  cfg.Composer,
		chat:      cfg.Chat,
		messages:  append([]api.ChatMessage(nil), messages...),
		ctx:       ctx,
		ctxCancel: cancel,
		logger:    cfg.Logger,
		input:     ta,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultBlend()),
		viewport:  vp,
		help:      help.New(),
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		markdown:  newMarkdownRenderer(80),
		width:     80, // Default width until WindowSizeMsg arrives
	}
	m.rebuildViewportContent()
	m.viewport.GotoBottom()
	return m, nil
}

// addMessage appends a message and enforces the maxMessages bound.
func (m *Model) addMessage(msg api.ChatMessage) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
		listenForEvents(m.ctx, m.composer.Events()),
	)
}
