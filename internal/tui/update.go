package tui

import (
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/lagoonchat/lagoon/internal/composer"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.progress.SetWidth(min(msg.Width-4, 40))
		m.markdown.UpdateWidth(msg.Width)
		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case composerEventMsg:
		return m.handleComposerEvent(msg.event)

	case attachSettledMsg:
		// The state changes already arrived through pipeline events; the
		// settlement message only exists so failures reach the log.
		if msg.err != nil {
			m.logger.Debug("attach settled with error", "error", msg.err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncDraft()
	return m, cmd
}

// handleComposerEvent folds one pipeline event into the panel and re-arms
// the listener.
func (m *Model) handleComposerEvent(ev composer.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenForEvents(m.ctx, m.composer.Events())}

	switch ev.Kind {
	case composer.EventDraftCleared:
		// The reset epoch changed: the draft was cleared underneath the
		// textarea, so the textarea resets too. An unchanged epoch would
		// mean a stale event; the input is left alone then.
		if ev.Epoch != m.lastSeenEpoch {
			m.lastSeenEpoch = ev.Epoch
			m.input.Reset()
			m.input.SetHeight(1)
			m.resizeViewport()
		}

	case composer.EventUploadProgress:
		cmds = append(cmds, m.progress.SetPercent(ev.Progress))

	case composer.EventBatchSettled:
		// Success and failure both land here; the status line reads the
		// draft, so a rebuild is all that is needed.

	case composer.EventMessageSent:
		m.addMessage(ev.Message)
		m.notice = ""
		m.viewport.GotoBottom()

	case composer.EventSendFailed:
		// The pipeline already restored the text into the draft; pull it
		// back into the textarea so the user can edit and retry.
		m.input.SetValue(m.composer.Draft().Content())
		m.input.CursorEnd()

	case composer.EventSendFatal:
		m.logger.Error("send failed unexpectedly", "error", ev.Err)
		m.notice = "Something went wrong. Check the logs."

	case composer.EventNotice:
		m.notice = ev.Notice
	}

	m.rebuildViewportContent()
	return m, tea.Batch(cmds...)
}

// syncDraft mirrors the textarea into the draft. The textarea is the source
// of truth while the user types; the draft follows so that Send captures
// exactly what is on screen.
func (m *Model) syncDraft() {
	m.composer.Draft().SetContent(m.input.Value())
}

// resizeViewport recomputes the viewport height from the current terminal
// and input heights.
func (m *Model) resizeViewport() {
	inputHeight := m.input.Height() + promptLines
	fixedHeight := separatorLines + inputHeight + statusLines + helpLines
	vpHeight := max(m.height-fixedHeight, minViewport)
	m.viewport.SetWidth(m.width)
	m.viewport.SetHeight(vpHeight)
}
