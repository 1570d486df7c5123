package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable message history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Status line: upload progress wins, then the last send error, then
	// attachment chips, then a transient notice.
	_, _ = m.viewBuf.WriteString(m.renderStatusLine())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderHelpBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the message
// backlog. Called when messages or dimensions change.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderHeader(m.chat))
	_, _ = b.WriteString("\n")

	for _, msg := range m.messages {
		mine := msg.AccountID != m.chat.Account.ID
		if mine {
			_, _ = b.WriteString(m.styles.Self.Render("You> "))
		} else {
			_, _ = b.WriteString(m.styles.Peer.Render("@" + m.chat.Account.Acct + "> "))
		}
		if msg.Content != "" {
			_, _ = b.WriteString(m.markdown.Render(msg.Content))
		}
		for _, att := range msg.Attachments {
			if msg.Content != "" {
				_, _ = b.WriteString("\n")
			}
			_, _ = b.WriteString(m.styles.Attachment.Render("[" + att.Type + "] " + att.URL))
		}
		_, _ = b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

// renderStatusLine renders the single line between the messages and the
// input: upload progress, the last send failure, ready attachments, or a
// transient notice.
func (m *Model) renderStatusLine() string {
	draft := m.composer.Draft()

	if n := draft.PendingUploads(); n > 0 {
		noun := "file"
		if n > 1 {
			noun = "files"
		}
		return fmt.Sprintf("%s uploading %d %s %s",
			m.spinner.View(), n, noun, m.progress.View())
	}

	if lastErr := draft.LastError(); lastErr != "" {
		return m.styles.Error.Render(lastErr)
	}

	if atts := draft.Attachments(); len(atts) > 0 {
		chips := make([]string, len(atts))
		for i, att := range atts {
			chips[i] = m.styles.Attachment.Render(fmt.Sprintf("[%d:%s]", i+1, att.Type))
		}
		return strings.Join(chips, " ")
	}

	if m.notice != "" {
		return m.styles.Notice.Render(m.notice)
	}

	return ""
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderHelpBar returns the keyboard shortcut help.
func (m *Model) renderHelpBar() string {
	bindings := []key.Binding{
		m.keys.Submit, m.keys.NewLine, m.keys.Attach,
		m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
	}
	return m.help.ShortHelpView(bindings)
}
