package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/lagoonchat/lagoon/internal/api"
)

// Lagoon teal for branding.
const lagoonTeal = "#2AA198"

// Styles contains all lipgloss styles for the chat panel.
type Styles struct {
	Header     lipgloss.Style
	Self       lipgloss.Style
	Peer       lipgloss.Style
	Attachment lipgloss.Style
	Notice     lipgloss.Style
	Error      lipgloss.Style
	Prompt     lipgloss.Style
	Separator  lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(lagoonTeal)),
		Self:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Peer:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Attachment: lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		Notice:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderHeader returns the panel header naming the conversation partner.
func (s Styles) RenderHeader(chat api.Chat) string {
	var b strings.Builder
	name := chat.Account.DisplayName
	if name == "" {
		name = chat.Account.Acct
	}
	_, _ = b.WriteString(s.Header.Render("lagoon: chat with " + name + " (@" + chat.Account.Acct + ")"))
	_, _ = b.WriteString("\n")
	if !chat.Accepted {
		_, _ = b.WriteString(s.Notice.Render("You have not accepted this chat yet. Sending a message accepts it."))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
