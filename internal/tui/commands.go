package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/lagoonchat/lagoon/internal/composer"
)

// composerEventMsg wraps one pipeline event for the Bubble Tea loop.
type composerEventMsg struct {
	event composer.Event
}

// attachSettledMsg reports the outcome of a blocking attach call. The
// per-file state changes arrive separately through composerEventMsg.
type attachSettledMsg struct {
	err error
}

// listenForEvents creates a command that waits for the next pipeline event.
// The channel is never closed, so the panel context bounds the wait; on
// cancellation the command returns nothing and is not re-armed.
func listenForEvents(ctx context.Context, events <-chan composer.Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		select {
		case ev := <-events:
			return composerEventMsg{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

// attachFiles creates a command that uploads the given files as one batch.
// Submit blocks until the batch settles, which is exactly what a tea.Cmd
// goroutine is for; the UI stays responsive and renders progress from the
// events that arrive in the meantime.
func attachFiles(ctx context.Context, comp *composer.Composer, paths []string) tea.Cmd {
	return func() tea.Msg {
		return attachSettledMsg{err: comp.AttachFiles(ctx, paths)}
	}
}
