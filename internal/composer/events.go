package composer

import "github.com/lagoonchat/lagoon/internal/api"

// EventKind discriminates composer events.
type EventKind int

const (
	// EventUploadProgress carries the aggregate progress of the running
	// upload batch.
	EventUploadProgress EventKind = iota + 1

	// EventBatchSettled fires when an upload batch finishes. Attachments
	// holds the batch in file order on success; Err is set on failure (the
	// whole batch was discarded).
	EventBatchSettled

	// EventDraftCleared fires after the draft was cleared; Epoch is the new
	// input reset token the widget binding must act on.
	EventDraftCleared

	// EventMessageSent fires when a send was confirmed by the server.
	EventMessageSent

	// EventSendFailed fires when a send failed at the transport layer and
	// was reconciled (text restored, Draft.LastError set).
	EventSendFailed

	// EventSendFatal fires when a send failed for a non-transport reason.
	// Nothing was reconciled; Err carries the unexpected error.
	EventSendFatal

	// EventNotice carries a user-facing notice (currently only the
	// attachment-limit warning, which also goes to the Notifier).
	EventNotice
)

// Event is a state-change notification published to the hosting UI. Exactly
// the fields relevant to Kind are set.
type Event struct {
	Kind        EventKind
	Progress    float64
	Attachments []api.Attachment
	Epoch       uint64
	Message     api.ChatMessage
	Err         error
	Notice      string
}

// eventBufferSize bounds the event channel. Progress events are frequent but
// droppable; the UI re-reads the draft on every event anyway.
const eventBufferSize = 64

// publish delivers an event without ever blocking a pipeline goroutine. If
// the UI is not draining, the event is dropped; draft state remains the
// source of truth.
func (c *Composer) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
