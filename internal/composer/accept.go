package composer

import (
	"context"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/log"
)

// AcceptClient is the slice of the API client the acceptor needs.
type AcceptClient interface {
	AcceptChat(ctx context.Context, chatID string) (api.Chat, error)
}

// Acceptor triggers the one-time "accept chat" transition when the local
// user first sends into a chat they have not accepted.
//
// Each call issues exactly one mutation request; there is no internal
// deduplication. Callers check Chat.Accepted first, which makes the call
// idempotent in intent: accepting an already-accepted chat is a server-side
// no-op.
type Acceptor struct {
	client AcceptClient
	logger log.Logger
}

// NewAcceptor creates an acceptor.
func NewAcceptor(client AcceptClient, logger log.Logger) *Acceptor {
	return &Acceptor{client: client, logger: logger}
}

// Accept requests the chat's accepted transition. The outcome is not
// surfaced to the user; failures are logged and the next send tries again.
func (a *Acceptor) Accept(ctx context.Context, chatID string) error {
	chat, err := a.client.AcceptChat(ctx, chatID)
	if err != nil {
		a.logger.Warn("chat accept failed", "chat_id", chatID, "error", err)
		return err
	}

	a.logger.Debug("chat accepted", "chat_id", chat.ID)
	return nil
}
