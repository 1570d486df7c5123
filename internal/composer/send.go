package composer

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/log"
)

// MessageClient is the slice of the API client the sender needs.
type MessageClient interface {
	CreateChatMessage(ctx context.Context, params api.CreateMessageParams) (api.ChatMessage, error)
}

// sendState is the per-attempt state machine:
//
//	idle → sending(snapshot) → idle          (delivered)
//	                         → failed(snapshot, message) → idle (recovered)
//
// failed's recovery restores the snapshot's text into the draft; attachments
// are treated as consumed and are not restored.
type sendState int

const (
	stateIdle sendState = iota
	stateSending
	stateFailed
)

// Sender submits draft snapshots to the remote chat service.
//
// The draft is cleared optimistically before the request is issued, so the
// input is immediately ready for the next message; reconciliation happens
// when the request settles. A second Send while one is pending is a no-op.
type Sender struct {
	client   MessageClient
	acceptor *Acceptor
	draft    *Draft
	publish  func(Event)
	logger   log.Logger

	mu       sync.Mutex
	state    sendState
	snapshot Snapshot // Captured for the in-flight or failed attempt
	failMsg  string

	wg sync.WaitGroup
}

// NewSender creates a sender bound to a draft. publish may be nil.
func NewSender(client MessageClient, acceptor *Acceptor, draft *Draft, publish func(Event), logger log.Logger) *Sender {
	if publish == nil {
		publish = func(Event) {}
	}
	return &Sender{
		client:   client,
		acceptor: acceptor,
		draft:    draft,
		publish:  publish,
		logger:   logger,
	}
}

// Send captures the draft, clears it optimistically, and delivers the
// snapshot asynchronously.
//
// Returns ErrEmptyDraft when there is nothing to send and ErrSendInFlight
// when a send is already pending; both leave all state untouched. In every
// other case the draft is empty by the time Send returns, whatever the
// eventual network outcome.
//
// If the chat has not been accepted by the local user, the acceptance
// request is triggered alongside the send. The two settle independently, in
// any order; acceptance failure never rolls back the send.
func (s *Sender) Send(ctx context.Context, chat api.Chat) error {
	snap := s.draft.Snapshot()
	if snap.IsEmpty() {
		return ErrEmptyDraft
	}

	s.mu.Lock()
	if s.state == stateSending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.state = stateSending
	s.snapshot = snap
	s.failMsg = ""
	s.mu.Unlock()

	// Optimistic clear: the input is usable again before the server answers.
	epoch := s.draft.Clear()
	s.publish(Event{Kind: EventDraftCleared, Epoch: epoch})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(ctx, chat, snap)
	}()

	if !chat.Accepted {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.acceptor.Accept(ctx, chat.ID)
		}()
	}

	return nil
}

// Sending reports whether a send is currently pending.
func (s *Sender) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateSending
}

// Wait blocks until all in-flight sends and acceptance requests have
// settled. Used by tests and panel teardown.
func (s *Sender) Wait() {
	s.wg.Wait()
}

// deliver performs the network call and reconciles the outcome back into the
// draft.
func (s *Sender) deliver(ctx context.Context, chat api.Chat, snap Snapshot) {
	msg, err := s.client.CreateChatMessage(ctx, api.CreateMessageParams{
		ChatID:   chat.ID,
		Content:  snap.Content,
		MediaIDs: snap.MediaIDs(),
	})
	if err == nil {
		s.toIdle()
		s.draft.setLastError("")
		s.publish(Event{Kind: EventMessageSent, Message: msg})
		return
	}

	// The panel is closing; the abandoned attempt is discarded without
	// reconciliation, there is no UI left to reconcile into.
	if ctx.Err() != nil {
		s.toIdle()
		s.logger.Debug("send abandoned", "chat_id", chat.ID, "error", err)
		return
	}

	if msg, ok := transportFailureMessage(err); ok {
		s.fail(msg)
		s.recoverFailure()
		s.publish(Event{Kind: EventSendFailed, Err: err})
		return
	}

	// Non-transport failure: nothing is rolled back, the error is surfaced
	// loudly instead of being absorbed into draft state.
	s.toIdle()
	s.logger.Error("unexpected send failure", "chat_id", chat.ID, "error", err)
	s.publish(Event{Kind: EventSendFatal, Err: err})
}

func (s *Sender) toIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateIdle
}

// fail records the failed attempt with its snapshot and message.
func (s *Sender) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFailed
	s.failMsg = msg
}

// recoverFailure applies the failed state's recovery action: the captured
// text returns to the draft for the user to retry, the attachments stay
// consumed, and the failure message lands in Draft.LastError.
func (s *Sender) recoverFailure() {
	s.mu.Lock()
	if s.state != stateFailed {
		s.mu.Unlock()
		return
	}
	snap, msg := s.snapshot, s.failMsg
	s.state = stateIdle
	s.mu.Unlock()

	s.draft.restoreContent(snap.Content)
	s.draft.setLastError(msg)
}

// transportFailureMessage classifies err. Transport-class failures (an HTTP
// error response or a connection-level failure) are recoverable: the
// returned message is the server's error text when it sent one, otherwise a
// generic notice. Anything else is unexpected and not recovered.
func transportFailureMessage(err error) (string, bool) {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message, true
		}
		return genericSendFailure, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return genericSendFailure, true
	}

	return "", false
}
