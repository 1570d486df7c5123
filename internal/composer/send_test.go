package composer

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/log"
)

// fakeMessageClient returns a canned outcome and records every request.
// block, when non-nil, holds the request open until closed.
type fakeMessageClient struct {
	mu    sync.Mutex
	calls []api.CreateMessageParams
	msg   api.ChatMessage
	err   error
	block chan struct{}
}

func (f *fakeMessageClient) CreateChatMessage(ctx context.Context, params api.CreateMessageParams) (api.ChatMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return api.ChatMessage{}, ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return api.ChatMessage{}, ctx.Err()
	}
	return f.msg, f.err
}

func (f *fakeMessageClient) requests() []api.CreateMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.CreateMessageParams, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeAcceptClient struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeAcceptClient) AcceptChat(ctx context.Context, chatID string) (api.Chat, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatID)
	f.mu.Unlock()
	if f.err != nil {
		return api.Chat{}, f.err
	}
	return api.Chat{ID: chatID, Accepted: true}, nil
}

func (f *fakeAcceptClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// eventRecorder collects published events for post-Wait assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *eventRecorder) has(kind EventKind) bool {
	for _, k := range r.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func newTestSender(msgClient *fakeMessageClient, acceptClient *fakeAcceptClient) (*Sender, *Draft, *eventRecorder) {
	draft := NewDraft()
	rec := &eventRecorder{}
	acceptor := NewAcceptor(acceptClient, log.NewNop())
	return NewSender(msgClient, acceptor, draft, rec.publish, log.NewNop()), draft, rec
}

func TestSendClearsDraftBeforeDelivery(t *testing.T) {
	client := &fakeMessageClient{block: make(chan struct{})}
	s, draft, rec := newTestSender(client, &fakeAcceptClient{})
	draft.SetContent("hello")
	draft.SetAttachments([]api.Attachment{{ID: "a1"}})

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// The draft is empty the moment Send returns, while the request is
	// still open.
	if got := draft.Content(); got != "" {
		t.Errorf("Content() = %q, want empty right after Send", got)
	}
	if got := draft.AttachmentCount(); got != 0 {
		t.Errorf("AttachmentCount() = %d, want 0 right after Send", got)
	}
	if !s.Sending() {
		t.Error("Sending() = false while the request is open")
	}
	if !rec.has(EventDraftCleared) {
		t.Error("EventDraftCleared not published before delivery settled")
	}

	close(client.block)
	s.Wait()

	if s.Sending() {
		t.Error("Sending() = true after delivery settled")
	}
	if !rec.has(EventMessageSent) {
		t.Errorf("events = %v, want EventMessageSent", rec.kinds())
	}

	reqs := client.requests()
	if len(reqs) != 1 {
		t.Fatalf("CreateChatMessage called %d times, want 1", len(reqs))
	}
	if reqs[0].ChatID != "c1" || reqs[0].Content != "hello" {
		t.Errorf("request = %+v, want chat c1 with content %q", reqs[0], "hello")
	}
	if len(reqs[0].MediaIDs) != 1 || reqs[0].MediaIDs[0] != "a1" {
		t.Errorf("request MediaIDs = %v, want [a1]", reqs[0].MediaIDs)
	}
}

func TestSendTransportFailureRestoresTextOnly(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantLast string
	}{
		{
			name:     "server error message",
			err:      &api.HTTPError{StatusCode: 429, Message: "Rate limited"},
			wantLast: "Rate limited",
		},
		{
			name:     "http error without message",
			err:      &api.HTTPError{StatusCode: 500},
			wantLast: genericSendFailure,
		},
		{
			name:     "connection failure",
			err:      &url.Error{Op: "Post", URL: "https://example.test", Err: errors.New("connection refused")},
			wantLast: genericSendFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMessageClient{err: tt.err}
			s, draft, rec := newTestSender(client, &fakeAcceptClient{})
			draft.SetContent("please keep me")
			draft.SetAttachments([]api.Attachment{{ID: "gone"}})

			if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			s.Wait()

			if got := draft.Content(); got != "please keep me" {
				t.Errorf("Content() = %q, want the pre-send text restored", got)
			}
			if got := draft.AttachmentCount(); got != 0 {
				t.Errorf("AttachmentCount() = %d, want 0 (attachments are consumed)", got)
			}
			if got := draft.LastError(); got != tt.wantLast {
				t.Errorf("LastError() = %q, want %q", got, tt.wantLast)
			}
			if !rec.has(EventSendFailed) {
				t.Errorf("events = %v, want EventSendFailed", rec.kinds())
			}
			if s.Sending() {
				t.Error("Sending() = true after the failure settled")
			}
		})
	}
}

func TestSendFatalFailureDoesNotRestore(t *testing.T) {
	client := &fakeMessageClient{err: errors.New("json: cannot unmarshal")}
	s, draft, rec := newTestSender(client, &fakeAcceptClient{})
	draft.SetContent("text")

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	s.Wait()

	if got := draft.Content(); got != "" {
		t.Errorf("Content() = %q, want empty (no rollback on fatal errors)", got)
	}
	if got := draft.LastError(); got != "" {
		t.Errorf("LastError() = %q, want empty", got)
	}
	if !rec.has(EventSendFatal) {
		t.Errorf("events = %v, want EventSendFatal", rec.kinds())
	}
}

func TestSendSuccessClearsLastError(t *testing.T) {
	client := &fakeMessageClient{msg: api.ChatMessage{ID: "m1"}}
	s, draft, _ := newTestSender(client, &fakeAcceptClient{})
	draft.setLastError("Rate limited")
	draft.SetContent("retry")

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	s.Wait()

	if got := draft.LastError(); got != "" {
		t.Errorf("LastError() = %q, want empty after a delivered send", got)
	}
}

func TestSendAcceptsUnacceptedChat(t *testing.T) {
	tests := []struct {
		name        string
		accepted    bool
		wantAccepts int
	}{
		{name: "not yet accepted", accepted: false, wantAccepts: 1},
		{name: "already accepted", accepted: true, wantAccepts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepts := &fakeAcceptClient{}
			s, draft, _ := newTestSender(&fakeMessageClient{}, accepts)
			draft.SetContent("hi")

			if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: tt.accepted}); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			s.Wait()

			if got := accepts.callCount(); got != tt.wantAccepts {
				t.Errorf("AcceptChat called %d times, want %d", got, tt.wantAccepts)
			}
		})
	}
}

func TestSendAcceptFailureDoesNotAffectDelivery(t *testing.T) {
	accepts := &fakeAcceptClient{err: errors.New("boom")}
	client := &fakeMessageClient{msg: api.ChatMessage{ID: "m1"}}
	s, draft, rec := newTestSender(client, accepts)
	draft.SetContent("hi")

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: false}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	s.Wait()

	if !rec.has(EventMessageSent) {
		t.Errorf("events = %v, want EventMessageSent despite accept failure", rec.kinds())
	}
	if got := draft.LastError(); got != "" {
		t.Errorf("LastError() = %q, want empty", got)
	}
}

func TestSendEmptyDraft(t *testing.T) {
	client := &fakeMessageClient{}
	s, _, rec := newTestSender(client, &fakeAcceptClient{})

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); !errors.Is(err, ErrEmptyDraft) {
		t.Fatalf("Send() error = %v, want ErrEmptyDraft", err)
	}
	if len(client.requests()) != 0 {
		t.Error("CreateChatMessage called for an empty draft")
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("events = %v, want none for an empty-draft no-op", rec.kinds())
	}
}

func TestSendRejectsConcurrentSend(t *testing.T) {
	client := &fakeMessageClient{block: make(chan struct{})}
	s, draft, _ := newTestSender(client, &fakeAcceptClient{})
	draft.SetContent("first")

	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}

	draft.SetContent("second")
	if err := s.Send(context.Background(), api.Chat{ID: "c1", Accepted: true}); !errors.Is(err, ErrSendInFlight) {
		t.Errorf("second Send() error = %v, want ErrSendInFlight", err)
	}
	if got := draft.Content(); got != "second" {
		t.Errorf("Content() = %q, want the rejected send to leave the draft alone", got)
	}

	close(client.block)
	s.Wait()
}

func TestSendAbandonedOnCancel(t *testing.T) {
	client := &fakeMessageClient{block: make(chan struct{})}
	s, draft, rec := newTestSender(client, &fakeAcceptClient{})
	draft.SetContent("going nowhere")

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Send(ctx, api.Chat{ID: "c1", Accepted: true}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	cancel()
	s.Wait()

	// Abandoned sends are discarded without reconciliation.
	if got := draft.Content(); got != "" {
		t.Errorf("Content() = %q, want empty (no rollback for abandoned sends)", got)
	}
	if rec.has(EventSendFailed) || rec.has(EventSendFatal) || rec.has(EventMessageSent) {
		t.Errorf("events = %v, want only EventDraftCleared for an abandoned send", rec.kinds())
	}
	if s.Sending() {
		t.Error("Sending() = true after the abandoned send settled")
	}
}
