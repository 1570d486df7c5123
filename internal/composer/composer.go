package composer

import (
	"context"
	"errors"
	"fmt"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/log"
)

// Notifier is the notification sink for user-facing notices the draft state
// cannot carry. The pipeline calls it exactly when the attachment limit is
// exceeded; every other error surfaces through Draft.LastError or Events.
type Notifier interface {
	Error(msg string)
}

// limitNotice matches the original client's upload-limit toast.
const limitNotice = "File upload limit exceeded."

// Client is the full remote-service surface the pipeline consumes.
// *api.Client satisfies it.
type Client interface {
	UploadClient
	MessageClient
	AcceptClient
}

// Config contains all required parameters for a Composer.
type Config struct {
	Client   Client
	Notifier Notifier
	Logger   log.Logger

	// AttachmentLimit is the externally supplied maximum number of
	// attachments per message for this session.
	AttachmentLimit int
}

// validate checks that all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Client == nil {
		return errors.New("client is required")
	}
	if cfg.Notifier == nil {
		return errors.New("notifier is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.AttachmentLimit < 1 {
		return fmt.Errorf("attachment limit must be positive, got %d", cfg.AttachmentLimit)
	}
	return nil
}

// Composer owns one draft and coordinates its uploads and sends. Create one
// per open chat panel and drop it when the panel closes; drafts are not
// persisted.
type Composer struct {
	draft    *Draft
	uploads  *UploadManager
	sender   *Sender
	notifier Notifier
	logger   log.Logger
	events   chan Event
}

// New creates a Composer for one chat panel.
func New(cfg Config) (*Composer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("composer.New: %w", err)
	}

	c := &Composer{
		draft:    NewDraft(),
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		events:   make(chan Event, eventBufferSize),
	}

	c.uploads = NewUploadManager(cfg.Client, c.draft, cfg.AttachmentLimit, cfg.Logger)
	c.uploads.onProgress = func(f float64) {
		c.publish(Event{Kind: EventUploadProgress, Progress: f})
	}

	acceptor := NewAcceptor(cfg.Client, cfg.Logger)
	c.sender = NewSender(cfg.Client, acceptor, c.draft, c.publish, cfg.Logger)

	return c, nil
}

// Draft returns the draft owned by this composer. The UI mutates text and
// removes attachments through it directly.
func (c *Composer) Draft() *Draft {
	return c.draft
}

// Events returns the composer's event stream. The channel is never closed;
// it dies with the composer.
func (c *Composer) Events() <-chan Event {
	return c.events
}

// Uploading reports whether an upload batch is outstanding.
func (c *Composer) Uploading() bool {
	return c.uploads.InFlight()
}

// Sending reports whether a send is pending.
func (c *Composer) Sending() bool {
	return c.sender.Sending()
}

// AttachFiles uploads the given files as one batch. On success the
// attachments are already in the draft, in file order, by the time this
// returns. Blocks until the batch settles; run it from a worker goroutine.
//
// When the batch would exceed the attachment limit, the notifier fires, no
// network call is made, and ErrAttachmentLimit is returned.
func (c *Composer) AttachFiles(ctx context.Context, paths []string) error {
	batch, err := c.uploads.Submit(ctx, paths)
	if err != nil {
		if errors.Is(err, ErrAttachmentLimit) {
			c.notifier.Error(limitNotice)
			c.publish(Event{Kind: EventNotice, Notice: limitNotice})
			return err
		}
		if errors.Is(err, ErrUploadFailed) {
			c.publish(Event{Kind: EventBatchSettled, Err: err})
		}
		return err
	}

	c.publish(Event{Kind: EventBatchSettled, Attachments: batch})
	return nil
}

// Send submits the current draft to the given chat. See Sender.Send.
func (c *Composer) Send(ctx context.Context, chat api.Chat) error {
	return c.sender.Send(ctx, chat)
}

// Wait blocks until all in-flight asynchronous work has settled. Used by
// tests and panel teardown.
func (c *Composer) Wait() {
	c.sender.Wait()
}
