package composer

import "errors"

// Sentinel errors for composer operations, checked with errors.Is().
var (
	// ErrNoFiles indicates Submit was called with an empty file list.
	ErrNoFiles = errors.New("no files to upload")

	// ErrAttachmentLimit indicates the batch would exceed the attachment
	// limit. No network call has been made.
	ErrAttachmentLimit = errors.New("attachment limit exceeded")

	// ErrUploadInFlight indicates a second batch was submitted while one is
	// still outstanding. The draft offers one batch at a time; retry after
	// the current batch settles.
	ErrUploadInFlight = errors.New("upload batch already in flight")

	// ErrUploadFailed indicates at least one file in the batch failed and the
	// whole batch was discarded.
	ErrUploadFailed = errors.New("upload failed")

	// ErrEmptyDraft indicates a send of a draft with no content and no
	// attachments. Nothing was sent and no state changed.
	ErrEmptyDraft = errors.New("draft is empty")

	// ErrSendInFlight indicates a send was requested while one is already
	// pending for this chat. The request is a no-op.
	ErrSendInFlight = errors.New("send already in flight")
)

// genericSendFailure is shown when the server gives no error message.
const genericSendFailure = "Message failed to send."
