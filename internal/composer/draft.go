package composer

import (
	"sync"

	"github.com/lagoonchat/lagoon/internal/api"
)

// Snapshot is an immutable copy of the sendable part of a draft, captured at
// send time so reconciliation can restore it without relying on closures.
type Snapshot struct {
	Content     string
	Attachments []api.Attachment
}

// IsEmpty reports whether there is nothing to send.
func (s Snapshot) IsEmpty() bool {
	return len(s.Content) == 0 && len(s.Attachments) == 0
}

// MediaIDs returns the attachment IDs in insertion order.
func (s Snapshot) MediaIDs() []string {
	if len(s.Attachments) == 0 {
		return nil
	}
	ids := make([]string, len(s.Attachments))
	for i, att := range s.Attachments {
		ids[i] = att.ID
	}
	return ids
}

// Draft is the in-memory state of the message being composed. One Draft is
// owned by one open chat panel and discarded when the panel closes.
//
// All methods are safe for concurrent use: the UI loop mutates text while
// upload and send goroutines update counters and apply reconciliation.
type Draft struct {
	mu             sync.Mutex
	content        string
	attachments    []api.Attachment
	pendingUploads int
	uploadProgress float64
	lastError      string
	resetEpoch     uint64
	fileResetEpoch uint64
}

// NewDraft creates an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Content returns the current unsent text.
func (d *Draft) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// SetContent replaces the draft text.
func (d *Draft) SetContent(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = s
}

// AppendText appends to the draft text.
func (d *Draft) AppendText(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content += s
}

// InsertNewline appends a line break to the draft text.
func (d *Draft) InsertNewline() {
	d.AppendText("\n")
}

// Attachments returns a copy of the attachment sequence in insertion order.
func (d *Draft) Attachments() []api.Attachment {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]api.Attachment, len(d.attachments))
	copy(out, d.attachments)
	return out
}

// AttachmentCount returns the number of ready attachments.
func (d *Draft) AttachmentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.attachments)
}

// SetAttachments replaces the attachment sequence.
func (d *Draft) SetAttachments(list []api.Attachment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachments = make([]api.Attachment, len(list))
	copy(d.attachments, list)
}

// appendAttachments appends a settled upload batch, preserving both the
// existing order and the batch's file order.
func (d *Draft) appendAttachments(batch []api.Attachment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachments = append(d.attachments, batch...)
}

// RemoveAttachment removes the attachment at index i. Removal is local and
// synchronous; the already-uploaded media is simply never referenced. The
// file reset epoch is bumped so a bound file-picker widget can reset itself.
// Returns false if i is out of range.
func (d *Draft) RemoveAttachment(i int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.attachments) {
		return false
	}
	d.attachments = append(d.attachments[:i], d.attachments[i+1:]...)
	d.fileResetEpoch++
	return true
}

// PendingUploads returns the size of the outstanding upload batch, 0 when
// idle. It never survives a settled batch, success or failure.
func (d *Draft) PendingUploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingUploads
}

// UploadProgress returns the aggregate progress of the current batch in
// [0,1].
func (d *Draft) UploadProgress() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploadProgress
}

// beginBatch marks n uploads outstanding.
func (d *Draft) beginBatch(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingUploads = n
	d.uploadProgress = 0
}

// setUploadProgress republishes the aggregate batch progress.
func (d *Draft) setUploadProgress(f float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploadProgress = f
}

// endBatch resets the upload counters. Called on both success and failure.
func (d *Draft) endBatch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingUploads = 0
	d.uploadProgress = 0
}

// LastError returns the human-readable message of the most recent failed
// send, empty when the last send succeeded.
func (d *Draft) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

func (d *Draft) setLastError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastError = msg
}

// restoreContent puts pre-send text back after a failed send.
func (d *Draft) restoreContent(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = s
}

// ResetEpoch returns the token the input widget binding watches; it changes
// on every successful clear.
func (d *Draft) ResetEpoch() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resetEpoch
}

// FileResetEpoch returns the token the file-picker binding watches; it
// changes on attachment removal and on clear.
func (d *Draft) FileResetEpoch() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fileResetEpoch
}

// Snapshot captures the sendable state of the draft.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	atts := make([]api.Attachment, len(d.attachments))
	copy(atts, d.attachments)
	return Snapshot{Content: d.content, Attachments: atts}
}

// Clear resets text, attachments and upload counters, and bumps both reset
// epochs. Used for the optimistic-send clear and for user cancel. Returns
// the new input reset epoch.
func (d *Draft) Clear() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = ""
	d.attachments = nil
	d.pendingUploads = 0
	d.uploadProgress = 0
	d.resetEpoch++
	d.fileResetEpoch++
	return d.resetEpoch
}
