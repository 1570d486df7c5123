// Package composer implements the chat message composition and delivery
// pipeline: the draft being typed, its pending attachments, concurrent
// upload batches, and send-time coordination with the remote chat service.
//
// Components:
//
//   - Draft: the in-memory state of the unsent message (text, attachments,
//     upload counters, reset epochs, last send error)
//   - UploadManager: admission-checks and drives one concurrent upload batch
//     at a time, all-or-nothing
//   - Sender: submits a draft snapshot, optimistically clearing the draft and
//     rolling the text back on transport failure
//   - Acceptor: fires the one-time chat acceptance when the first message is
//     sent into a not-yet-accepted chat
//   - Composer: the facade tying these together and publishing Events to the
//     hosting UI
//
// Concurrency model: the hosting UI owns the composer and calls it from its
// event loop; upload and send goroutines never mutate UI state directly.
// They mutate the mutex-guarded Draft and publish Events; the UI re-renders
// from Draft accessors when an Event arrives. The core never reads from the
// input widget; clearing is signalled one-directionally through the draft's
// reset epoch.
//
// Cancellation: every blocking operation takes a context. Closing the chat
// panel cancels the root context, aborting in-flight uploads and sends;
// their abandoned results are discarded.
package composer
