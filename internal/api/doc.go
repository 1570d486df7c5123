// Package api is the client for the remote chat service (a Pleroma/Akkoma
// style HTTP API).
//
// The composer core talks to three endpoints through this package:
//
//   - media upload: one file per call, with per-chunk progress reporting
//   - chat message creation: {content, media_ids} with an idempotency key
//   - chat acceptance: one-shot accept of an incoming chat
//
// ListChats and ListMessages exist for the hosting CLI/TUI surfaces.
//
// Error contract: any non-2xx response is returned as *HTTPError carrying the
// status code and the server-supplied "error" message when present.
// Connection-level failures are returned wrapped without an *HTTPError.
// Callers classify with errors.As.
package api
