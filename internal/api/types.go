package api

import "time"

// Attachment is a media descriptor produced by the upload endpoint.
// Attachments are immutable once created; the draft holds them by value
// until send time, after which the sent message owns them.
type Attachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // "image", "video", "audio", "unknown"
	URL         string `json:"url"`
	PreviewURL  string `json:"preview_url"`
	Description string `json:"description"`
}

// Account is the minimal account shape the chat surfaces need.
type Account struct {
	ID          string `json:"id"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
}

// Chat is a direct-message conversation with one other account.
// Accepted is false for chats initiated by the other party that the local
// user has not yet accepted; the composer triggers acceptance on first send.
type Chat struct {
	ID          string       `json:"id"`
	Account     Account      `json:"account"`
	Accepted    bool         `json:"accepted"`
	Unread      int          `json:"unread"`
	LastMessage *ChatMessage `json:"last_message"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ChatMessage is one delivered message within a chat.
type ChatMessage struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chat_id"`
	AccountID   string       `json:"account_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"media_attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreateMessageParams is the request payload for sending a chat message.
// MediaIDs preserves the draft's attachment insertion order; the server
// renders attachments in this order.
type CreateMessageParams struct {
	ChatID   string   `json:"-"`
	Content  string   `json:"content,omitempty"`
	MediaIDs []string `json:"media_ids,omitempty"`
}
