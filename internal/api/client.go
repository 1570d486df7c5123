package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lagoonchat/lagoon/internal/config"
	"github.com/lagoonchat/lagoon/internal/log"
)

// rateBurst allows a short burst of requests (e.g. a multi-file upload batch
// starting at once) without tripping the client-side limiter.
const rateBurst = 4

// Client is a chat service API client.
//
// All requests pass through a client-side rate limiter so a misbehaving UI
// loop cannot hammer the server. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	uploadClient *http.Client // Separate timeout budget for media uploads
	limiter      *rate.Limiter
	logger       log.Logger
}

// New creates a chat service client from the application configuration.
func New(cfg *config.Config, logger log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api.New: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api.New: %w", err)
	}
	if logger == nil {
		return nil, fmt.Errorf("api.New: logger is required")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		token:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		},
		uploadClient: &http.Client{
			Timeout: time.Duration(cfg.UploadTimeoutSec) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), rateBurst),
		logger:  logger,
	}, nil
}

// CreateChatMessage sends a chat message: {content, media_ids} in the
// draft's attachment order. An Idempotency-Key header guards against
// duplicate delivery when the UI retries a send whose response was lost.
func (c *Client) CreateChatMessage(ctx context.Context, params CreateMessageParams) (ChatMessage, error) {
	if params.ChatID == "" {
		return ChatMessage{}, fmt.Errorf("create chat message: chat ID is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/pleroma/chats/%s/messages", c.baseURL, url.PathEscape(params.ChatID))

	var msg ChatMessage
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.makeRequest(ctx, http.MethodPost, endpoint, headers, params, &msg); err != nil {
		return ChatMessage{}, fmt.Errorf("create chat message: %w", err)
	}

	c.logger.Debug("chat message created",
		"chat_id", params.ChatID,
		"message_id", msg.ID,
		"media_count", len(params.MediaIDs))

	return msg, nil
}

// AcceptChat marks an incoming chat as accepted by the local user.
// One mutation request per call; idempotency is the server's concern.
func (c *Client) AcceptChat(ctx context.Context, chatID string) (Chat, error) {
	if chatID == "" {
		return Chat{}, fmt.Errorf("accept chat: chat ID is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/pleroma/chats/%s/accept", c.baseURL, url.PathEscape(chatID))

	var chat Chat
	if err := c.makeRequest(ctx, http.MethodPost, endpoint, nil, nil, &chat); err != nil {
		return Chat{}, fmt.Errorf("accept chat: %w", err)
	}

	return chat, nil
}

// GetChat retrieves a single chat by ID.
func (c *Client) GetChat(ctx context.Context, chatID string) (Chat, error) {
	if chatID == "" {
		return Chat{}, fmt.Errorf("get chat: chat ID is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/pleroma/chats/%s", c.baseURL, url.PathEscape(chatID))

	var chat Chat
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, nil, &chat); err != nil {
		return Chat{}, fmt.Errorf("get chat: %w", err)
	}

	return chat, nil
}

// ListChats retrieves the account's chats, most recently updated first.
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	endpoint := c.baseURL + "/api/v1/pleroma/chats"

	var chats []Chat
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, nil, &chats); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	return chats, nil
}

// ListMessages retrieves up to limit recent messages of a chat, newest first.
func (c *Client) ListMessages(ctx context.Context, chatID string, limit int) ([]ChatMessage, error) {
	if chatID == "" {
		return nil, fmt.Errorf("list messages: chat ID is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/pleroma/chats/%s/messages?limit=%d",
		c.baseURL, url.PathEscape(chatID), limit)

	var msgs []ChatMessage
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, nil, &msgs); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return msgs, nil
}

// makeRequest performs a JSON request against the chat service.
// Non-2xx responses become *HTTPError; connection failures are wrapped as-is.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, headers map[string]string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
