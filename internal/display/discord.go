package display

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/permanent"
)

// DiscordSurface drives product display messages over the Discord REST API.
// Params: API base, bot token, and bounded HTTP client.
// Returns: Surface implementation for Discord channels.
type DiscordSurface struct {
	client  *http.Client
	apiBase string
	token   string
}

// NewDiscordSurface builds a Discord display client from runtime config.
// Params: cfg display section.
// Returns: ready surface client with bounded request timeout.
func NewDiscordSurface(cfg config.DisplayConfig) *DiscordSurface {
	return &DiscordSurface{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		token:   cfg.BotToken,
	}
}

// createdMessage is the minimal create-message response shape.
type createdMessage struct {
	ID string `json:"id"`
}

// CreateMessage posts a new display message to one channel.
// Params: ctx, channel surface ID, and rendered content.
// Returns: platform message ID or delivery error.
func (s *DiscordSurface) CreateMessage(ctx context.Context, surfaceID string, content MessageContent) (string, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", s.apiBase, surfaceID)
	body, err := s.do(ctx, http.MethodPost, endpoint, content)
	if err != nil {
		return "", err
	}

	var created createdMessage
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create response carries no message id")
	}
	return created.ID, nil
}

// FetchMessage reads an existing display message.
// Params: ctx, channel surface ID, and message ID.
// Returns: current content, ErrNotFound when the message was deleted.
func (s *DiscordSurface) FetchMessage(ctx context.Context, surfaceID, messageID string) (MessageContent, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", s.apiBase, surfaceID, messageID)
	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return MessageContent{}, err
	}

	var content MessageContent
	if err := json.Unmarshal(body, &content); err != nil {
		return MessageContent{}, fmt.Errorf("decode fetch response: %w", err)
	}
	return content, nil
}

// EditMessage patches an existing display message in place.
// Params: ctx, channel surface ID, message ID, and replacement content.
// Returns: ErrNotFound when the message was deleted, delivery error otherwise.
func (s *DiscordSurface) EditMessage(ctx context.Context, surfaceID, messageID string, content MessageContent) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", s.apiBase, surfaceID, messageID)
	_, err := s.do(ctx, http.MethodPatch, endpoint, content)
	return err
}

// do executes one authenticated JSON request against the platform API.
// Params: ctx, HTTP method, endpoint URL, and JSON payload.
// Returns: response body; 404 maps to ErrNotFound, other 4xx are permanent.
func (s *DiscordSurface) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode message payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build display request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+s.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("display request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read display response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("display API rate limited")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, permanent.Mark(fmt.Errorf("display API rejected request with status %d", resp.StatusCode))
	default:
		return nil, fmt.Errorf("display API responded with status %d", resp.StatusCode)
	}
}
