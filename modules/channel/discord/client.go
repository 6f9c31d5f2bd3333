// Package discord implements the Discord channel for linkshade: a typed
// REST client, a realtime gateway socket, and the conversion layer that
// turns dispatch payloads into platform-neutral lifecycle events.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // prevent unbounded reads from API responses
)

// Client is a thin HTTP wrapper around the Discord REST API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Discord REST client. requestsPerSecond bounds
// the global request rate; Discord's own per-route limits are handled
// reactively via 429 retries.
func NewClient(token, baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 25
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// do sends a JSON request to the given route and decodes the response.
// It waits for the rate limiter, and handles 429 responses with
// Retry-After (max 3 attempts, exponential fallback when the header is
// absent).
func do[T any](ctx context.Context, c *Client, method, path string, payload any) (*T, error) {
	url := c.baseURL + path

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("discord: marshal %s %s request: %w", method, path, err)
		}
	}

	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("discord: create %s %s request: %w", method, path, err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Wrap without the raw URL to avoid leaking routes with ids in
			// error messages seen by operators. The original error is still
			// available via Unwrap.
			return nil, fmt.Errorf("discord: %s %s failed: %w", method, path, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("discord: read %s %s response: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			wait := backoff
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.ParseFloat(ra, 64); err == nil && secs > 0 {
					wait = time.Duration(secs * float64(time.Second))
				}
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{Status: resp.StatusCode}
			_ = json.Unmarshal(respBody, apiErr)
			return nil, apiErr
		}

		var result T
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &result); err != nil {
				return nil, fmt.Errorf("discord: decode %s %s response: %w", method, path, err)
			}
		}
		return &result, nil
	}

	return nil, fmt.Errorf("discord: %s %s: max retries exceeded", method, path)
}

// GetCurrentUser returns the bot user the token authenticates as.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	return do[User](ctx, c, http.MethodGet, "/users/@me", nil)
}

// GetGatewayURL returns the websocket URL for the realtime gateway.
func (c *Client) GetGatewayURL(ctx context.Context) (string, error) {
	g, err := do[GatewayURL](ctx, c, http.MethodGet, "/gateway/bot", nil)
	if err != nil {
		return "", err
	}
	return g.URL, nil
}

// GetMessage fetches a single message by id.
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	return do[Message](ctx, c, http.MethodGet, "/channels/"+channelID+"/messages/"+messageID, nil)
}

// MessagesAfter fetches up to limit messages authored strictly after
// afterID, newest first.
func (c *Client) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]Message, error) {
	path := fmt.Sprintf("/channels/%s/messages?after=%s&limit=%d", channelID, afterID, limit)
	msgs, err := do[[]Message](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return *msgs, nil
}

// CreateMessage posts a new message to a channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, req CreateMessageRequest) (*Message, error) {
	return do[Message](ctx, c, http.MethodPost, "/channels/"+channelID+"/messages", req)
}

// EditMessage patches an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, req EditMessageRequest) (*Message, error) {
	return do[Message](ctx, c, http.MethodPatch, "/channels/"+channelID+"/messages/"+messageID, req)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_, err := do[struct{}](ctx, c, http.MethodDelete, "/channels/"+channelID+"/messages/"+messageID, nil)
	return err
}

// SetMessageFlags patches only the flags field of a message. Used to
// toggle native link preview suppression.
func (c *Client) SetMessageFlags(ctx context.Context, channelID, messageID string, flags int) (*Message, error) {
	return c.EditMessage(ctx, channelID, messageID, EditMessageRequest{Flags: &flags})
}
