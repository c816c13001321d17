package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config represents the configuration for the LINE Messaging API client
type Config struct {
	// ChannelAccessToken authenticates API calls
	ChannelAccessToken string

	// ChannelSecret signs webhook payloads
	ChannelSecret string

	// BaseURL is the Messaging API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ChannelAccessToken == "" {
		return errors.New("missing channel access token")
	}
	if c.ChannelSecret == "" {
		return errors.New("missing channel secret")
	}
	if c.BaseURL == "" {
		return errors.New("missing base URL")
	}
	return nil
}

// Client is a minimal LINE Messaging API client covering what the bot needs:
// replying to webhook events and pushing to a conversation.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new LINE client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ChannelSecret returns the configured channel secret.
func (c *Client) ChannelSecret() string {
	return c.config.ChannelSecret
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Reply answers a webhook event through its reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	return c.doRequest(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
}

// Push sends messages to a user, group, or room by its id.
func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	return c.doRequest(ctx, "/v2/bot/message/push", pushRequest{
		To:       to,
		Messages: messages,
	})
}

// doRequest performs an HTTP request to the Messaging API
func (c *Client) doRequest(ctx context.Context, path string, payload interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.ChannelAccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line api returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
