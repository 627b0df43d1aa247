// Package notify posts pipeline results to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

var (
	errMissingWebhook  = errors.New("notify: no webhook url provided")
	errUnknownKind     = errors.New("notify: unknown message type")
	errEmptyMessage    = errors.New("notify: message is empty")
	errUnexpectedReply = errors.New("notify: webhook rejected the message")
)

// Kind selects the embed color and prefix. KindPlain sends bare content.
type Kind string

const (
	KindPlain   Kind = "plain"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type style struct {
	prefix string
	color  int
}

var styles = map[Kind]style{
	KindSuccess: {prefix: "✅", color: 0x00FF00},
	KindWarning: {prefix: "⚠️", color: 0xFFFF00},
	KindError:   {prefix: "❌", color: 0xFF0000},
	KindInfo:    {prefix: "ℹ️", color: 0x0099FF},
}

// ParseKind accepts the names used on the command line.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindInfo, nil
	}
	if _, ok := styles[k]; ok || k == KindPlain {
		return k, nil
	}

	return "", fmt.Errorf("%w: %q", errUnknownKind, s)
}

type embed struct {
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type payload struct {
	Content  string  `json:"content,omitempty"`
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds,omitempty"`
}

// Client posts messages to one webhook.
type Client struct {
	url      string
	username string
	http     *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client with its 10 second timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithUsername overrides the name the webhook posts as.
func WithUsername(name string) Option {
	return func(cl *Client) {
		cl.username = name
	}
}

func New(webhookURL string, opts ...Option) (*Client, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil, errMissingWebhook
	}

	c := &Client{
		url:  webhookURL,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Send posts message. Any 2xx reply counts as delivered.
func (c *Client) Send(ctx context.Context, kind Kind, message string) error {
	if strings.TrimSpace(message) == "" {
		return errEmptyMessage
	}

	body, err := json.Marshal(buildPayload(kind, message, c.username))
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("%w: %d - %s", errUnexpectedReply, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	logger.DebugKV(ctx, "Notification sent", "kind", string(kind), "status", resp.StatusCode)

	return nil
}

func buildPayload(kind Kind, message, username string) payload {
	p := payload{Username: username}

	st, ok := styles[kind]
	if !ok {
		p.Content = message

		return p
	}
	p.Embeds = []embed{{Description: st.prefix + " " + message, Color: st.color}}

	return p
}
