package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal LINE Messaging API client covering the one endpoint the
// relay needs, replying to a webhook event.
type Client struct {
	apiBase     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a client for the given API base URL
// (normally "https://api.line.me").
func NewClient(apiBase, accessToken string) *Client {
	return &Client{
		apiBase:     apiBase,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// Reply sends text as the reply to the delivery that carried replyToken.
// Reply tokens are single-use; a failed send is not retried here.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	payload, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: MessageTypeText, Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("reply rejected with status %d: %s", resp.StatusCode, string(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
