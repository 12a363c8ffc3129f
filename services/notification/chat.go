package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"
)

// ChatChannel posts events to an incoming-webhook URL (Slack/Mattermost
// compatible payload).
type ChatChannel struct {
	webhookURL string
	client     *http.Client
}

func NewChatChannel(webhookURL string) *ChatChannel {
	return &ChatChannel{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ChatChannel) Name() string { return "chat" }

func (c *ChatChannel) SendNewBooking(ctx context.Context, booking models.BookingRecord) error {
	title, body := newBookingMessage(booking)
	return c.post(ctx, title+"\n"+body)
}

func (c *ChatChannel) SendStatusChange(ctx context.Context, change models.StatusChange) error {
	title, body := statusChangeMessage(change)
	return c.post(ctx, title+"\n"+body)
}

func (c *ChatChannel) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
