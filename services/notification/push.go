package notification

import (
	"context"
	"fmt"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"firebase.google.com/go/v4/messaging"
)

// PushChannel delivers events to the staff FCM topic.
type PushChannel struct {
	client *messaging.Client
	topic  string
}

func NewPushChannel(client *messaging.Client, topic string) *PushChannel {
	return &PushChannel{client: client, topic: topic}
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) SendNewBooking(ctx context.Context, booking models.BookingRecord) error {
	title, body := newBookingMessage(booking)
	return c.send(ctx, title, body, map[string]string{
		"type":      "new_booking",
		"bookingId": booking.ExternalID,
		"status":    string(booking.Status),
	})
}

func (c *PushChannel) SendStatusChange(ctx context.Context, change models.StatusChange) error {
	title, body := statusChangeMessage(change)
	return c.send(ctx, title, body, map[string]string{
		"type":           "status_change",
		"bookingId":      change.ExternalID,
		"previousStatus": string(change.PreviousStatus),
		"newStatus":      string(change.NewStatus),
	})
}

func (c *PushChannel) send(ctx context.Context, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: c.topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := c.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
