package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"go.uber.org/zap"
)

// Channel is one delivery target (push, email, chat). Channels are
// best-effort: a failed send is logged by the dispatcher and never re-raised.
type Channel interface {
	Name() string
	SendNewBooking(ctx context.Context, booking models.BookingRecord) error
	SendStatusChange(ctx context.Context, change models.StatusChange) error
}

// Dispatcher fans classified changes out to all channels. Every send is
// independent: one channel or recipient failing must not prevent the others,
// and must not fail the sync that produced the changes.
type Dispatcher interface {
	Dispatch(ctx context.Context, newBookings []models.BookingRecord, statusChanges []models.StatusChange)
}

// DefaultDispatcher is the production implementation.
type DefaultDispatcher struct {
	channels []Channel
	logger   *zap.Logger
}

func NewDefaultDispatcher(logger *zap.Logger, channels ...Channel) *DefaultDispatcher {
	return &DefaultDispatcher{channels: channels, logger: logger}
}

// Dispatch sends one event per channel per change, each in its own
// goroutine, and collects every outcome without short-circuiting.
func (d *DefaultDispatcher) Dispatch(ctx context.Context, newBookings []models.BookingRecord, statusChanges []models.StatusChange) {
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		for _, booking := range newBookings {
			wg.Add(1)
			go func(ch Channel, booking models.BookingRecord) {
				defer wg.Done()
				if err := ch.SendNewBooking(ctx, booking); err != nil {
					d.logger.Warn("notification send failed",
						zap.String("channel", ch.Name()),
						zap.String("event", "new_booking"),
						zap.String("bookingId", booking.ExternalID),
						zap.Error(err))
				}
			}(ch, booking)
		}
		for _, change := range statusChanges {
			wg.Add(1)
			go func(ch Channel, change models.StatusChange) {
				defer wg.Done()
				if err := ch.SendStatusChange(ctx, change); err != nil {
					d.logger.Warn("notification send failed",
						zap.String("channel", ch.Name()),
						zap.String("event", "status_change"),
						zap.String("bookingId", change.ExternalID),
						zap.Error(err))
				}
			}(ch, change)
		}
	}

	wg.Wait()
}

// newBookingMessage builds the human-readable title/body pair shared by all
// channels for a newly seen booking.
func newBookingMessage(b models.BookingRecord) (string, string) {
	return "New studio booking",
		fmt.Sprintf("%s booked %s on %s (%s), %s",
			b.ApplicantName, b.FacilityName, b.RentalDate,
			formatSlots(b.TimeSlots), models.StatusLabel(b.Status))
}

// statusChangeMessage builds the title/body pair for a status transition.
func statusChangeMessage(c models.StatusChange) (string, string) {
	return "Booking status changed",
		fmt.Sprintf("%s on %s for %s: %s -> %s",
			c.FacilityName, c.RentalDate, c.ApplicantName,
			models.StatusLabel(c.PreviousStatus), models.StatusLabel(c.NewStatus))
}

func formatSlots(slots []int) string {
	if len(slots) == 0 {
		return "no time slots"
	}
	parts := make([]string, len(slots))
	for i, h := range slots {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
