package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingChannel struct {
	name    string
	fail    bool
	mu      sync.Mutex
	news    []string
	changes []string
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) SendNewBooking(ctx context.Context, booking models.BookingRecord) error {
	if c.fail {
		return errors.New(c.name + " unreachable")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.news = append(c.news, booking.ExternalID)
	return nil
}

func (c *recordingChannel) SendStatusChange(ctx context.Context, change models.StatusChange) error {
	if c.fail {
		return errors.New(c.name + " unreachable")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change.ExternalID)
	return nil
}

func sampleBooking(id string) models.BookingRecord {
	return models.BookingRecord{
		ExternalID:    id,
		FacilityName:  "스튜디오 A",
		RentalDate:    "2026-09-03",
		TimeSlots:     []int{10, 11},
		ApplicantName: "김민수",
		Status:        models.StatusConfirmed,
	}
}

func sampleChange(id string) models.StatusChange {
	return models.StatusChange{
		BookingRecord:  sampleBooking(id),
		PreviousStatus: models.StatusPending,
		NewStatus:      models.StatusConfirmed,
	}
}

func TestDispatch_DeliversEveryEventToEveryChannel(t *testing.T) {
	push := &recordingChannel{name: "push"}
	email := &recordingChannel{name: "email"}
	dispatcher := NewDefaultDispatcher(zap.NewNop(), push, email)

	dispatcher.Dispatch(context.Background(),
		[]models.BookingRecord{sampleBooking("RSV-1"), sampleBooking("RSV-2")},
		[]models.StatusChange{sampleChange("RSV-3")})

	for _, ch := range []*recordingChannel{push, email} {
		assert.ElementsMatch(t, []string{"RSV-1", "RSV-2"}, ch.news, "%s new bookings", ch.name)
		assert.ElementsMatch(t, []string{"RSV-3"}, ch.changes, "%s status changes", ch.name)
	}
}

func TestDispatch_OneFailingChannelDoesNotBlockOthers(t *testing.T) {
	broken := &recordingChannel{name: "push", fail: true}
	email := &recordingChannel{name: "email"}
	chat := &recordingChannel{name: "chat"}
	dispatcher := NewDefaultDispatcher(zap.NewNop(), broken, email, chat)

	// Must return normally despite the failing channel.
	dispatcher.Dispatch(context.Background(),
		[]models.BookingRecord{sampleBooking("RSV-1")},
		[]models.StatusChange{sampleChange("RSV-2")})

	assert.Empty(t, broken.news)
	for _, ch := range []*recordingChannel{email, chat} {
		assert.ElementsMatch(t, []string{"RSV-1"}, ch.news, "%s", ch.name)
		assert.ElementsMatch(t, []string{"RSV-2"}, ch.changes, "%s", ch.name)
	}
}

func TestDispatch_NoChannelsIsANoOp(t *testing.T) {
	dispatcher := NewDefaultDispatcher(zap.NewNop())
	dispatcher.Dispatch(context.Background(),
		[]models.BookingRecord{sampleBooking("RSV-1")}, nil)
}

func TestNewBookingMessage(t *testing.T) {
	title, body := newBookingMessage(sampleBooking("RSV-1"))
	require.NotEmpty(t, title)
	assert.Contains(t, body, "스튜디오 A")
	assert.Contains(t, body, "김민수")
	assert.Contains(t, body, "10:00, 11:00")
	assert.Contains(t, body, "approved")
}

func TestStatusChangeMessage(t *testing.T) {
	_, body := statusChangeMessage(sampleChange("RSV-1"))
	assert.Contains(t, body, "pending approval")
	assert.Contains(t, body, "approved")
}

func TestFormatSlots(t *testing.T) {
	assert.Equal(t, "no time slots", formatSlots(nil))
	assert.Equal(t, "09:00, 10:00", formatSlots([]int{9, 10}))
}
