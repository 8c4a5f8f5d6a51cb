// Package events publishes booking lifecycle events so other systems can
// react to devices changing hands. Publishing happens after the booking is
// committed; it is best effort and never rolls a booking back.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/device-lending/backend/internal/domain"
)

// Event types double as AMQP routing keys.
const (
	TypeDeviceBooked   = "device.booked"
	TypeDeviceReturned = "device.returned"
)

// Event is the JSON payload published for each booking transition.
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	BookingID  uuid.UUID  `json:"bookingId"`
	DeviceID   int64      `json:"deviceId"`
	UserID     int64      `json:"userId"`
	BookedAt   time.Time  `json:"bookedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

// Publisher sends events to wherever they are consumed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NewBookingEvent builds the event for a saved booking. An open booking
// yields device.booked, a returned one device.returned.
func NewBookingEvent(b domain.Booking) Event {
	typ := TypeDeviceBooked
	if !b.IsOpen() {
		typ = TypeDeviceReturned
	}
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		BookingID:  b.ID,
		DeviceID:   b.Device.ID,
		UserID:     b.User.ID,
		BookedAt:   b.BookedAt,
		ReturnedAt: b.ReturnedAt,
	}
}
