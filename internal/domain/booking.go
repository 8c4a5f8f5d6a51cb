package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one user's claim on one device over [BookedAt, ReturnedAt).
// ReturnedAt is nil while the device is still out. Once set it never changes.
type Booking struct {
	ID         uuid.UUID  `json:"id"`
	Device     Device     `json:"device"`
	User       User       `json:"user"`
	BookedAt   time.Time  `json:"bookedAt"`
	ReturnedAt *time.Time `json:"returnedAt"`
}

// IsOpen reports whether the booking has not been returned yet.
func (b Booking) IsOpen() bool {
	return b.ReturnedAt == nil
}

// DeviceInfo is the read view of a device: the device itself, its most
// recent booking (nil if it was never booked) and the availability derived
// from that booking.
type DeviceInfo struct {
	Device        Device   `json:"device"`
	LatestBooking *Booking `json:"latestBooking"`
	IsAvailable   bool     `json:"isAvailable"`
}
