package domain

import (
	"fmt"
	"time"
)

// Availability is never stored. It is derived from the single most recent
// booking of a device, so every function below takes that booking (or nil
// when the device has never been booked) and nothing else.

// IsAvailable reports whether a device whose most recent booking is latest
// may be booked. A device with no bookings, or whose last booking has been
// returned, is available.
func IsAvailable(latest *Booking) bool {
	return latest == nil || latest.ReturnedAt != nil
}

// AuthorizeBooking decides whether user may book device and, if so, returns
// the new open booking for the caller to persist. The returned booking has a
// zero ID and a nil ReturnedAt.
// Returns ErrUnavailable if the device already has an open booking.
func AuthorizeBooking(device Device, user User, latest *Booking, now time.Time) (Booking, error) {
	if !IsAvailable(latest) {
		return Booking{}, fmt.Errorf("%w: device is already booked", ErrUnavailable)
	}
	return Booking{
		Device:   device,
		User:     user,
		BookedAt: now,
	}, nil
}

// AuthorizeReturn closes the open booking latest and returns the updated copy
// for the caller to persist. latest itself is left untouched.
// Returns ErrUnavailable if there is no booking or it was already returned.
func AuthorizeReturn(latest *Booking, now time.Time) (Booking, error) {
	if IsAvailable(latest) {
		return Booking{}, fmt.Errorf("%w: device is available, no return needed", ErrUnavailable)
	}
	returned := *latest
	returned.ReturnedAt = &now
	return returned, nil
}

// NewDeviceInfo bundles a device with its most recent booking and the
// availability derived from it.
func NewDeviceInfo(device Device, latest *Booking) DeviceInfo {
	return DeviceInfo{
		Device:        device,
		LatestBooking: latest,
		IsAvailable:   IsAvailable(latest),
	}
}
