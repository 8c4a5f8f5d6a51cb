// Package service contains the business logic for the device lending API.
// Services load what a decision needs, hand it to the booking rules in
// domain, persist the outcome, and announce it. No SQL lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/events"
	"github.com/pkordes/device-lending/backend/internal/repo"
)

// Store is the part of *repo.Store the service uses. Reads go through Repos;
// booking and returning run their read-decide-write inside WithinTx.
type Store interface {
	Repos() repo.Repos
	WithinTx(ctx context.Context, fn func(repo.Repos) error) error
}

// DeviceService implements the device info, booking, and return operations.
type DeviceService struct {
	store     Store
	publisher events.Publisher
	now       func() time.Time
}

// Option configures a DeviceService.
type Option func(*DeviceService)

// WithClock overrides the time source used for booked_at and returned_at.
func WithClock(now func() time.Time) Option {
	return func(s *DeviceService) { s.now = now }
}

// defaultClock matches timestamptz precision so a booking returned by a PUT
// compares equal to the same booking read back later.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewDeviceService constructs a DeviceService. publisher may be nil, in which
// case no events are sent.
func NewDeviceService(store Store, publisher events.Publisher, opts ...Option) *DeviceService {
	s := &DeviceService{
		store:     store,
		publisher: publisher,
		now:       defaultClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetInfo returns the device with its latest booking and availability.
// Returns domain.ErrDeviceNotFound if the device does not exist.
func (s *DeviceService) GetInfo(ctx context.Context, deviceID int64) (domain.DeviceInfo, error) {
	r := s.store.Repos()

	device, err := r.Devices.GetByID(ctx, deviceID)
	if err != nil {
		return domain.DeviceInfo{}, fmt.Errorf("service.DeviceService.GetInfo: %w", notFoundAs(err, domain.ErrDeviceNotFound))
	}
	latest, err := r.Bookings.LatestForDevice(ctx, deviceID)
	if err != nil {
		return domain.DeviceInfo{}, fmt.Errorf("service.DeviceService.GetInfo: %w", err)
	}
	return domain.NewDeviceInfo(device, latest), nil
}

// ListPaged returns one page of devices, each with its latest booking and
// availability, plus the total number of devices.
// Always returns a non-nil slice so callers can safely range over it.
func (s *DeviceService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.DeviceInfo, int64, error) {
	r := s.store.Repos()

	devices, total, err := r.Devices.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DeviceService.ListPaged: %w", err)
	}

	ids := make([]int64, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	latest, err := r.Bookings.LatestForDevices(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DeviceService.ListPaged: %w", err)
	}

	infos := make([]domain.DeviceInfo, len(devices))
	for i, d := range devices {
		var lb *domain.Booking
		if b, ok := latest[d.ID]; ok {
			lb = &b
		}
		infos[i] = domain.NewDeviceInfo(d, lb)
	}
	return infos, total, nil
}

// Book gives the device to the user.
// Returns domain.ErrDeviceNotFound or domain.ErrUserNotFound for unknown ids
// (a missing userId decodes to 0 and is simply unknown), and
// domain.ErrUnavailable if the device is already booked.
func (s *DeviceService) Book(ctx context.Context, deviceID, userID int64) (domain.Booking, error) {
	var saved domain.Booking
	err := s.store.WithinTx(ctx, func(r repo.Repos) error {
		device, err := r.Devices.GetByIDForUpdate(ctx, deviceID)
		if err != nil {
			return notFoundAs(err, domain.ErrDeviceNotFound)
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, domain.ErrUserNotFound)
		}
		latest, err := r.Bookings.LatestForDevice(ctx, deviceID)
		if err != nil {
			return err
		}

		booking, err := domain.AuthorizeBooking(device, user, latest, s.now())
		if err != nil {
			return err
		}
		saved, err = r.Bookings.Save(ctx, booking)
		return err
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.DeviceService.Book: %w", err)
	}

	s.publish(ctx, saved)
	return saved, nil
}

// Return closes the device's open booking.
// Returns domain.ErrDeviceNotFound for an unknown device and
// domain.ErrUnavailable if the device is not currently booked.
func (s *DeviceService) Return(ctx context.Context, deviceID int64) (domain.Booking, error) {
	var saved domain.Booking
	err := s.store.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Devices.GetByIDForUpdate(ctx, deviceID); err != nil {
			return notFoundAs(err, domain.ErrDeviceNotFound)
		}
		latest, err := r.Bookings.LatestForDevice(ctx, deviceID)
		if err != nil {
			return err
		}

		booking, err := domain.AuthorizeReturn(latest, s.now())
		if err != nil {
			return err
		}
		saved, err = r.Bookings.Save(ctx, booking)
		return err
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.DeviceService.Return: %w", err)
	}

	s.publish(ctx, saved)
	return saved, nil
}

// publish announces a committed booking change. Failures are logged only:
// the booking is already durable and the caller's request succeeded.
func (s *DeviceService) publish(ctx context.Context, b domain.Booking) {
	if s.publisher == nil {
		return
	}
	evt := events.NewBookingEvent(b)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish booking event",
			"type", evt.Type,
			"booking_id", b.ID.String(),
			"error", err,
		)
	}
}

// notFoundAs replaces a bare domain.ErrNotFound from a repo with the
// entity-specific sentinel so the handler can say which lookup failed.
func notFoundAs(err, target error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return target
	}
	return err
}
