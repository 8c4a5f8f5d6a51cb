package service_test

import (
	"context"
	"errors"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/events"
	"github.com/pkordes/device-lending/backend/internal/repo"
	"github.com/pkordes/device-lending/backend/internal/service"
)

// ---- mock repos ------------------------------------------------------------

// mockDeviceRepo is a hand-written test double for repo.DeviceRepo.
type mockDeviceRepo struct {
	getByID          func(ctx context.Context, id int64) (domain.Device, error)
	getByIDForUpdate func(ctx context.Context, id int64) (domain.Device, error)
	listPaged        func(ctx context.Context, p domain.PaginationParams) ([]domain.Device, int64, error)
}

func (m *mockDeviceRepo) GetByID(ctx context.Context, id int64) (domain.Device, error) {
	return m.getByID(ctx, id)
}
func (m *mockDeviceRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Device, error) {
	if m.getByIDForUpdate == nil {
		return m.getByID(ctx, id)
	}
	return m.getByIDForUpdate(ctx, id)
}
func (m *mockDeviceRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Device, int64, error) {
	return m.listPaged(ctx, p)
}

var _ repo.DeviceRepo = (*mockDeviceRepo)(nil)

// mockUserRepo is a hand-written test double for repo.UserRepo.
type mockUserRepo struct {
	getByID func(ctx context.Context, id int64) (domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// mockBookingRepo is a hand-written test double for repo.BookingRepo.
type mockBookingRepo struct {
	latestForDevice  func(ctx context.Context, deviceID int64) (*domain.Booking, error)
	latestForDevices func(ctx context.Context, ids []int64) (map[int64]domain.Booking, error)
	save             func(ctx context.Context, b domain.Booking) (domain.Booking, error)
}

func (m *mockBookingRepo) LatestForDevice(ctx context.Context, deviceID int64) (*domain.Booking, error) {
	return m.latestForDevice(ctx, deviceID)
}
func (m *mockBookingRepo) LatestForDevices(ctx context.Context, ids []int64) (map[int64]domain.Booking, error) {
	return m.latestForDevices(ctx, ids)
}
func (m *mockBookingRepo) Save(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.save(ctx, b)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

// mockStore runs WithinTx callbacks directly against the same mock repos and
// counts how often a transaction was opened.
type mockStore struct {
	repos repo.Repos
	txs   int
}

func (m *mockStore) Repos() repo.Repos { return m.repos }
func (m *mockStore) WithinTx(_ context.Context, fn func(repo.Repos) error) error {
	m.txs++
	return fn(m.repos)
}

var _ service.Store = (*mockStore)(nil)

// mockPublisher records published events and can be told to fail.
type mockPublisher struct {
	published []events.Event
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, evt events.Event) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evt)
	return nil
}
func (m *mockPublisher) Close() error { return nil }

var errBroker = errors.New("broker down")
