package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/internal/repo"
)

func TestBookingRepo_LatestForDevice_NeverBooked(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)

	device := insertDevice(t, tx, "Device #1")

	got, err := r.LatestForDevice(context.Background(), device.ID)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookingRepo_SaveInsert(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)
	ctx := context.Background()

	device := insertDevice(t, tx, "Device #1")
	user := insertUser(t, tx, "User #1")

	saved, err := r.Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(0)})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID, "ID should be DB-generated")
	assert.Nil(t, saved.ReturnedAt)

	latest, err := r.LatestForDevice(ctx, device.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, saved.ID, latest.ID)
	assert.Equal(t, device, latest.Device)
	assert.Equal(t, user, latest.User)
	assert.True(t, latest.BookedAt.Equal(saved.BookedAt))
}

func TestBookingRepo_LatestForDevice_OrdersByBookedAt(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)
	ctx := context.Background()

	device := insertDevice(t, tx, "Device #1")
	user := insertUser(t, tx, "User #1")

	returned := ago(2 * time.Hour)
	older, err := r.Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(3 * time.Hour), ReturnedAt: &returned})
	require.NoError(t, err)
	newer, err := r.Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(15 * time.Minute)})
	require.NoError(t, err)

	latest, err := r.LatestForDevice(ctx, device.ID)

	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
	assert.NotEqual(t, older.ID, latest.ID)
	assert.True(t, latest.IsOpen())
}

func TestBookingRepo_SaveInsert_SecondOpenBookingRejected(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)
	ctx := context.Background()

	device := insertDevice(t, tx, "Device #1")
	user := insertUser(t, tx, "User #1")

	_, err := r.Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(time.Minute)})
	require.NoError(t, err)

	// Use a savepoint so the failed insert does not abort the outer test transaction.
	sp, err := tx.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = sp.Rollback(ctx) }()

	_, err = repo.NewBookingRepo(sp).Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(0)})

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestBookingRepo_SaveReturn(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)
	ctx := context.Background()

	device := insertDevice(t, tx, "Device #3")
	user := insertUser(t, tx, "User #1")

	open, err := r.Save(ctx, domain.Booking{Device: device, User: user, BookedAt: ago(15 * time.Minute)})
	require.NoError(t, err)

	now := ago(0)
	open.ReturnedAt = &now
	returned, err := r.Save(ctx, open)
	require.NoError(t, err)
	assert.Equal(t, open.ID, returned.ID)

	latest, err := r.LatestForDevice(ctx, device.ID)
	require.NoError(t, err)
	require.NotNil(t, latest.ReturnedAt)
	assert.True(t, latest.ReturnedAt.Equal(now))

	// A second return must not move returned_at.
	later := now.Add(time.Hour)
	latest.ReturnedAt = &later
	_, err = r.Save(ctx, *latest)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	again, err := r.LatestForDevice(ctx, device.ID)
	require.NoError(t, err)
	assert.True(t, again.ReturnedAt.Equal(now))
}

func TestBookingRepo_LatestForDevices(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewBookingRepo(tx)
	ctx := context.Background()

	booked := insertDevice(t, tx, "Booked")
	idle := insertDevice(t, tx, "Idle")
	user := insertUser(t, tx, "User #1")

	returned := ago(time.Hour)
	_, err := r.Save(ctx, domain.Booking{Device: booked, User: user, BookedAt: ago(2 * time.Hour), ReturnedAt: &returned})
	require.NoError(t, err)
	open, err := r.Save(ctx, domain.Booking{Device: booked, User: user, BookedAt: ago(time.Minute)})
	require.NoError(t, err)

	got, err := r.LatestForDevices(ctx, []int64{booked.ID, idle.ID})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[booked.ID].ID)
	_, ok := got[idle.ID]
	assert.False(t, ok, "never-booked device should be absent")
}

func TestBookingRepo_LatestForDevices_Empty(t *testing.T) {
	r := repo.NewBookingRepo(newTestTx(t))

	got, err := r.LatestForDevices(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}
