package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/device-lending/backend/internal/domain"
)

// pgUniqueViolation is the SQLSTATE Postgres raises when a unique index rejects a row.
const pgUniqueViolation = "23505"

// BookingRepo defines the persistence operations for Bookings.
// Bookings are never deleted; the only update is setting returned_at once.
type BookingRepo interface {
	// LatestForDevice returns the most recent booking (by booked_at) for a
	// device, with its device and user loaded. Returns nil, nil when the
	// device has never been booked.
	LatestForDevice(ctx context.Context, deviceID int64) (*domain.Booking, error)

	// LatestForDevices is LatestForDevice for many devices in one query.
	// Devices that were never booked are absent from the map.
	LatestForDevices(ctx context.Context, deviceIDs []int64) (map[int64]domain.Booking, error)

	// Save inserts the booking when its ID is uuid.Nil and returns it with the
	// DB-generated ID. Otherwise it records ReturnedAt on the stored booking;
	// a booking that is already returned is never changed.
	// Returns domain.ErrUnavailable if the write would leave the device with
	// two open bookings or would overwrite a return.
	Save(ctx context.Context, b domain.Booking) (domain.Booking, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `
		b.id, b.booked_at, b.returned_at,
		d.id, d.name,
		u.id, u.name
	FROM bookings b
	JOIN devices d ON d.id = b.device_id
	JOIN users   u ON u.id = b.user_id`

func (r *pgBookingRepo) LatestForDevice(ctx context.Context, deviceID int64) (*domain.Booking, error) {
	q := `SELECT` + bookingColumns + `
	WHERE b.device_id = @device_id
	ORDER BY b.booked_at DESC
	LIMIT 1`

	b, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"device_id": deviceID}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo.BookingRepo.LatestForDevice: %w", err)
	}
	return &b, nil
}

func (r *pgBookingRepo) LatestForDevices(ctx context.Context, deviceIDs []int64) (map[int64]domain.Booking, error) {
	out := make(map[int64]domain.Booking, len(deviceIDs))
	if len(deviceIDs) == 0 {
		return out, nil
	}

	q := `SELECT DISTINCT ON (b.device_id)` + bookingColumns + `
	WHERE b.device_id = ANY(@device_ids)
	ORDER BY b.device_id, b.booked_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"device_ids": deviceIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.LatestForDevices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.LatestForDevices: scan: %w", err)
		}
		out[b.Device.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.LatestForDevices: rows: %w", err)
	}
	return out, nil
}

func (r *pgBookingRepo) Save(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if b.ID == uuid.Nil {
		return r.insert(ctx, b)
	}
	return r.markReturned(ctx, b)
}

func (r *pgBookingRepo) insert(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (device_id, user_id, booked_at, returned_at)
		VALUES (@device_id, @user_id, @booked_at, @returned_at)
		RETURNING id`

	args := pgx.NamedArgs{
		"device_id":   b.Device.ID,
		"user_id":     b.User.ID,
		"booked_at":   b.BookedAt,
		"returned_at": b.ReturnedAt, // nil becomes NULL
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Save: %w: device is already booked", domain.ErrUnavailable)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Save: %w", err)
	}

	b.ID = uuid.UUID(id.Bytes)
	return b, nil
}

func (r *pgBookingRepo) markReturned(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if b.ReturnedAt == nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Save: %w: returned_at is required", domain.ErrValidation)
	}

	const q = `
		UPDATE bookings
		SET returned_at = @returned_at
		WHERE id = @id
		  AND returned_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": b.ID, "returned_at": *b.ReturnedAt})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Save: %w: device is available, no return needed", domain.ErrUnavailable)
	}
	return b, nil
}

// scanBooking maps one row selected with bookingColumns into a domain.Booking.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b          domain.Booking
		id         pgtype.UUID
		returnedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &b.BookedAt, &returnedAt,
		&b.Device.ID, &b.Device.Name,
		&b.User.ID, &b.User.Name)
	if err != nil {
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.BookedAt = b.BookedAt.UTC()
	if returnedAt.Valid {
		ra := returnedAt.Time.UTC()
		b.ReturnedAt = &ra
	}
	return b, nil
}
