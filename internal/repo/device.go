// Package repo contains all database access logic for the device lending API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/device-lending/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DeviceRepo defines the read operations for Devices.
// Devices are seeded administratively; the API never writes them.
type DeviceRepo interface {
	// GetByID retrieves a device by primary key.
	// Returns domain.ErrNotFound if no device with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Device, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends. Booking and returning take this lock so that two
	// requests for the same device are decided one after the other.
	GetByIDForUpdate(ctx context.Context, id int64) (domain.Device, error)

	// ListPaged returns one page of devices ordered by id and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Device, int64, error)
}

// pgDeviceRepo is the Postgres implementation of DeviceRepo.
type pgDeviceRepo struct {
	db db
}

// NewDeviceRepo constructs a DeviceRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDeviceRepo(db db) DeviceRepo {
	return &pgDeviceRepo{db: db}
}

func (r *pgDeviceRepo) GetByID(ctx context.Context, id int64) (domain.Device, error) {
	const q = `SELECT id, name FROM devices WHERE id = @id`

	d, err := scanDevice(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Device{}, fmt.Errorf("repo.DeviceRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *pgDeviceRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Device, error) {
	const q = `SELECT id, name FROM devices WHERE id = @id FOR UPDATE`

	d, err := scanDevice(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Device{}, fmt.Errorf("repo.DeviceRepo.GetByIDForUpdate: %w", err)
	}
	return d, nil
}

func (r *pgDeviceRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Device, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM devices`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.DeviceRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT id, name
		FROM devices
		ORDER BY id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DeviceRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.DeviceRepo.ListPaged: scan: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.DeviceRepo.ListPaged: rows: %w", err)
	}
	return devices, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (domain.Device, error) {
	var d domain.Device
	if err := s.Scan(&d.ID, &d.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Device{}, domain.ErrNotFound
		}
		return domain.Device{}, err
	}
	return d, nil
}
