package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos groups the repositories that share one connection or transaction.
type Repos struct {
	Devices  DeviceRepo
	Users    UserRepo
	Bookings BookingRepo
}

// NewRepos builds all repositories on top of the same db.
func NewRepos(db db) Repos {
	return Repos{
		Devices:  NewDeviceRepo(db),
		Users:    NewUserRepo(db),
		Bookings: NewBookingRepo(db),
	}
}

// beginner is satisfied by *pgxpool.Pool and by pgx.Tx (which opens a savepoint).
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store hands out repositories, either bound directly to the pool or to a
// transaction for read-decide-write sequences.
type Store struct {
	db beginner
}

// NewStore constructs a Store. In production pass *pgxpool.Pool; in tests a
// pgx.Tx works too, nested transactions become savepoints.
func NewStore(db beginner) *Store {
	return &Store{db: db}
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() Repos {
	return NewRepos(s.db)
}

// WithinTx runs fn with repositories bound to a single transaction.
// The transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.WithinTx: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.WithinTx: commit: %w", err)
	}
	return nil
}
