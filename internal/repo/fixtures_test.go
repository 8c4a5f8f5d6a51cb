package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/device-lending/backend/internal/domain"
	"github.com/pkordes/device-lending/backend/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// insertDevice seeds a device row. The API has no write path for devices.
func insertDevice(t *testing.T, tx pgx.Tx, name string) domain.Device {
	t.Helper()
	d := domain.Device{Name: name}
	err := tx.QueryRow(context.Background(),
		`INSERT INTO devices (name) VALUES ($1) RETURNING id`, name).Scan(&d.ID)
	require.NoError(t, err, "insert device")
	return d
}

// insertUser seeds a user row.
func insertUser(t *testing.T, tx pgx.Tx, name string) domain.User {
	t.Helper()
	u := domain.User{Name: name}
	err := tx.QueryRow(context.Background(),
		`INSERT INTO users (name) VALUES ($1) RETURNING id`, name).Scan(&u.ID)
	require.NoError(t, err, "insert user")
	return u
}

// ago returns a UTC timestamp d before now, truncated to the microsecond
// precision Postgres stores.
func ago(d time.Duration) time.Time {
	return time.Now().UTC().Add(-d).Truncate(time.Microsecond)
}
