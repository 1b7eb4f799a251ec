package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/db/dbtest"
)

func TestRunInTx_RollsBack(t *testing.T) {
	conn, _ := dbtest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO departments (name, location) VALUES ('Physics', '')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n))
	assert.Zero(t, n)
}

func TestRunInTx_Commits(t *testing.T) {
	conn, dialect := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO departments (name, location) VALUES ('Physics', '')`)
		return err
	}))

	var n int
	require.NoError(t, db.ReadOnly(ctx, conn, dialect, func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n)
	}))
	assert.Equal(t, 1, n)
}

func TestErrorClassification(t *testing.T) {
	conn, _ := dbtest.Open(t)
	dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "DUP-1"})

	_, err := conn.Exec(`INSERT INTO assets (name, serial_number, purchase_date, asset_condition, status, description, date_added)
		VALUES ('x', 'DUP-1', '2024-01-01', 'Good', 'Available', '', '2024-01-01 00:00:00')`)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err))
	assert.False(t, db.IsForeignKeyViolation(err))

	_, err = conn.Exec(`INSERT INTO maintenance_records (record_ulid, asset_id, issue_reported, maintenance_date, performed_by, remarks)
		VALUES ('01J0000000000000000000000', 999, 'x', '2024-01-01', 'tech', '')`)
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyViolation(err))
	assert.False(t, db.IsDuplicateKey(err))

	assert.False(t, db.IsDuplicateKey(errors.New("other")))
}

func TestDialect_ForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", db.Dialect(db.DriverMySQL).ForUpdate())
	assert.Empty(t, db.Dialect(db.DriverSQLite).ForUpdate())
}
