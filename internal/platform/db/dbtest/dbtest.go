// Package dbtest はテスト用にマイグレーション済みの SQLite を開く。
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ASSETRACK-backend/internal/platform/db"
)

// Open: t.TempDir() に新しいDBを作り、終了時に閉じる
func Open(t testing.TB) (*sql.DB, db.Dialect) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets_test.db")

	conn, dialect, err := db.Connect(db.DatabaseConfig{Driver: db.DriverSQLite, Path: path})
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(context.Background(), conn, db.DriverSQLite), "run migrations")
	return conn, dialect
}

func InsertAccount(t testing.TB, conn *sql.DB, id string) {
	t.Helper()
	_, err := conn.Exec(`INSERT INTO auth_accounts (id, password_hash, role, is_disabled, created_at) VALUES (?, 'x', 'user', 0, ?)`,
		id, time.Now().UTC())
	require.NoError(t, err)
}

func InsertDepartment(t testing.TB, conn *sql.DB, name string) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO departments (name, location, head_of_department) VALUES (?, '', NULL)`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func InsertCategory(t testing.TB, conn *sql.DB, name string) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO asset_categories (name, description) VALUES (?, '')`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Asset はテスト用の最小行。ゼロ値は既定値になる
type Asset struct {
	Name         string
	Serial       string
	CategoryID   *int64
	DepartmentID *int64
	Status       string
	Condition    string
	DateAdded    time.Time
}

func InsertAsset(t testing.TB, conn *sql.DB, a Asset) int64 {
	t.Helper()
	if a.Status == "" {
		a.Status = "Available"
	}
	if a.Condition == "" {
		a.Condition = "Good"
	}
	if a.DateAdded.IsZero() {
		a.DateAdded = time.Now().UTC()
	}
	if a.Name == "" {
		a.Name = a.Serial
	}
	res, err := conn.Exec(`
	INSERT INTO assets (name, category_id, serial_number, department_id, purchase_date, asset_condition, status, description, date_added)
	VALUES (?, ?, ?, ?, ?, ?, ?, '', ?)`,
		a.Name, a.CategoryID, a.Serial, a.DepartmentID,
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), a.Condition, a.Status, a.DateAdded)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func Ptr[T any](v T) *T { return &v }
