package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ASSETRACK-backend/internal/platform/db"
)

// Account は操作ユーザー。assets.assigned_to と asset_movements.moved_by が ID を参照する
type Account struct {
	ID           string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByID(ctx context.Context, q db.DBTX, id string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	UpdateID(ctx context.Context, q db.DBTX, oldID, newID string) (int64, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const selectAccount = `SELECT id, password_hash, role, is_disabled, created_at FROM auth_accounts`

type scanner interface{ Scan(dest ...any) error }

func scanAccount(sc scanner) (*Account, error) {
	var (
		a        Account
		disabled int
	)
	if err := sc.Scan(&a.ID, &a.PasswordHash, &a.Role, &disabled, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.IsDisabled = disabled != 0
	return &a, nil
}

// GetByID: 存在しなければ (nil, nil)
func (s *Store) GetByID(ctx context.Context, q db.DBTX, id string) (*Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx, selectAccount+` WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *Store) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, selectAccount+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_accounts (id, password_hash, role, is_disabled, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		a.ID, a.PasswordHash, a.Role, a.CreatedAt.UTC().Truncate(time.Second))
	return err
}

// Delete: assigned_to / moved_by は ON DELETE SET NULL で NULL になる
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	return affected(s.db.ExecContext(ctx, `DELETE FROM auth_accounts WHERE id = ?`, id))
}

// UpdateID: 参照側は ON UPDATE CASCADE で追従する
func (s *Store) UpdateID(ctx context.Context, q db.DBTX, oldID, newID string) (int64, error) {
	return affected(q.ExecContext(ctx, `UPDATE auth_accounts SET id = ? WHERE id = ?`, newID, oldID))
}

func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) (int64, error) {
	v := 0
	if disabled {
		v = 1
	}
	return affected(s.db.ExecContext(ctx, `UPDATE auth_accounts SET is_disabled = ? WHERE id = ?`, v, id))
}

func affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
