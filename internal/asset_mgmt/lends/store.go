package lends

import (
	"context"
	"database/sql"
	"time"

	"ASSETRACK-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

// checkout: status=In Use, current_holder=actor, last_checked_out=now。expected_return_time は変更しない
func (s *Store) checkout(ctx context.Context, tx db.DBTX, assetID int64, status, holder string, now time.Time) error {
	const q = `
	UPDATE assets
	SET status = ?, current_holder = ?, last_checked_out = ?
	WHERE asset_id = ?`
	return execOne(ctx, tx, q, status, holder, now, assetID)
}

// giveBack: status=Available, current_holder / expected_return_time をクリア
func (s *Store) giveBack(ctx context.Context, tx db.DBTX, assetID int64, status string) error {
	const q = `
	UPDATE assets
	SET status = ?, current_holder = NULL, expected_return_time = NULL
	WHERE asset_id = ?`
	return execOne(ctx, tx, q, status, assetID)
}

func execOne(ctx context.Context, tx db.DBTX, q string, args ...any) error {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return sql.ErrNoRows
	}
	return nil
}
