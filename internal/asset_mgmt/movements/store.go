package movements

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/paging"
)

type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewStore(conn *sql.DB, d db.Dialect) *Store { return &Store{db: conn, dialect: d} }

const selectMovement = `
	SELECT m.movement_id, m.movement_ulid, m.asset_id, a.name,
	       m.from_department_id, fd.name, m.to_department_id, td.name,
	       m.moved_by, m.date_moved, m.remarks
	FROM asset_movements m
	JOIN assets a ON a.asset_id = m.asset_id
	LEFT JOIN departments fd ON fd.department_id = m.from_department_id
	LEFT JOIN departments td ON td.department_id = m.to_department_id`

type scanner interface{ Scan(dest ...any) error }

func scanMovement(sc scanner) (Movement, error) {
	var m Movement
	var fromID, toID sql.NullInt64
	var fromName, toName, movedBy sql.NullString
	if err := sc.Scan(&m.MovementID, &m.MovementULID, &m.AssetID, &m.AssetName,
		&fromID, &fromName, &toID, &toName, &movedBy, &m.DateMoved, &m.Remarks); err != nil {
		return Movement{}, err
	}
	m.FromDepartmentID = int64Ptr(fromID)
	m.FromDepartment = strPtr(fromName)
	m.ToDepartmentID = int64Ptr(toID)
	m.ToDepartment = strPtr(toName)
	m.MovedBy = strPtr(movedBy)
	return m, nil
}

func (s *Store) Get(ctx context.Context, q db.DBTX, id int64) (*Movement, error) {
	m, err := scanMovement(q.QueryRowContext(ctx, selectMovement+` WHERE m.movement_id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List は新しい順
func (s *Store) List(ctx context.Context, f Filter, p paging.Page) ([]Movement, int64, error) {
	var where strings.Builder
	args := []any{}
	where.WriteString(" WHERE 1=1")
	if f.AssetID != nil {
		where.WriteString(" AND m.asset_id = ?")
		args = append(args, *f.AssetID)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asset_movements m`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := selectMovement + where.String() + " ORDER BY m.date_moved DESC, m.movement_id DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// ListByAsset: 資産1件の移動履歴（新しい順）
func (s *Store) ListByAsset(ctx context.Context, q db.DBTX, assetID int64) ([]Movement, error) {
	rows, err := q.QueryContext(ctx, selectMovement+` WHERE m.asset_id = ? ORDER BY m.date_moved DESC, m.movement_id DESC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// lockAsset は資産行をロックする（存在しなければ sql.ErrNoRows）
func (s *Store) lockAsset(ctx context.Context, tx db.DBTX, assetID int64) error {
	var id int64
	return tx.QueryRowContext(ctx, `SELECT asset_id FROM assets WHERE asset_id = ?`+s.dialect.ForUpdate(), assetID).Scan(&id)
}

func (s *Store) assetExists(ctx context.Context, tx db.DBTX, assetID int64) (bool, error) {
	return exists(ctx, tx, `SELECT 1 FROM assets WHERE asset_id = ?`, assetID)
}

func (s *Store) departmentExists(ctx context.Context, tx db.DBTX, id int64) (bool, error) {
	return exists(ctx, tx, `SELECT 1 FROM departments WHERE department_id = ?`, id)
}

func (s *Store) accountExists(ctx context.Context, tx db.DBTX, id string) (bool, error) {
	return exists(ctx, tx, `SELECT 1 FROM auth_accounts WHERE id = ?`, id)
}

func (s *Store) insert(ctx context.Context, tx db.DBTX, m *Movement) (int64, error) {
	const q = `
	INSERT INTO asset_movements
	(movement_ulid, asset_id, from_department_id, to_department_id, moved_by, date_moved, remarks)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, m.MovementULID, m.AssetID, m.FromDepartmentID, m.ToDepartmentID,
		m.MovedBy, m.DateMoved, m.Remarks)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) relocateAsset(ctx context.Context, tx db.DBTX, assetID, departmentID int64) error {
	res, err := tx.ExecContext(ctx, `UPDATE assets SET department_id = ? WHERE asset_id = ?`, departmentID, assetID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) update(ctx context.Context, tx db.DBTX, id int64, in UpdateMovementRequest) error {
	const q = `
	UPDATE asset_movements
	SET asset_id = ?, from_department_id = ?, to_department_id = ?, remarks = ?
	WHERE movement_id = ?`
	res, err := tx.ExecContext(ctx, q, in.AssetID, in.FromDepartmentID, in.ToDepartmentID, in.Remarks, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM asset_movements WHERE movement_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountSince: date_moved >= since の件数
func (s *Store) CountSince(ctx context.Context, q db.DBTX, since time.Time) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM asset_movements WHERE date_moved >= ?`, since).Scan(&n)
	return n, err
}

func exists(ctx context.Context, q db.DBTX, query string, arg any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, arg).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
