package maintenance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/paging"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const selectRecord = `
	SELECT r.record_id, r.record_ulid, r.asset_id, a.name, r.issue_reported,
	       r.maintenance_date, r.performed_by, r.remarks
	FROM maintenance_records r
	JOIN assets a ON a.asset_id = r.asset_id`

type scanner interface{ Scan(dest ...any) error }

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var date time.Time
	if err := sc.Scan(&r.RecordID, &r.RecordULID, &r.AssetID, &r.AssetName, &r.IssueReported,
		&date, &r.PerformedBy, &r.Remarks); err != nil {
		return Record{}, err
	}
	r.MaintenanceDate = date.Format(DateLayout)
	return r, nil
}

func (s *Store) Get(ctx context.Context, q db.DBTX, id int64) (*Record, error) {
	r, err := scanRecord(q.QueryRowContext(ctx, selectRecord+` WHERE r.record_id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, f Filter, p paging.Page) ([]Record, int64, error) {
	var where strings.Builder
	args := []any{}
	where.WriteString(" WHERE 1=1")
	if f.AssetID != nil {
		where.WriteString(" AND r.asset_id = ?")
		args = append(args, *f.AssetID)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM maintenance_records r`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		selectRecord+where.String()+" ORDER BY r.maintenance_date DESC, r.record_id DESC LIMIT ? OFFSET ?",
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list, err := collect(rows)
	return list, total, err
}

func (s *Store) ListByAsset(ctx context.Context, q db.DBTX, assetID int64) ([]Record, error) {
	rows, err := q.QueryContext(ctx, selectRecord+` WHERE r.asset_id = ? ORDER BY r.maintenance_date DESC, r.record_id DESC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Record, error) {
	list := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *Store) assetExists(ctx context.Context, tx db.DBTX, assetID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM assets WHERE asset_id = ?`, assetID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) insert(ctx context.Context, tx db.DBTX, ulid string, in MaintenanceRequest, date time.Time) (int64, error) {
	const q = `
	INSERT INTO maintenance_records
	(record_ulid, asset_id, issue_reported, maintenance_date, performed_by, remarks)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ulid, in.AssetID, in.IssueReported, date, in.PerformedBy, in.Remarks)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) update(ctx context.Context, tx db.DBTX, id int64, in MaintenanceRequest, date time.Time) error {
	const q = `
	UPDATE maintenance_records
	SET asset_id = ?, issue_reported = ?, maintenance_date = ?, performed_by = ?, remarks = ?
	WHERE record_id = ?`
	res, err := tx.ExecContext(ctx, q, in.AssetID, in.IssueReported, date, in.PerformedBy, in.Remarks, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM maintenance_records WHERE record_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
