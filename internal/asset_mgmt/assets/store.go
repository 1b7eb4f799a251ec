package assets

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

const selectAsset = `
	SELECT a.asset_id, a.name, a.category_id, c.name, a.serial_number,
	       a.department_id, d.name, a.assigned_to, a.purchase_date,
	       a.asset_condition, a.status, a.description, a.date_added,
	       a.current_holder, a.last_checked_out, a.expected_return_time
	FROM assets a
	LEFT JOIN asset_categories c ON c.category_id = a.category_id
	LEFT JOIN departments d ON d.department_id = a.department_id`

type scanner interface{ Scan(dest ...any) error }

func scanAsset(sc scanner) (Asset, error) {
	var a Asset
	var catID, depID sql.NullInt64
	var catName, depName, assigned, holder sql.NullString
	var purchase time.Time
	var lastOut, expected sql.NullTime
	if err := sc.Scan(&a.AssetID, &a.Name, &catID, &catName, &a.SerialNumber,
		&depID, &depName, &assigned, &purchase,
		&a.Condition, &a.Status, &a.Description, &a.DateAdded,
		&holder, &lastOut, &expected); err != nil {
		return Asset{}, err
	}
	a.CategoryID = int64Ptr(catID)
	a.Category = strPtr(catName)
	a.DepartmentID = int64Ptr(depID)
	a.Department = strPtr(depName)
	a.AssignedTo = strPtr(assigned)
	a.PurchaseDate = purchase.Format(DateLayout)
	a.CurrentHolder = strPtr(holder)
	a.LastCheckedOut = timePtr(lastOut)
	a.ExpectedReturnTime = timePtr(expected)
	return a, nil
}

// Get は q（*sql.DB でも Tx でも可）経由で1件取得
func (s *Store) Get(ctx context.Context, q db.DBTX, id int64) (*Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, selectAsset+` WHERE a.asset_id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func likeEscape(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}

// List は date_added の新しい順
func (s *Store) List(ctx context.Context, q db.DBTX, f Filter, p paging.Page) ([]Asset, int64, error) {
	var where strings.Builder
	args := []any{}
	where.WriteString(" WHERE 1=1")
	if f.Status != nil {
		where.WriteString(" AND a.status = ?")
		args = append(args, *f.Status)
	}
	if f.DepartmentID != nil {
		where.WriteString(" AND a.department_id = ?")
		args = append(args, *f.DepartmentID)
	}
	if f.CategoryID != nil {
		where.WriteString(" AND a.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if kw := strings.TrimSpace(f.Q); kw != "" {
		where.WriteString(" AND (a.name LIKE ? ESCAPE '!' OR a.serial_number LIKE ? ESCAPE '!')")
		pat := likeEscape(kw)
		args = append(args, pat, pat)
	}
	if f.NeedsAttention {
		where.WriteString(" AND (a.status = ? OR a.asset_condition = ?)")
		args = append(args, StatusUnderMaintenance, ConditionPoor)
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets a`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx,
		selectAsset+where.String()+" ORDER BY a.date_added DESC, a.asset_id DESC LIMIT ? OFFSET ?",
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

// LockStatus は行ロックを取って現在の status を返す（無ければ sql.ErrNoRows）
func (s *Store) LockStatus(ctx context.Context, tx db.DBTX, id int64) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM assets WHERE asset_id = ?`+s.dialect.ForUpdate(), id).Scan(&status)
	return status, err
}

type row struct {
	AssetRequest
	purchase time.Time
}

func (s *Store) insert(ctx context.Context, tx db.DBTX, in row, dateAdded time.Time) (int64, error) {
	const q = `
	INSERT INTO assets
	(name, category_id, serial_number, department_id, assigned_to, purchase_date,
	 asset_condition, status, description, date_added)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, in.Name, in.CategoryID, in.SerialNumber, in.DepartmentID, in.AssignedTo,
		in.purchase, in.Condition, in.Status, in.Description, dateAdded)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// update は編集フォームの項目のみ置換。date_added と貸出系カラムは触らない
func (s *Store) update(ctx context.Context, tx db.DBTX, id int64, in row) error {
	const q = `
	UPDATE assets
	SET name = ?, category_id = ?, serial_number = ?, department_id = ?, assigned_to = ?,
	    purchase_date = ?, asset_condition = ?, status = ?, description = ?
	WHERE asset_id = ?`
	res, err := tx.ExecContext(ctx, q, in.Name, in.CategoryID, in.SerialNumber, in.DepartmentID, in.AssignedTo,
		in.purchase, in.Condition, in.Status, in.Description, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE asset_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) exists(ctx context.Context, tx db.DBTX, query string, arg any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, arg).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
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

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
