package reports

import (
	"context"
	"database/sql"
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/platform/db"
)

const (
	unassigned    = "Unassigned"
	uncategorized = "Uncategorized"
)

// Store は集計クエリ専用。すべて呼び出し側の Tx 上で実行する
type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) count(ctx context.Context, q db.DBTX, query string, args ...any) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// statusCounts: status -> 件数
func (s *Store) statusCounts(ctx context.Context, q db.DBTX) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// groupCounts は "label, count" の集計。NULL ラベルは fallback に置き換える
func (s *Store) groupCounts(ctx context.Context, q db.DBTX, fallback, query string, args ...any) ([]Count, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Count{}
	for rows.Next() {
		var label sql.NullString
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		c := Count{Label: label.String, Count: n}
		if !label.Valid {
			c.Label = fallback
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) byStatus(ctx context.Context, q db.DBTX) ([]Count, error) {
	return s.groupCounts(ctx, q, "", `
	SELECT status, COUNT(*) FROM assets GROUP BY status ORDER BY status`)
}

func (s *Store) byCondition(ctx context.Context, q db.DBTX) ([]Count, error) {
	return s.groupCounts(ctx, q, "", `
	SELECT asset_condition, COUNT(*) FROM assets GROUP BY asset_condition ORDER BY asset_condition`)
}

// byDepartment: 件数の多い順。limit <= 0 なら名前順で全件
func (s *Store) byDepartment(ctx context.Context, q db.DBTX, limit int) ([]Count, error) {
	const base = `
	SELECT d.name, COUNT(*) AS total
	FROM assets a
	LEFT JOIN departments d ON d.department_id = a.department_id
	GROUP BY d.name`
	if limit <= 0 {
		return s.groupCounts(ctx, q, unassigned, base+` ORDER BY d.name`)
	}
	return s.groupCounts(ctx, q, unassigned, base+` ORDER BY total DESC, d.name LIMIT ?`, limit)
}

func (s *Store) byCategory(ctx context.Context, q db.DBTX, limit int) ([]Count, error) {
	const base = `
	SELECT c.name, COUNT(*) AS total
	FROM assets a
	LEFT JOIN asset_categories c ON c.category_id = a.category_id
	GROUP BY c.name`
	if limit <= 0 {
		return s.groupCounts(ctx, q, uncategorized, base+` ORDER BY c.name`)
	}
	return s.groupCounts(ctx, q, uncategorized, base+` ORDER BY total DESC, c.name LIMIT ?`, limit)
}

func (s *Store) topDepartments(ctx context.Context, q db.DBTX, limit int) ([]DepartmentCount, error) {
	const query = `
	SELECT d.department_id, d.name, d.location, COUNT(a.asset_id) AS asset_count
	FROM departments d
	LEFT JOIN assets a ON a.department_id = d.department_id
	GROUP BY d.department_id, d.name, d.location
	ORDER BY asset_count DESC, d.name, d.department_id
	LIMIT ?`
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DepartmentCount{}
	for rows.Next() {
		var d DepartmentCount
		if err := rows.Scan(&d.DepartmentID, &d.Name, &d.Location, &d.AssetCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// departmentStatus: 名前順で先頭 limit 部署の状態別件数
func (s *Store) departmentStatus(ctx context.Context, q db.DBTX, limit int) ([]DepartmentStatus, error) {
	const query = `
	SELECT d.department_id, d.name,
	       COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0)
	FROM (SELECT department_id, name FROM departments ORDER BY name, department_id LIMIT ?) d
	LEFT JOIN assets a ON a.department_id = d.department_id
	GROUP BY d.department_id, d.name
	ORDER BY d.name, d.department_id`
	rows, err := q.QueryContext(ctx, query,
		assets.StatusAvailable, assets.StatusInUse, assets.StatusUnderMaintenance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DepartmentStatus{}
	for rows.Next() {
		var d DepartmentStatus
		if err := rows.Scan(&d.DepartmentID, &d.Department, &d.Available, &d.InUse, &d.UnderMaintenance); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// addedBetween: from <= date_added < to の件数（closed なら to を含む）
func (s *Store) addedBetween(ctx context.Context, q db.DBTX, from, to time.Time, closed bool) (int64, error) {
	op := "<"
	if closed {
		op = "<="
	}
	return s.count(ctx, q, `SELECT COUNT(*) FROM assets WHERE date_added >= ? AND date_added `+op+` ?`, from, to)
}

func (s *Store) exportRows(ctx context.Context, q db.DBTX) ([]ExportRow, error) {
	const query = `
	SELECT a.asset_id, a.name, a.serial_number, c.name, d.name, a.status, a.asset_condition,
	       a.current_holder, a.purchase_date, a.date_added
	FROM assets a
	LEFT JOIN asset_categories c ON c.category_id = a.category_id
	LEFT JOIN departments d ON d.department_id = a.department_id
	ORDER BY a.asset_id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExportRow{}
	for rows.Next() {
		var r ExportRow
		var cat, dep, holder sql.NullString
		var purchase time.Time
		if err := rows.Scan(&r.AssetID, &r.Name, &r.SerialNumber, &cat, &dep, &r.Status, &r.Condition,
			&holder, &purchase, &r.DateAdded); err != nil {
			return nil, err
		}
		r.Category = cat.String
		if !cat.Valid {
			r.Category = uncategorized
		}
		r.Department = dep.String
		if !dep.Valid {
			r.Department = unassigned
		}
		r.CurrentHolder = holder.String
		r.PurchaseDate = purchase.Format(assets.DateLayout)
		out = append(out, r)
	}
	return out, rows.Err()
}
