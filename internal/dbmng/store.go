package dbmng

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ===== departments =====

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	const q = `
		SELECT department_id, name, location, head_of_department
		FROM departments
		ORDER BY name, department_id
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Department, 0, 16)
	for rows.Next() {
		var d Department
		var head sql.NullString
		if err := rows.Scan(&d.DepartmentID, &d.Name, &d.Location, &head); err != nil {
			return nil, err
		}
		d.HeadOfDepartment = nullToPtr(head)
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetDepartmentByID(ctx context.Context, id int64) (*Department, error) {
	const q = `
		SELECT department_id, name, location, head_of_department
		FROM departments
		WHERE department_id = ?
	`
	var d Department
	var head sql.NullString
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&d.DepartmentID, &d.Name, &d.Location, &head); err != nil {
		return nil, err
	}
	d.HeadOfDepartment = nullToPtr(head)
	return &d, nil
}

func (s *Store) CreateDepartment(ctx context.Context, in DepartmentRequest) (*Department, error) {
	const q = `
		INSERT INTO departments (name, location, head_of_department)
		VALUES (?, ?, ?)
	`
	r, err := s.db.ExecContext(ctx, q, in.Name, in.Location, in.HeadOfDepartment)
	if err != nil {
		return nil, err
	}
	lastID, err := r.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Department{
		DepartmentID:     lastID,
		Name:             in.Name,
		Location:         in.Location,
		HeadOfDepartment: in.HeadOfDepartment,
	}, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, in DepartmentRequest) error {
	const q = `
		UPDATE departments
		SET name = ?, location = ?, head_of_department = ?
		WHERE department_id = ?
	`
	return execOne(ctx, s.db, q, in.Name, in.Location, in.HeadOfDepartment, id)
}

// DeleteDepartment は物理削除。assets / asset_movements の参照は FK の ON DELETE SET NULL で外れる
func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM departments WHERE department_id = ?`, id)
}

// ===== categories =====

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	const q = `
		SELECT category_id, name, description
		FROM asset_categories
		ORDER BY name, category_id
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Category, 0, 16)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	const q = `
		SELECT category_id, name, description
		FROM asset_categories
		WHERE category_id = ?
	`
	var c Category
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&c.CategoryID, &c.Name, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in CategoryRequest) (*Category, error) {
	const q = `INSERT INTO asset_categories (name, description) VALUES (?, ?)`
	r, err := s.db.ExecContext(ctx, q, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	lastID, err := r.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Category{CategoryID: lastID, Name: in.Name, Description: in.Description}, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, in CategoryRequest) error {
	const q = `
		UPDATE asset_categories
		SET name = ?, description = ?
		WHERE category_id = ?
	`
	return execOne(ctx, s.db, q, in.Name, in.Description, id)
}

// DeleteCategory: assets.category_id は ON DELETE SET NULL
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM asset_categories WHERE category_id = ?`, id)
}

// execOne: 該当行がなければ sql.ErrNoRows
func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	r, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
