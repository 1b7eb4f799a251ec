package dbmng

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"ASSETRACK-backend/internal/platform/apierr"
)

type Service struct {
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

func internal(op string, err error) error {
	log.Printf("[ERROR] dbmng.%s: %v", op, err)
	return apierr.Internal("database error")
}

// ===== departments =====

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	res, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, internal("ListDepartments", err)
	}
	return res, nil
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	d, err := s.store.GetDepartmentByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("department not found")
	}
	if err != nil {
		return nil, internal("GetDepartment", err)
	}
	return d, nil
}

func (s *Service) CreateDepartment(ctx context.Context, in DepartmentRequest) (*Department, error) {
	in, err := normalizeDepartment(in)
	if err != nil {
		return nil, err
	}
	d, err := s.store.CreateDepartment(ctx, in)
	if err != nil {
		return nil, internal("CreateDepartment", err)
	}
	return d, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, in DepartmentRequest) (*Department, error) {
	in, err := normalizeDepartment(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateDepartment(ctx, id, in); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFound("department not found")
		}
		return nil, internal("UpdateDepartment", err)
	}
	return s.GetDepartment(ctx, id)
}

func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.store.DeleteDepartment(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("department not found")
		}
		return internal("DeleteDepartment", err)
	}
	return nil
}

func normalizeDepartment(in DepartmentRequest) (DepartmentRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if in.Name == "" {
		return in, apierr.InvalidField("name", "this field is required")
	}
	// 空文字の責任者は未設定扱い
	if in.HeadOfDepartment != nil {
		h := strings.TrimSpace(*in.HeadOfDepartment)
		if h == "" {
			in.HeadOfDepartment = nil
		} else {
			in.HeadOfDepartment = &h
		}
	}
	return in, nil
}

// ===== categories =====

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	res, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, internal("ListCategories", err)
	}
	return res, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, err := s.store.GetCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("category not found")
	}
	if err != nil {
		return nil, internal("GetCategory", err)
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryRequest) (*Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apierr.InvalidField("name", "this field is required")
	}
	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return nil, internal("CreateCategory", err)
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryRequest) (*Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apierr.InvalidField("name", "this field is required")
	}
	if err := s.store.UpdateCategory(ctx, id, in); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFound("category not found")
		}
		return nil, internal("UpdateCategory", err)
	}
	return s.GetCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("category not found")
		}
		return internal("DeleteCategory", err)
	}
	return nil
}
