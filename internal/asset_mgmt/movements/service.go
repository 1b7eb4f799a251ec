package movements

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/ids"
	"ASSETRACK-backend/internal/platform/paging"
)

type Service struct {
	db    *sql.DB
	store *Store
	clock clock.Clock
	ids   ids.IDGen
}

func NewService(conn *sql.DB, d db.Dialect, clk clock.Clock, gen ids.IDGen) *Service {
	return &Service{db: conn, store: NewStore(conn, d), clock: clk, ids: gen}
}

func internalErr(op string, err error) error {
	var api *apierr.APIError
	if errors.As(err, &api) {
		return api
	}
	if db.IsForeignKeyViolation(err) {
		return apierr.Invalid("referenced row does not exist")
	}
	log.Printf("[ERROR] movements.%s: %v", op, err)
	return apierr.Internal("database error")
}

// RecordMovementAndRelocate は移動履歴の追加と資産の所属部署更新を1トランザクションで行う。
// to_department_id が null の場合、所属部署は変えない。
func (s *Service) RecordMovementAndRelocate(ctx context.Context, actor string, in RecordMovementRequest) (*Movement, error) {
	now := s.clock.Now().UTC().Truncate(time.Second)
	ulid, err := s.ids.New(now)
	if err != nil {
		return nil, internalErr("RecordMovementAndRelocate", err)
	}

	m := &Movement{
		MovementULID:     ulid,
		AssetID:          in.AssetID,
		FromDepartmentID: in.FromDepartmentID,
		ToDepartmentID:   in.ToDepartmentID,
		DateMoved:        now,
		Remarks:          in.Remarks,
	}

	var out *Movement
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.store.lockAsset(ctx, tx, in.AssetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.InvalidField("asset_id", "asset does not exist")
			}
			return err
		}
		if err := s.checkDepartments(ctx, tx, in.FromDepartmentID, in.ToDepartmentID); err != nil {
			return err
		}
		// 削除済みアカウントのトークンなら moved_by は記録しない
		if actor != "" {
			ok, err := s.store.accountExists(ctx, tx, actor)
			if err != nil {
				return err
			}
			if ok {
				m.MovedBy = &actor
			}
		}

		id, err := s.store.insert(ctx, tx, m)
		if err != nil {
			return err
		}
		if in.ToDepartmentID != nil {
			if err := s.store.relocateAsset(ctx, tx, in.AssetID, *in.ToDepartmentID); err != nil {
				return err
			}
		}
		out, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, internalErr("RecordMovementAndRelocate", err)
	}
	log.Printf("[INFO] movement %s: asset=%d by=%q", ulid, in.AssetID, actor)
	return out, nil
}

func (s *Service) checkDepartments(ctx context.Context, tx db.DBTX, from, to *int64) error {
	fe := apierr.FieldErrors{}
	for field, id := range map[string]*int64{"from_department_id": from, "to_department_id": to} {
		if id == nil {
			continue
		}
		ok, err := s.store.departmentExists(ctx, tx, *id)
		if err != nil {
			return err
		}
		if !ok {
			fe.Add(field, "department does not exist")
		}
	}
	return fe.Err()
}

func (s *Service) Get(ctx context.Context, id int64) (*Movement, error) {
	m, err := s.store.Get(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("movement not found")
	}
	if err != nil {
		return nil, internalErr("Get", err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, f Filter, p paging.Page) ([]Movement, int64, error) {
	items, total, err := s.store.List(ctx, f, p.Normalize())
	if err != nil {
		return nil, 0, internalErr("List", err)
	}
	return items, total, nil
}

// Update は履歴のみ書き換える（assets.department_id とはずれ得る）
func (s *Service) Update(ctx context.Context, id int64, in UpdateMovementRequest) (*Movement, error) {
	var out *Movement
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.Get(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("movement not found")
			}
			return err
		}
		ok, err := s.store.assetExists(ctx, tx, in.AssetID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.InvalidField("asset_id", "asset does not exist")
		}
		if err := s.checkDepartments(ctx, tx, in.FromDepartmentID, in.ToDepartmentID); err != nil {
			return err
		}
		if err := s.store.update(ctx, tx, id, in); err != nil {
			return err
		}
		out, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, internalErr("Update", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("movement not found")
		}
		return internalErr("Delete", err)
	}
	return nil
}
