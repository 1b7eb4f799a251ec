package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
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

func NewService(conn *sql.DB, clk clock.Clock, gen ids.IDGen) *Service {
	return &Service{db: conn, store: NewStore(conn), clock: clk, ids: gen}
}

func internalErr(op string, err error) error {
	var api *apierr.APIError
	if errors.As(err, &api) {
		return api
	}
	if db.IsForeignKeyViolation(err) {
		return apierr.InvalidField("asset_id", "asset does not exist")
	}
	log.Printf("[ERROR] maintenance.%s: %v", op, err)
	return apierr.Internal("database error")
}

func normalize(in MaintenanceRequest) (MaintenanceRequest, time.Time, error) {
	in.IssueReported = strings.TrimSpace(in.IssueReported)
	in.PerformedBy = strings.TrimSpace(in.PerformedBy)
	fe := apierr.FieldErrors{}
	if in.IssueReported == "" {
		fe.Add("issue_reported", "this field is required")
	}
	if in.PerformedBy == "" {
		fe.Add("performed_by", "this field is required")
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(in.MaintenanceDate))
	if err != nil {
		fe.Add("maintenance_date", "must be a date in YYYY-MM-DD format")
	}
	return in, date, fe.Err()
}

// RecordMaintenance は記録を追加するだけ。資産の status / condition は変更しない
func (s *Service) RecordMaintenance(ctx context.Context, in MaintenanceRequest) (*Record, error) {
	in, date, err := normalize(in)
	if err != nil {
		return nil, err
	}
	ulid, err := s.ids.New(s.clock.Now())
	if err != nil {
		return nil, internalErr("RecordMaintenance", err)
	}

	var out *Record
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.store.assetExists(ctx, tx, in.AssetID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.InvalidField("asset_id", "asset does not exist")
		}
		id, err := s.store.insert(ctx, tx, ulid, in, date)
		if err != nil {
			return err
		}
		out, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, internalErr("RecordMaintenance", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	r, err := s.store.Get(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("maintenance record not found")
	}
	if err != nil {
		return nil, internalErr("Get", err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f Filter, p paging.Page) ([]Record, int64, error) {
	items, total, err := s.store.List(ctx, f, p.Normalize())
	if err != nil {
		return nil, 0, internalErr("List", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, in MaintenanceRequest) (*Record, error) {
	in, date, err := normalize(in)
	if err != nil {
		return nil, err
	}
	var out *Record
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.Get(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("maintenance record not found")
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
		if err := s.store.update(ctx, tx, id, in, date); err != nil {
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
			return apierr.NotFound("maintenance record not found")
		}
		return internalErr("Delete", err)
	}
	return nil
}
