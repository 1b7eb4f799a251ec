package assets

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/maintenance"
	"ASSETRACK-backend/internal/asset_mgmt/movements"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/paging"
)

type Service struct {
	db          *sql.DB
	dialect     db.Dialect
	store       *Store
	movements   *movements.Store
	maintenance *maintenance.Store
	clock       clock.Clock
}

func NewService(conn *sql.DB, d db.Dialect, clk clock.Clock) *Service {
	return &Service{
		db:          conn,
		dialect:     d,
		store:       NewStore(conn, d),
		movements:   movements.NewStore(conn, d),
		maintenance: maintenance.NewStore(conn),
		clock:       clk,
	}
}

func mapErr(op string, err error) error {
	var api *apierr.APIError
	if errors.As(err, &api) {
		return api
	}
	if db.IsDuplicateKey(err) {
		return apierr.InvalidField("serial_number", "asset with this serial number already exists")
	}
	if db.IsForeignKeyViolation(err) {
		return apierr.Invalid("referenced row does not exist")
	}
	log.Printf("[ERROR] assets.%s: %v", op, err)
	return apierr.Internal("database error")
}

// withDefaults: 新規登録時のみ condition=Good, status=Available を補う
func withDefaults(in AssetRequest) AssetRequest {
	if strings.TrimSpace(in.Condition) == "" {
		in.Condition = ConditionGood
	}
	if strings.TrimSpace(in.Status) == "" {
		in.Status = StatusAvailable
	}
	return in
}

// normalize: 入力の整形と検証。編集では condition / status も必須
func normalize(in AssetRequest) (row, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.Condition = strings.TrimSpace(in.Condition)
	in.Status = strings.TrimSpace(in.Status)
	if in.AssignedTo != nil && strings.TrimSpace(*in.AssignedTo) == "" {
		in.AssignedTo = nil
	}

	fe := apierr.FieldErrors{}
	if in.Name == "" {
		fe.Add("name", "this field is required")
	}
	if in.SerialNumber == "" {
		fe.Add("serial_number", "this field is required")
	}
	if in.Condition == "" {
		fe.Add("condition", "this field is required")
	}
	if in.Status == "" {
		fe.Add("status", "this field is required")
	} else if !ValidStatus(in.Status) {
		fe.Add("status", "must be one of Available, In Use, Under Maintenance, Disposed")
	}
	purchase, err := time.Parse(DateLayout, strings.TrimSpace(in.PurchaseDate))
	if err != nil {
		fe.Add("purchase_date", "must be a date in YYYY-MM-DD format")
	}
	return row{AssetRequest: in, purchase: purchase}, fe.Err()
}

// checkRefs は参照先の存在をフィールド単位で検証する
func (s *Service) checkRefs(ctx context.Context, tx db.DBTX, in AssetRequest) error {
	fe := apierr.FieldErrors{}
	check := func(field, query string, arg any) error {
		ok, err := s.store.exists(ctx, tx, query, arg)
		if err != nil {
			return err
		}
		if !ok {
			fe.Add(field, "selected value does not exist")
		}
		return nil
	}
	if in.CategoryID != nil {
		if err := check("category_id", `SELECT 1 FROM asset_categories WHERE category_id = ?`, *in.CategoryID); err != nil {
			return err
		}
	}
	if in.DepartmentID != nil {
		if err := check("department_id", `SELECT 1 FROM departments WHERE department_id = ?`, *in.DepartmentID); err != nil {
			return err
		}
	}
	if in.AssignedTo != nil {
		if err := check("assigned_to", `SELECT 1 FROM auth_accounts WHERE id = ?`, *in.AssignedTo); err != nil {
			return err
		}
	}
	return fe.Err()
}

func (s *Service) CreateAsset(ctx context.Context, in AssetRequest) (*Asset, error) {
	r, err := normalize(withDefaults(in))
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC().Truncate(time.Second)

	var out *Asset
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.checkRefs(ctx, tx, r.AssetRequest); err != nil {
			return err
		}
		id, err := s.store.insert(ctx, tx, r, now)
		if err != nil {
			return err
		}
		out, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapErr("CreateAsset", err)
	}
	log.Printf("[INFO] asset created: id=%d serial=%q", out.AssetID, out.SerialNumber)
	return out, nil
}

func (s *Service) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	a, err := s.store.Get(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("asset not found")
	}
	if err != nil {
		return nil, mapErr("GetAsset", err)
	}
	return a, nil
}

// GetAssetDetail は資産＋移動履歴＋保守記録を同一スナップショットで返す
func (s *Service) GetAssetDetail(ctx context.Context, id int64) (*AssetDetail, error) {
	var out AssetDetail
	err := db.ReadOnly(ctx, s.db, s.dialect, func(ctx context.Context, tx db.DBTX) error {
		a, err := s.store.Get(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("asset not found")
			}
			return err
		}
		out.Asset = *a
		if out.Movements, err = s.movements.ListByAsset(ctx, tx, id); err != nil {
			return err
		}
		out.MaintenanceRecords, err = s.maintenance.ListByAsset(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapErr("GetAssetDetail", err)
	}
	return &out, nil
}

func (s *Service) ListAssets(ctx context.Context, f Filter, p paging.Page) ([]Asset, int64, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, 0, apierr.InvalidField("status", "must be one of Available, In Use, Under Maintenance, Disposed")
	}
	items, total, err := s.store.List(ctx, s.db, f, p.Normalize())
	if err != nil {
		return nil, 0, mapErr("ListAssets", err)
	}
	return items, total, nil
}

// UpdateAsset: 編集は status を4値のどれにでも変更できる唯一の経路
func (s *Service) UpdateAsset(ctx context.Context, id int64, in AssetRequest) (*Asset, error) {
	r, err := normalize(in)
	if err != nil {
		return nil, err
	}
	var out *Asset
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.LockStatus(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("asset not found")
			}
			return err
		}
		if err := s.checkRefs(ctx, tx, r.AssetRequest); err != nil {
			return err
		}
		if err := s.store.update(ctx, tx, id, r); err != nil {
			return err
		}
		out, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapErr("UpdateAsset", err)
	}
	return out, nil
}

// DeleteAsset: 移動履歴・保守記録は FK の CASCADE で消える
func (s *Service) DeleteAsset(ctx context.Context, id int64) error {
	if err := s.store.delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("asset not found")
		}
		return mapErr("DeleteAsset", err)
	}
	log.Printf("[INFO] asset deleted: id=%d", id)
	return nil
}
