package lends

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db"
)

type Service struct {
	db     *sql.DB
	assets *assets.Store
	store  *Store
	clock  clock.Clock
}

func NewService(conn *sql.DB, d db.Dialect, clk clock.Clock) *Service {
	return &Service{db: conn, assets: assets.NewStore(conn, d), store: NewStore(), clock: clk}
}

func internalErr(op string, err error) error {
	var api *apierr.APIError
	if errors.As(err, &api) {
		return api
	}
	log.Printf("[ERROR] lends.%s: %v", op, err)
	return apierr.Internal("database error")
}

// Checkout は行ロック付きで状態を確認してから貸出中にする。
// 使用中なら Conflict（状態は変えない）。
func (s *Service) Checkout(ctx context.Context, assetID int64, actor string) (*assets.Asset, error) {
	if actor == "" {
		return nil, &apierr.APIError{Code: apierr.CodeUnauthenticated, Message: "no acting user"}
	}
	now := s.clock.Now().UTC().Truncate(time.Second)

	var out *assets.Asset
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		status, err := s.assets.LockStatus(ctx, tx, assetID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("asset not found")
			}
			return err
		}
		if status == assets.StatusInUse {
			return apierr.Conflict("asset is already checked out")
		}
		if err := s.store.checkout(ctx, tx, assetID, assets.StatusInUse, actor, now); err != nil {
			return err
		}
		out, err = s.assets.Get(ctx, tx, assetID)
		return err
	})
	if err != nil {
		return nil, internalErr("Checkout", err)
	}
	log.Printf("[INFO] checkout: asset=%d holder=%q", assetID, actor)
	return out, nil
}

// Return は直前の状態に関係なく Available に戻す
func (s *Service) Return(ctx context.Context, assetID int64) (*assets.Asset, error) {
	var out *assets.Asset
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.assets.LockStatus(ctx, tx, assetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apierr.NotFound("asset not found")
			}
			return err
		}
		if err := s.store.giveBack(ctx, tx, assetID, assets.StatusAvailable); err != nil {
			return err
		}
		var err error
		out, err = s.assets.Get(ctx, tx, assetID)
		return err
	})
	if err != nil {
		return nil, internalErr("Return", err)
	}
	log.Printf("[INFO] return: asset=%d", assetID)
	return out, nil
}
