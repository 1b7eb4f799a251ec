package reports

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/asset_mgmt/movements"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/paging"
)

// ダッシュボードの表示件数
const (
	departmentChartLimit  = 8
	categoryChartLimit    = 6
	topDepartmentsLimit   = 5
	recentAssetsLimit     = 10
	needingAttentionLimit = 8
	departmentStatusLimit = 6
	trendBuckets          = 6
	trendBucketDays       = 30
	recentWindow          = 30 * 24 * time.Hour
	trendLabelLayout      = "Jan 2006"
)

type Service struct {
	db        *sql.DB
	dialect   db.Dialect
	store     *Store
	assets    *assets.Store
	movements *movements.Store
	clock     clock.Clock
}

func NewService(conn *sql.DB, d db.Dialect, clk clock.Clock) *Service {
	return &Service{
		db:        conn,
		dialect:   d,
		store:     NewStore(),
		assets:    assets.NewStore(conn, d),
		movements: movements.NewStore(conn, d),
		clock:     clk,
	}
}

func internalErr(op string, err error) error {
	var api *apierr.APIError
	if errors.As(err, &api) {
		return api
	}
	log.Printf("[ERROR] reports.%s: %v", op, err)
	return apierr.Internal("database error")
}

// percent は小数第1位で丸め。total=0 なら 0
func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

// TrendWindows: now で終わる連続した30日窓を6つ、古い順に返す
func TrendWindows(now time.Time) []TrendPoint {
	span := trendBucketDays * 24 * time.Hour
	out := make([]TrendPoint, 0, trendBuckets)
	for i := 0; i < trendBuckets; i++ {
		start := now.Add(-time.Duration(trendBuckets-i) * span)
		end := start.Add(span)
		out = append(out, TrendPoint{Label: start.Format(trendLabelLayout), Start: start, End: end})
	}
	return out
}

// Dashboard は毎回ライブのテーブルから再計算する（キャッシュしない）
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock.Now().UTC()
	since := now.Add(-recentWindow)
	sinceDate := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)

	out := &Dashboard{GeneratedAt: now}
	err := db.ReadOnly(ctx, s.db, s.dialect, func(ctx context.Context, tx db.DBTX) error {
		var err error
		t := &out.Totals

		// --- 基本件数 ---
		if t.Assets, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM assets`); err != nil {
			return err
		}
		st, err := s.store.statusCounts(ctx, tx)
		if err != nil {
			return err
		}
		t.InUse = st[assets.StatusInUse]
		t.Available = st[assets.StatusAvailable]
		t.UnderMaintenance = st[assets.StatusUnderMaintenance]
		t.Disposed = st[assets.StatusDisposed]
		if t.Departments, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM departments`); err != nil {
			return err
		}
		if t.Categories, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM asset_categories`); err != nil {
			return err
		}
		if t.RecentMovements, err = s.movements.CountSince(ctx, tx, since); err != nil {
			return err
		}
		if t.MaintenanceRecords, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM maintenance_records`); err != nil {
			return err
		}
		if t.RecentMaintenance, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM maintenance_records WHERE maintenance_date >= ?`, sinceDate); err != nil {
			return err
		}

		out.Percentages = Percentages{
			InUse:            percent(t.InUse, t.Assets),
			Available:        percent(t.Available, t.Assets),
			UnderMaintenance: percent(t.UnderMaintenance, t.Assets),
		}

		// --- グラフ ---
		if out.ByStatus, err = s.store.byStatus(ctx, tx); err != nil {
			return err
		}
		if out.ByCondition, err = s.store.byCondition(ctx, tx); err != nil {
			return err
		}
		if out.ByDepartment, err = s.store.byDepartment(ctx, tx, departmentChartLimit); err != nil {
			return err
		}
		if out.ByCategory, err = s.store.byCategory(ctx, tx, categoryChartLimit); err != nil {
			return err
		}

		// --- 表 ---
		if out.TopDepartments, err = s.store.topDepartments(ctx, tx, topDepartmentsLimit); err != nil {
			return err
		}
		if out.RecentAssets, _, err = s.assets.List(ctx, tx, assets.Filter{}, paging.Page{Limit: recentAssetsLimit}); err != nil {
			return err
		}
		if out.NeedingAttention, _, err = s.assets.List(ctx, tx, assets.Filter{NeedsAttention: true}, paging.Page{Limit: needingAttentionLimit}); err != nil {
			return err
		}

		// --- 追加数の推移（30日固定の窓）---
		out.MonthlyTrend = TrendWindows(now)
		for i := range out.MonthlyTrend {
			p := &out.MonthlyTrend[i]
			if p.Count, err = s.store.addedBetween(ctx, tx, p.Start, p.End, i == len(out.MonthlyTrend)-1); err != nil {
				return err
			}
		}

		out.DepartmentStatus, err = s.store.departmentStatus(ctx, tx, departmentStatusLimit)
		return err
	})
	if err != nil {
		return nil, internalErr("Dashboard", err)
	}
	return out, nil
}

func (s *Service) Reports(ctx context.Context) (*Report, error) {
	out := &Report{}
	err := db.ReadOnly(ctx, s.db, s.dialect, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if out.TotalAssets, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM assets`); err != nil {
			return err
		}
		if out.MaintenanceCount, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM maintenance_records`); err != nil {
			return err
		}
		if out.MovementCount, err = s.store.count(ctx, tx, `SELECT COUNT(*) FROM asset_movements`); err != nil {
			return err
		}
		if out.ByCategory, err = s.store.byCategory(ctx, tx, 0); err != nil {
			return err
		}
		out.ByDepartment, err = s.store.byDepartment(ctx, tx, 0)
		return err
	})
	if err != nil {
		return nil, internalErr("Reports", err)
	}
	return out, nil
}

// exportData は台帳と状態別件数を同一スナップショットで読む
func (s *Service) exportData(ctx context.Context) ([]ExportRow, []Count, error) {
	var rows []ExportRow
	var byStatus []Count
	err := db.ReadOnly(ctx, s.db, s.dialect, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if rows, err = s.store.exportRows(ctx, tx); err != nil {
			return err
		}
		byStatus, err = s.store.byStatus(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, internalErr("Export", err)
	}
	return rows, byStatus, nil
}
