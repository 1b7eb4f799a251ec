package movements

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db/dbtest"
	"ASSETRACK-backend/internal/platform/ids"
	"ASSETRACK-backend/internal/platform/paging"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *sql.DB, *clock.Fixed) {
	t.Helper()
	conn, dialect := dbtest.Open(t)
	clk := &clock.Fixed{T: t0}
	return NewService(conn, dialect, clk, ids.NewULIDGen()), conn, clk
}

func assetDepartment(t *testing.T, conn *sql.DB, assetID int64) *int64 {
	t.Helper()
	var dep sql.NullInt64
	require.NoError(t, conn.QueryRow(`SELECT department_id FROM assets WHERE asset_id = ?`, assetID).Scan(&dep))
	if !dep.Valid {
		return nil
	}
	return &dep.Int64
}

func TestRecordMovement_RelocatesAsset(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	dbtest.InsertAccount(t, conn, "alice")
	a := dbtest.InsertDepartment(t, conn, "A")
	b := dbtest.InsertDepartment(t, conn, "B")
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-1", DepartmentID: &a})

	m, err := svc.RecordMovementAndRelocate(ctx, "alice", RecordMovementRequest{
		AssetID: asset, FromDepartmentID: &a, ToDepartmentID: &b, Remarks: "moved to B",
	})
	require.NoError(t, err)
	assert.Len(t, m.MovementULID, 26)
	assert.Equal(t, t0, m.DateMoved.UTC())
	require.NotNil(t, m.MovedBy)
	assert.Equal(t, "alice", *m.MovedBy)
	require.NotNil(t, m.ToDepartment)
	assert.Equal(t, "B", *m.ToDepartment)

	require.NotNil(t, assetDepartment(t, conn, asset))
	assert.Equal(t, b, *assetDepartment(t, conn, asset))
}

func TestRecordMovement_NullDestinationKeepsDepartment(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	a := dbtest.InsertDepartment(t, conn, "A")
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-2", DepartmentID: &a})

	m, err := svc.RecordMovementAndRelocate(ctx, "ghost", RecordMovementRequest{AssetID: asset, FromDepartmentID: &a})
	require.NoError(t, err)
	assert.Nil(t, m.ToDepartmentID)
	assert.Nil(t, m.MovedBy, "unknown account is not recorded")
	assert.Equal(t, a, *assetDepartment(t, conn, asset))
}

func TestRecordMovement_DanglingReferences(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-3"})

	_, err := svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: 999})
	require.Error(t, err)
	var api *apierr.APIError
	require.ErrorAs(t, err, &api)
	assert.Contains(t, api.Fields, "asset_id")

	missing := int64(4242)
	_, err = svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: asset, ToDepartmentID: &missing})
	require.ErrorAs(t, err, &api)
	assert.Contains(t, api.Fields, "to_department_id")

	items, total, err := svc.List(ctx, Filter{}, paging.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.Nil(t, assetDepartment(t, conn, asset))
}

func TestUpdateAndDelete_LeaveAssetDepartment(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	a := dbtest.InsertDepartment(t, conn, "A")
	b := dbtest.InsertDepartment(t, conn, "B")
	c := dbtest.InsertDepartment(t, conn, "C")
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-4", DepartmentID: &a})

	m, err := svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: asset, FromDepartmentID: &a, ToDepartmentID: &b})
	require.NoError(t, err)

	got, err := svc.Update(ctx, m.MovementID, UpdateMovementRequest{AssetID: asset, FromDepartmentID: &a, ToDepartmentID: &c, Remarks: "typo"})
	require.NoError(t, err)
	assert.Equal(t, c, *got.ToDepartmentID)
	assert.Equal(t, b, *assetDepartment(t, conn, asset))

	require.NoError(t, svc.Delete(ctx, m.MovementID))
	assert.Equal(t, b, *assetDepartment(t, conn, asset))

	_, err = svc.Get(ctx, m.MovementID)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
	assert.True(t, apierr.Is(svc.Delete(ctx, m.MovementID), apierr.CodeNotFound))
}

func TestList_NewestFirstAndFilter(t *testing.T) {
	svc, conn, clk := newService(t)
	ctx := context.Background()
	x := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-5"})
	y := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-6"})

	for _, id := range []int64{x, y, x} {
		_, err := svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: id})
		require.NoError(t, err)
		clk.Advance(time.Hour)
	}

	items, total, err := svc.List(ctx, Filter{AssetID: &x}, paging.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.True(t, items[0].DateMoved.After(items[1].DateMoved))

	_, total, err = svc.List(ctx, Filter{}, paging.Page{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestDeleteAsset_CascadesMovements(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-7"})
	m, err := svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: asset})
	require.NoError(t, err)

	_, err = conn.Exec(`DELETE FROM assets WHERE asset_id = ?`, asset)
	require.NoError(t, err)

	_, err = svc.Get(ctx, m.MovementID)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestMovement_ReferencesNulledOnParentDelete(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	dbtest.InsertAccount(t, conn, "mover")
	a := dbtest.InsertDepartment(t, conn, "A")
	b := dbtest.InsertDepartment(t, conn, "B")
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-SN", DepartmentID: &a})

	m, err := svc.RecordMovementAndRelocate(ctx, "mover", RecordMovementRequest{
		AssetID: asset, FromDepartmentID: &a, ToDepartmentID: &b,
	})
	require.NoError(t, err)

	_, err = conn.Exec(`DELETE FROM departments WHERE department_id IN (?, ?)`, a, b)
	require.NoError(t, err)
	_, err = conn.Exec(`DELETE FROM auth_accounts WHERE id = 'mover'`)
	require.NoError(t, err)

	got, err := svc.Get(ctx, m.MovementID)
	require.NoError(t, err)
	assert.Nil(t, got.FromDepartmentID)
	assert.Nil(t, got.ToDepartmentID)
	assert.Nil(t, got.MovedBy)
	assert.Nil(t, assetDepartment(t, conn, asset))
}

func TestCountSince(t *testing.T) {
	svc, conn, clk := newService(t)
	ctx := context.Background()
	asset := dbtest.InsertAsset(t, conn, dbtest.Asset{Serial: "MV-CNT"})

	for i := 0; i < 3; i++ {
		_, err := svc.RecordMovementAndRelocate(ctx, "", RecordMovementRequest{AssetID: asset})
		require.NoError(t, err)
		clk.Advance(24 * time.Hour)
	}

	n, err := svc.store.CountSince(ctx, conn, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.store.CountSince(ctx, conn, clk.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
