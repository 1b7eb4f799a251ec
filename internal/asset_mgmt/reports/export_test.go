package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/db/dbtest"
)

func seedExport(t *testing.T, svc *Service) {
	t.Helper()
	conn := svc.db
	dep := dbtest.InsertDepartment(t, conn, "検査室")
	dbtest.InsertAsset(t, conn, dbtest.Asset{Name: "顕微鏡", Serial: "EX-1", DepartmentID: &dep})
	dbtest.InsertAsset(t, conn, dbtest.Asset{Name: "Pump, infusion", Serial: "EX-2", Status: assets.StatusInUse})
}

func TestExport_CSV_UTF8(t *testing.T) {
	svc, _ := newService(t)
	seedExport(t, svc)

	data, err := svc.Export(context.Background(), ExportOptions{})
	require.NoError(t, err)

	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, exportHeader, recs[0])
	assert.Equal(t, "顕微鏡", recs[1][1])
	assert.Equal(t, "検査室", recs[1][4])
	assert.Equal(t, "Uncategorized", recs[1][3])
	assert.Equal(t, "Pump, infusion", recs[2][1])
	assert.Equal(t, "Unassigned", recs[2][4])
	assert.Equal(t, "2024-04-01", recs[2][8])
}

func TestExport_CSV_ShiftJIS(t *testing.T) {
	svc, _ := newService(t)
	seedExport(t, svc)

	data, err := svc.Export(context.Background(), ExportOptions{Format: "csv", Encoding: "shift_jis"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "顕微鏡", "raw bytes must not be utf-8")

	utf8, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
	require.NoError(t, err)
	assert.Contains(t, string(utf8), "顕微鏡")
	assert.Contains(t, string(utf8), "検査室")
}

func TestExport_XLSX(t *testing.T) {
	svc, _ := newService(t)
	seedExport(t, svc)

	data, err := svc.Export(context.Background(), ExportOptions{Format: "xlsx"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(assetsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "EX-1", rows[1][2])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Status", "Count"}, summary[0])
	assert.Equal(t, []string{"Total", "2"}, summary[len(summary)-1])
}

func TestExportOptions_Normalize(t *testing.T) {
	o, err := ExportOptions{Format: "XLSX", Encoding: "sjis"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, ExportOptions{Format: FormatXLSX, Encoding: EncodingShiftJIS}, o)

	_, err = ExportOptions{Format: "pdf", Encoding: "latin1"}.Normalize()
	var api *apierr.APIError
	require.ErrorAs(t, err, &api)
	assert.Contains(t, api.Fields, "format")
	assert.Contains(t, api.Fields, "encoding")
}
