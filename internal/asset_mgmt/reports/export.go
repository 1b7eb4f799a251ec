package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"ASSETRACK-backend/internal/platform/apierr"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"

	assetsSheet  = "Assets"
	summarySheet = "Summary"
)

var exportHeader = []string{
	"ID", "Name", "Serial Number", "Category", "Department", "Status",
	"Condition", "Current Holder", "Purchase Date", "Date Added",
}

func (r ExportRow) record() []string {
	return []string{
		strconv.FormatInt(r.AssetID, 10), r.Name, r.SerialNumber, r.Category, r.Department, r.Status,
		r.Condition, r.CurrentHolder, r.PurchaseDate, r.DateAdded.UTC().Format("2006-01-02 15:04:05"),
	}
}

type ExportOptions struct {
	Format   string
	Encoding string
}

// Normalize は既定値を補い、未知の値は拒否する
func (o ExportOptions) Normalize() (ExportOptions, error) {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	o.Encoding = strings.ToLower(strings.TrimSpace(o.Encoding))
	if o.Format == "" {
		o.Format = FormatCSV
	}
	switch o.Encoding {
	case "", "utf8":
		o.Encoding = EncodingUTF8
	case "sjis", "cp932", "shift-jis":
		o.Encoding = EncodingShiftJIS
	}

	fe := apierr.FieldErrors{}
	if o.Format != FormatCSV && o.Format != FormatXLSX {
		fe.Add("format", "must be csv or xlsx")
	}
	if o.Encoding != EncodingUTF8 && o.Encoding != EncodingShiftJIS {
		fe.Add("encoding", "must be utf-8 or shift_jis")
	}
	return o, fe.Err()
}

// ContentType: 形式ごとの Content-Type
func (o ExportOptions) ContentType() string {
	if o.Format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if o.Encoding == EncodingShiftJIS {
		return "text/csv; charset=Shift_JIS"
	}
	return "text/csv; charset=utf-8"
}

// Export は資産台帳を指定形式で書き出す
func (s *Service) Export(ctx context.Context, opts ExportOptions) ([]byte, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	rows, byStatus, err := s.exportData(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch opts.Format {
	case FormatXLSX:
		err = writeXLSX(&buf, rows, byStatus)
	default:
		err = writeCSV(&buf, rows, opts.Encoding == EncodingShiftJIS)
	}
	if err != nil {
		return nil, internalErr("Export", err)
	}
	return buf.Bytes(), nil
}

// writeCSV: 既定はカンマ区切り・ダブルクォート自動。sjis 指定時は CP932 相当で出力
func writeCSV(w io.Writer, rows []ExportRow, sjis bool) error {
	if !sjis {
		return writeCSVRows(w, rows)
	}
	// Shift_JIS に無い文字は置換文字にする
	enc := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	tw := transform.NewWriter(w, enc)
	if err := writeCSVRows(tw, rows); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}

func writeCSVRows(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, rows []ExportRow, byStatus []Count) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", assetsSheet); err != nil {
		return err
	}
	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(assetsSheet, cell, h); err != nil {
			return err
		}
	}
	for i, r := range rows {
		row := i + 2
		vals := []any{r.AssetID, r.Name, r.SerialNumber, r.Category, r.Department, r.Status,
			r.Condition, r.CurrentHolder, r.PurchaseDate, r.DateAdded.UTC().Format("2006-01-02 15:04:05")}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(assetsSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]any{{"Status", "Count"}}
	var total int64
	for _, c := range byStatus {
		summary = append(summary, []any{c.Label, c.Count})
		total += c.Count
	}
	summary = append(summary, []any{"Total", total})
	for i, vals := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &vals); err != nil {
			return err
		}
	}

	return f.Write(w)
}
