package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

// ContentTypeXLSX is the MIME type of the workbooks produced by XLSXExporter.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummarySheet names the sheet written when no symbol succeeded.
const SummarySheet = "Summary"

// columnPadding is added to the widest cell of a column.
const columnPadding = 2

// ReportFileName returns the download name of a workbook, e.g. Nifty50_Market_Report.xlsx.
func ReportFileName(name string) string {
	if name == "" {
		name = "OHLC"
	}

	return name + "_Market_Report.xlsx"
}

// XLSXExporter writes a batch report as an Excel workbook with one sheet per successful symbol.
type XLSXExporter struct {
	namer SheetNamer
	log   *logger.Logger
}

type XLSXOption func(*XLSXExporter)

// WithSheetNamer overrides how symbols become sheet names.
func WithSheetNamer(namer SheetNamer) XLSXOption {
	return func(e *XLSXExporter) {
		e.namer = namer
	}
}

func WithXLSXLogger(log *logger.Logger) XLSXOption {
	return func(e *XLSXExporter) {
		e.log = log
	}
}

// NewXLSXExporter creates an exporter that strips the ".NS" suffix from sheet names by default.
func NewXLSXExporter(opts ...XLSXOption) *XLSXExporter {
	e := &XLSXExporter{
		namer: TrimSuffixNamer(".NS"),
		log:   logger.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Export renders the report and returns the workbook bytes.
func (e *XLSXExporter) Export(report *batch.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, report); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile renders the report to path, creating parent directories as needed.
func (e *XLSXExporter) WriteFile(report *batch.Report, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to create directory for %s", path)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to create %s", path)
	}

	return e.writeAndClose(file, report, path)
}

// writeAndClose writes the workbook and closes wc, reporting a failed close when the write succeeded.
func (e *XLSXExporter) writeAndClose(wc io.WriteCloser, report *batch.Report, path string) (err error) {
	defer func() {
		if closeErr := wc.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(errors.ErrCodeExportFailed, closeErr, "failed to close %s", path)
		}
	}()

	return e.Write(wc, report)
}

// Write renders the report to w.
//
// Sheets follow report order. Every sheet starts with Header and each column is as wide
// as its longest cell plus two characters. When nothing succeeded the workbook holds a
// single Summary sheet listing the failures, since a workbook needs at least one sheet.
func (e *XLSXExporter) Write(w io.Writer, report *batch.Report) error {
	if report == nil {
		return errors.New(errors.ErrCodeExportFailed, "report is required")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	defaultSheet := f.GetSheetName(0)
	names := newSheetNames(e.namer)
	written := 0

	for _, success := range report.Successes() {
		name := names.next(success.Series.Symbol)

		if err := e.addSheet(f, defaultSheet, name, written == 0); err != nil {
			return err
		}

		rows := make([][]any, 0, success.Series.Len())
		for _, row := range Table(success.Series) {
			rows = append(rows, row.Cells())
		}

		if err := writeSheet(f, name, Header, rows); err != nil {
			return err
		}

		written++
	}

	if written == 0 {
		if err := e.writeSummary(f, defaultSheet, report); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to write workbook", err)
	}

	e.log.Debug("exported workbook", zap.Int("sheets", max(written, 1)), zap.Int("failures", len(report.Failures())))

	return nil
}

func (e *XLSXExporter) addSheet(f *excelize.File, defaultSheet, name string, first bool) error {
	if first {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidSheetName, err, "failed to name sheet %q", name)
		}

		return nil
	}

	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidSheetName, err, "failed to add sheet %q", name)
	}

	return nil
}

func (e *XLSXExporter) writeSummary(f *excelize.File, defaultSheet string, report *batch.Report) error {
	if err := f.SetSheetName(defaultSheet, SummarySheet); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidSheetName, err, "failed to name sheet %q", SummarySheet)
	}

	rows := make([][]any, 0, report.Len())
	for _, failure := range report.Failures() {
		rows = append(rows, []any{failure.Symbol, "failed", failure.Reason})
	}

	if len(rows) == 0 {
		rows = append(rows, []any{"", "no symbols requested", ""})
	}

	return writeSheet(f, SummarySheet, []string{"Symbol", "Status", "Reason"}, rows)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	widths := make([]int, len(header))

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}

	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write header of %s", sheet)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "invalid cell reference", err)
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write row %d of %s", i+2, sheet)
		}

		for col, value := range row {
			if col < len(widths) {
				widths[col] = max(widths[col], cellWidth(value))
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "invalid column", err)
		}

		if err := f.SetColWidth(sheet, col, col, float64(width+columnPadding)); err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to size column %s of %s", col, sheet)
		}
	}

	return nil
}

func cellWidth(value any) int {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v)
	case float64:
		return len(FormatNumber(v))
	default:
		return 0
	}
}
