package transactions

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apierrors "github.com/exodologio/exodologio/internal/app/features/errors"
	"github.com/exodologio/exodologio/internal/app/system/ledger"
	"github.com/exodologio/exodologio/internal/app/system/timeouts"
	"github.com/exodologio/exodologio/internal/domain/models"
)

var exportHeader = []string{
	"Ημερομηνία", "Τύπος", "Ποσό", "Κατηγορία", "Τρόπος πληρωμής",
	"Τράπεζα / Πορτοφόλι", "Πηγή εσόδου", "Τρόπος είσπραξης", "Σημειώσεις",
}

// ExportCSV handles GET /api/transactions/export.csv. The same window
// parameters as List apply.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "transactions.export_csv")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	txs, err := h.Txs.List(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	window := applyWindow(txs, r)

	filename := exportFilename(r, "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM so Excel treats the Greek text as Unicode.
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	_ = cw.Write(exportHeader)
	for _, t := range window {
		_ = cw.Write(exportRow(t))
	}

	h.Log.Info("transactions CSV exported",
		zap.String("household_id", householdID.Hex()),
		zap.Int("rows", len(window)))
}

// ExportXLSX handles GET /api/transactions/export.xlsx: a workbook with the
// movement detail, the window summary, and the per-category breakdown.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "transactions.export_xlsx")
	defer cancel()

	_, householdID, err := h.requireHousehold(ctx, r)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}

	txs, err := h.Txs.List(ctx, householdID)
	if err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	window := applyWindow(txs, r)

	f := excelize.NewFile()
	defer f.Close()

	if err := h.writeMovementsSheet(f, window); err != nil {
		apierrors.WriteError(w, h.Log, err)
		return
	}
	h.writeSummarySheet(f, window)
	h.writeCategoriesSheet(f, window)

	filename := exportFilename(r, "xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	if err := f.Write(w); err != nil {
		h.Log.Error("write XLSX export", zap.Error(err))
		return
	}
	h.Log.Info("transactions XLSX exported",
		zap.String("household_id", householdID.Hex()),
		zap.Int("rows", len(window)))
}

func (h *Handler) writeMovementsSheet(f *excelize.File, txs []models.Transaction) error {
	const sheet = "Κινήσεις"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	// excelize seeds new files with "Sheet1"; drop it once ours exists.
	_ = f.DeleteSheet("Sheet1")

	for i, head := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, head)
	}
	for rowIdx, t := range txs {
		row := exportRow(t)
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if col == 2 {
				_ = f.SetCellValue(sheet, cell, t.Amount)
				continue
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "H", 22)
	_ = f.SetColWidth(sheet, "I", "I", 40)
	return nil
}

func (h *Handler) writeSummarySheet(f *excelize.File, txs []models.Transaction) {
	const sheet = "Σύνοψη"
	if _, err := f.NewSheet(sheet); err != nil {
		return
	}
	s := ledger.Summarize(txs)

	rows := [][]interface{}{
		{"Έσοδα", s.Income},
		{"Έξοδα", s.Expense},
		{"Υπόλοιπο", s.Net},
		{"Κινήσεις", s.Count},
	}
	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, labelCell, row[0])
		_ = f.SetCellValue(sheet, valueCell, row[1])
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 14)
}

func (h *Handler) writeCategoriesSheet(f *excelize.File, txs []models.Transaction) {
	const sheet = "Κατηγορίες"
	if _, err := f.NewSheet(sheet); err != nil {
		return
	}

	row := 1
	set := func(col, r int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		_ = f.SetCellValue(sheet, cell, v)
	}

	set(1, row, "Έξοδα ανά Κατηγορία")
	set(2, row, "Σύνολο")
	row++
	for _, total := range ledger.ExpenseByCategory(txs) {
		set(1, row, total.Name)
		set(2, row, total.Total)
		row++
	}

	// Blank separator row, then the income breakdown.
	row++
	set(1, row, "Έσοδα ανά Πηγή")
	set(2, row, "Σύνολο")
	row++
	for _, total := range ledger.IncomeBySource(txs) {
		set(1, row, total.Name)
		set(2, row, total.Total)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "B", "B", 14)
}

// exportRow renders a transaction as a spreadsheet row. The custom "other"
// text replaces its sentinel label so exports read naturally.
func exportRow(t models.Transaction) []string {
	typeLabel := "Έξοδο"
	if t.Type == models.TypeIncome {
		typeLabel = "Έσοδο"
	}

	category := t.ExpenseCategory
	if category == models.ExpenseCategoryOtherLabel && t.ExpenseCategoryOther != "" {
		category = t.ExpenseCategoryOther
	}
	source := t.IncomeSource
	if source == models.IncomeSourceOtherLabel && t.IncomeSourceOther != "" {
		source = t.IncomeSourceOther
	}

	return []string{
		t.Date,
		typeLabel,
		strconv.FormatFloat(t.Amount, 'f', 2, 64),
		category,
		t.ExpensePaymentMethod,
		t.ExpenseBankWallet,
		source,
		t.IncomeReceiptMethod,
		t.Notes,
	}
}

// exportFilename returns the sanitized download name, defaulting to a
// timestamped one.
func exportFilename(r *http.Request, ext string) string {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "exodologio_" + time.Now().UTC().Format("20060102_150405") + "." + ext
	}
	if !strings.HasSuffix(strings.ToLower(filename), "."+ext) {
		filename += "." + ext
	}
	return filename
}
