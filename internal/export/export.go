// Package export renders catalog and attendance data as downloadable files
// (XLSX, PDF, CSV) for the manager views of the terminal.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/erp"
)

// StockRow is one denormalized stock line ready for rendering.
type StockRow struct {
	Product   string
	Store     string
	Quantity  float64
	Threshold float64
	Price     float64
}

// StockRows flattens a snapshot into export rows, resolving product and
// store names. Unknown references keep the raw id so the row is not lost.
func StockRows(snapshot catalog.Snapshot) []StockRow {
	rows := make([]StockRow, 0, len(snapshot.Stocks))
	for _, line := range snapshot.Stocks {
		row := StockRow{
			Product:   line.ProductID,
			Store:     line.StoreID,
			Quantity:  line.Quantity.Float64(),
			Threshold: line.Threshold.Float64(),
		}
		if product, ok := snapshot.ProductByID(line.ProductID); ok {
			row.Product = product.Name
			row.Price = product.Price.Float64()
		}
		if store, ok := snapshot.StoreByID(line.StoreID); ok {
			row.Store = store.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildStockXLSX renders the stock rows as a workbook with a summary sheet
// and a detail sheet.
func BuildStockXLSX(rows []StockRow, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	detailSheet := "stock"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(detailSheet)

	var total float64
	low := 0
	for _, row := range rows {
		total += row.Quantity
		if row.Threshold > 0 && row.Quantity <= row.Threshold {
			low++
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Stock Export")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Lines")
	_ = f.SetCellValue(summarySheet, "B4", len(rows))
	_ = f.SetCellValue(summarySheet, "A5", "Total Quantity")
	_ = f.SetCellValue(summarySheet, "B5", total)
	_ = f.SetCellValue(summarySheet, "A6", "Low Lines")
	_ = f.SetCellValue(summarySheet, "B6", low)

	_ = f.SetCellValue(detailSheet, "A1", "Product")
	_ = f.SetCellValue(detailSheet, "B1", "Store")
	_ = f.SetCellValue(detailSheet, "C1", "Quantity")
	_ = f.SetCellValue(detailSheet, "D1", "Threshold")
	_ = f.SetCellValue(detailSheet, "E1", "Unit Price")
	for i, row := range rows {
		line := i + 2
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("A%d", line), row.Product)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("B%d", line), row.Store)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("C%d", line), row.Quantity)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("D%d", line), row.Threshold)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("E%d", line), row.Price)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStockCSV renders the stock rows as CSV with a header line.
func BuildStockCSV(rows []StockRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"product", "store", "quantity", "threshold", "unit_price"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.Product,
			row.Store,
			strconv.FormatFloat(row.Quantity, 'f', -1, 64),
			strconv.FormatFloat(row.Threshold, 'f', -1, 64),
			strconv.FormatFloat(row.Price, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAttendancePDF renders one user's attendance records as a PDF table.
func BuildAttendancePDF(userName string, records []erp.AttendanceRecord, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Attendance Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Employee: %s", userName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Arrival", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Departure", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Break", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Worked", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, record := range records {
		pdf.CellFormat(35, 6, record.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, clockLabel(record.Arrival), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, clockLabel(record.Departure), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, breakLabel(record), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, workedLabel(record), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clockLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

func breakLabel(record erp.AttendanceRecord) string {
	if record.BreakStart == nil {
		return "-"
	}
	if record.BreakEnd == nil {
		return record.BreakStart.Format("15:04") + " - ongoing"
	}
	return record.BreakStart.Format("15:04") + " - " + record.BreakEnd.Format("15:04")
}

func workedLabel(record erp.AttendanceRecord) string {
	if record.Arrival == nil || record.Departure == nil {
		return "-"
	}
	worked := record.Departure.Sub(*record.Arrival)
	if record.BreakStart != nil && record.BreakEnd != nil {
		worked -= record.BreakEnd.Sub(*record.BreakStart)
	}
	if worked < 0 {
		worked = 0
	}
	return fmt.Sprintf("%.2fh", worked.Hours())
}
