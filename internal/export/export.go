// Package export renders shipment manifests and stock reports as spreadsheet
// byte streams. It only consumes read-only snapshots handed to it, the order
// lifecycle never depends on this package.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"cheop/internal/model"
	"cheop/internal/store"
)

var manifestHeaders = []string{
	"Order ID", "Receiver", "Address", "Mobile", "Phone",
	"Item", "Quantity", "Packs", "Sales User", "Client", "Shipped At",
}

var stockHeaders = []string{
	"Item", "Pack Size", "Stock On Hand", "Pending Orders", "Pending Units",
}

// manifestRows flattens orders into spreadsheet rows. Packs is the base-unit
// count the order consumed (quantity × pack size).
func manifestRows(orders []model.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		shipped := ""
		if o.ShippedAt != nil {
			shipped = o.ShippedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.Receiver,
			o.Address,
			o.Mobile,
			o.Phone,
			o.ItemName,
			strconv.Itoa(o.Quantity),
			strconv.Itoa(o.Quantity * o.PackSize),
			o.UserName,
			o.ClientName,
			shipped,
		})
	}
	return rows
}

func stockRows(report []store.StockReportRow) [][]string {
	rows := make([][]string, 0, len(report))
	for _, r := range report {
		rows = append(rows, []string{
			r.ItemName,
			strconv.Itoa(r.PackSize),
			strconv.Itoa(r.StockQty),
			strconv.Itoa(r.PendingOrders),
			strconv.Itoa(r.PendingUnits),
		})
	}
	return rows
}

// ManifestWorkbook builds an XLSX shipment manifest from the given orders.
func ManifestWorkbook(orders []model.Order) (*excelize.File, error) {
	return workbook("Manifest", manifestHeaders, manifestRows(orders))
}

// WriteManifestCSV writes the shipment manifest in CSV form.
func WriteManifestCSV(w io.Writer, orders []model.Order) error {
	return writeCSV(w, manifestHeaders, manifestRows(orders))
}

// StockWorkbook builds an XLSX stock report.
func StockWorkbook(report []store.StockReportRow) (*excelize.File, error) {
	return workbook("Stock", stockHeaders, stockRows(report))
}

// WriteStockCSV writes the stock report in CSV form.
func WriteStockCSV(w io.Writer, report []store.StockReportRow) error {
	return writeCSV(w, stockHeaders, stockRows(report))
}

// workbook builds a single-sheet XLSX file with a bold, shaded header row.
func workbook(sheetName string, headers []string, data [][]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("placing header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("placing data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("sizing column: %w", err)
		}
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeCSV(w io.Writer, headers []string, data [][]string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("writing csv headers: %w", err)
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
