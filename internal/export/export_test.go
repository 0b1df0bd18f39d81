package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"cheop/internal/model"
	"cheop/internal/store"
)

func sampleOrders() []model.Order {
	shipped := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []model.Order{
		{
			ID:       7,
			Receiver: "Kim Minji",
			Address:  "12 Yakjeon St",
			Mobile:   "01012345678",
			ItemName: "Ssanghwa-tang",
			Quantity: 2,
			PackSize: 30,
			UserName: "seller",
			ShippedAt: &shipped,
		},
	}
}

func TestManifestWorkbook(t *testing.T) {
	f, err := ManifestWorkbook(sampleOrders())
	if err != nil {
		t.Fatalf("ManifestWorkbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Manifest" {
		t.Fatalf("expected single 'Manifest' sheet, got %v", sheets)
	}

	header, err := f.GetCellValue("Manifest", "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if header != "Order ID" {
		t.Errorf("expected 'Order ID' header, got %q", header)
	}

	// Packs column holds quantity times pack size.
	packs, _ := f.GetCellValue("Manifest", "H2")
	if packs != "60" {
		t.Errorf("expected 60 packs, got %q", packs)
	}

	shipped, _ := f.GetCellValue("Manifest", "K2")
	if shipped != "2026-03-14 09:30" {
		t.Errorf("unexpected shipped timestamp %q", shipped)
	}
}

func TestWriteManifestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteManifestCSV(&buf, sampleOrders()); err != nil {
		t.Fatalf("WriteManifestCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	if records[1][1] != "Kim Minji" {
		t.Errorf("expected receiver in second column, got %q", records[1][1])
	}
	if records[1][7] != "60" {
		t.Errorf("expected 60 packs, got %q", records[1][7])
	}
}

func TestStockWorkbook(t *testing.T) {
	report := []store.StockReportRow{
		{ItemID: 1, ItemName: "Ssanghwa-tang", PackSize: 30, StockQty: 100, PendingUnits: 60, PendingOrders: 2},
	}

	f, err := StockWorkbook(report)
	if err != nil {
		t.Fatalf("StockWorkbook: %v", err)
	}
	defer f.Close()

	name, _ := f.GetCellValue("Stock", "A2")
	if name != "Ssanghwa-tang" {
		t.Errorf("expected item name, got %q", name)
	}
	pending, _ := f.GetCellValue("Stock", "E2")
	if pending != "60" {
		t.Errorf("expected 60 pending units, got %q", pending)
	}
}

func TestWriteStockCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStockCSV(&buf, nil); err != nil {
		t.Fatalf("WriteStockCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected only the header row, got %d records", len(records))
	}
}
