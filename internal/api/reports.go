package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"cheop/internal/export"
	"cheop/internal/model"
	"cheop/internal/store"
)

// ReportsHandler serves spreadsheet exports (admin only). Report generation
// reads a consistent snapshot of orders and items; it never mutates state.
type ReportsHandler struct {
	DB *sql.DB
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Manifest handles GET /api/reports/manifest?format=xlsx|csv&from=&to=.
// The manifest covers shipped (done) orders in the given creation range.
func (h *ReportsHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := store.ListOrders(r.Context(), h.DB, actorFrom(r.Context()), store.OrderFilter{
		Status: model.OrderDone,
		From:   from,
		To:     to,
	})
	if err != nil {
		slog.Error("failed to load manifest orders", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build manifest")
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "xlsx"
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=manifest.csv")
		if err := export.WriteManifestCSV(w, orders); err != nil {
			slog.Error("failed to write manifest csv", "error", err)
		}
	case "xlsx":
		f, err := export.ManifestWorkbook(orders)
		if err != nil {
			slog.Error("failed to build manifest workbook", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to build manifest")
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename=manifest.xlsx")
		if err := f.Write(w); err != nil {
			slog.Error("failed to write manifest workbook", "error", err)
		}
	default:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// Stock handles GET /api/reports/stock?format=xlsx|csv.
func (h *ReportsHandler) Stock(w http.ResponseWriter, r *http.Request) {
	report, err := store.ListStockReport(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to load stock report", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build stock report")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=stock.csv")
		if err := export.WriteStockCSV(w, report); err != nil {
			slog.Error("failed to write stock csv", "error", err)
		}
	case "xlsx":
		f, err := export.StockWorkbook(report)
		if err != nil {
			slog.Error("failed to build stock workbook", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to build stock report")
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename=stock.xlsx")
		if err := f.Write(w); err != nil {
			slog.Error("failed to write stock workbook", "error", err)
		}
	default:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}
