package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"cheop/internal/model"
	"cheop/internal/store"
)

// ItemsHandler handles catalog endpoints. Reads are open to all authenticated
// users, writes are admin-gated at the router.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name     string `json:"name"`
	PackSize int    `json:"pack_size"`
	StockQty int    `json:"stock_qty"`
}

type renameItemRequest struct {
	Name string `json:"name"`
}

type packSizeRequest struct {
	PackSize int `json:"pack_size"`
}

type addStockRequest struct {
	Amount int `json:"amount"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PackSize == 0 {
		req.PackSize = 1
	}

	item, err := store.CreateItem(r.Context(), h.DB, req.Name, req.PackSize, req.StockQty)
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item created", "user", claims.Username, "item", item.Name, "pack_size", item.PackSize)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Rename handles PUT /api/items/{id}.
func (h *ItemsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req renameItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.RenameItem(r.Context(), h.DB, id, req.Name); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to rename item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to rename item")
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// SetPackSize handles PUT /api/items/{id}/packsize.
func (h *ItemsHandler) SetPackSize(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req packSizeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetPackSize(r.Context(), h.DB, id, req.PackSize); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to set pack size", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to set pack size")
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// AddStock handles POST /api/items/{id}/stock.
func (h *ItemsHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req addStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.AddStock(r.Context(), h.DB, id, req.Amount); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to add stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add stock")
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	claims := GetClaims(r.Context())
	if item != nil {
		slog.Info("stock added", "user", claims.Username, "item", item.Name, "amount", req.Amount, "stock", item.StockQty)
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "user", claims.Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
