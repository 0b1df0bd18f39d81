package api

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cheop/internal/engine"
	"cheop/internal/model"
	"cheop/internal/store"
)

// OrdersHandler handles order endpoints.
type OrdersHandler struct {
	DB *sql.DB
}

// createOrderRequest accepts both the current and the legacy field names for
// the receiver's mobile number; it is normalized into one shape before the
// engine sees it.
type createOrderRequest struct {
	ItemID         int64  `json:"item_id"`
	ClientID       *int64 `json:"client_id"`
	Quantity       int    `json:"quantity"`
	Receiver       string `json:"receiver"`
	Address        string `json:"address"`
	Mobile         string `json:"mobile"`
	ReceiverMobile string `json:"receiver_mobile"` // legacy alias for mobile
	Phone          string `json:"phone"`
	Message        string `json:"message"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type shipBatchRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// parseDate parses a date filter value, accepting date-only or RFC 3339 forms.
// A date-only upper bound is pushed to the end of that day, so a range through
// "2026-08-28" includes orders created on the 28th.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, &model.ValidationError{Reason: "dates must be YYYY-MM-DD or RFC 3339"}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mobile := req.Mobile
	if mobile == "" {
		mobile = req.ReceiverMobile
	}

	order, err := engine.CreateOrder(r.Context(), h.DB, actorFrom(r.Context()), engine.CreateOrderRequest{
		ItemID:   req.ItemID,
		ClientID: req.ClientID,
		Quantity: req.Quantity,
		Receiver: req.Receiver,
		Address:  req.Address,
		Mobile:   mobile,
		Phone:    req.Phone,
		Message:  req.Message,
	})
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to create order", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("order created", "user", claims.Username, "order", order.ID, "item", order.ItemName, "quantity", order.Quantity)
	jsonResponse(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !model.ValidOrderStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

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
		Status: status,
		From:   from,
		To:     to,
	})
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := store.GetOrder(r.Context(), h.DB, actorFrom(r.Context()), id)
	if err != nil {
		slog.Error("failed to get order", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if order == nil {
		jsonError(w, http.StatusNotFound, "order not found")
		return
	}

	jsonResponse(w, http.StatusOK, order)
}

// SetStatus handles PUT /api/orders/{id}/status, the admin override.
func (h *OrdersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := engine.OverrideStatus(r.Context(), h.DB, actorFrom(r.Context()), id, req.Status)
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to set order status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to set order status")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("order status overridden", "user", claims.Username, "order", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, order)
}

// Ship handles POST /api/orders/ship, the batch shipment.
func (h *OrdersHandler) Ship(w http.ResponseWriter, r *http.Request) {
	// Empty body means "ship everything approved".
	var req shipBatchRequest
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := parseDate(req.From, false)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(req.To, true)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := engine.ShipBatch(r.Context(), h.DB, actorFrom(r.Context()), from, to)
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to ship batch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to ship batch")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("batch shipped", "user", claims.Username, "orders", result.ShippedCount)
	jsonResponse(w, http.StatusOK, result)
}
