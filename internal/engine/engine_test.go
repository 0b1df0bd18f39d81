package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"cheop/internal/db"
	"cheop/internal/model"
	"cheop/internal/store"
)

var (
	admin = model.Actor{ID: 1, Role: model.RoleAdmin}
	sales = model.Actor{ID: 2, Role: model.RoleSales}
)

// setup creates a test database with an admin and a sales user.
func setup(t *testing.T) *sql.DB {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, database, "boss", "hash", model.RoleAdmin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	if _, err := store.CreateUser(ctx, database, "seller", "hash", model.RoleSales); err != nil {
		t.Fatalf("creating sales user: %v", err)
	}
	return database
}

func validRequest(itemID int64) CreateOrderRequest {
	return CreateOrderRequest{
		ItemID:   itemID,
		Quantity: 1,
		Receiver: "Kim Minji",
		Address:  "12 Yakjeon St",
		Mobile:   "01012345678",
	}
}

func TestCreateOrderStartsRequested(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)

	order, err := CreateOrder(ctx, database, sales, validRequest(item.ID))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != model.OrderRequested {
		t.Errorf("expected status 'requested', got %q", order.Status)
	}
	if order.UserID != sales.ID {
		t.Errorf("expected order attributed to user %d, got %d", sales.ID, order.UserID)
	}
}

func TestCreateOrderIgnoresStock(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	// Zero stock: creation must still succeed, stock is only checked at ship time.
	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 0)

	if _, err := CreateOrder(ctx, database, sales, validRequest(item.ID)); err != nil {
		t.Fatalf("CreateOrder with zero stock: %v", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"zero quantity", func(r *CreateOrderRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *CreateOrderRequest) { r.Quantity = -3 }},
		{"empty receiver", func(r *CreateOrderRequest) { r.Receiver = "" }},
		{"empty address", func(r *CreateOrderRequest) { r.Address = "" }},
		{"short mobile", func(r *CreateOrderRequest) { r.Mobile = "010123456" }},
		{"long mobile", func(r *CreateOrderRequest) { r.Mobile = "010123456789" }},
		{"non-numeric mobile", func(r *CreateOrderRequest) { r.Mobile = "0101234567a" }},
		{"non-numeric phone", func(r *CreateOrderRequest) { r.Phone = "02-123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(item.ID)
			tt.mutate(&req)

			_, err := CreateOrder(ctx, database, sales, req)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateOrderMissingItem(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	_, err := CreateOrder(ctx, database, sales, validRequest(999))
	var nfe *model.NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestCreateOrderForeignClientRejected(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)

	// Client owned by another sales user.
	rival, err := store.CreateUser(ctx, database, "rival", "hash", model.RoleSales)
	if err != nil {
		t.Fatalf("creating rival: %v", err)
	}
	other := model.Actor{ID: rival.ID, Role: model.RoleSales}
	client, err := store.CreateClient(ctx, database, other, store.ClientParams{Name: "Kim Pharmacy"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	req := validRequest(item.ID)
	req.ClientID = &client.ID

	_, err = CreateOrder(ctx, database, sales, req)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for foreign client, got %v", err)
	}
}

func TestCreateOrderOwnClient(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)
	client, _ := store.CreateClient(ctx, database, sales, store.ClientParams{Name: "Kim Pharmacy"})

	req := validRequest(item.ID)
	req.ClientID = &client.ID

	order, err := CreateOrder(ctx, database, sales, req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ClientID == nil || *order.ClientID != client.ID {
		t.Errorf("expected client %d on order, got %v", client.ID, order.ClientID)
	}
}

func TestOverrideStatusRequiresAdmin(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)
	order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))

	_, err := OverrideStatus(ctx, database, sales, order.ID, model.OrderApproved)
	var ae *model.AuthorizationError
	if !errors.As(err, &ae) {
		t.Errorf("expected AuthorizationError, got %v", err)
	}
}

func TestOverrideStatusRejectsUnknownStatus(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)
	order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))

	_, err := OverrideStatus(ctx, database, admin, order.ID, "shipped")
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestOverrideStatusIsUnrestricted(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Ssanghwa-tang", 30, 100)
	order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))

	// The override is an escape hatch: done can go back to requested.
	for _, status := range []string{model.OrderDone, model.OrderRequested, model.OrderRejected} {
		got, err := OverrideStatus(ctx, database, admin, order.ID, status)
		if err != nil {
			t.Fatalf("OverrideStatus(%s): %v", status, err)
		}
		if got.Status != status {
			t.Errorf("expected status %q, got %q", status, got.Status)
		}
	}

	// Stock untouched throughout.
	after, _ := store.GetItem(ctx, database, item.ID)
	if after.StockQty != 100 {
		t.Errorf("expected stock 100, got %d", after.StockQty)
	}
}

func TestShipBatchRequiresAdmin(t *testing.T) {
	database := setup(t)

	_, err := ShipBatch(context.Background(), database, sales, nil, nil)
	var ae *model.AuthorizationError
	if !errors.As(err, &ae) {
		t.Errorf("expected AuthorizationError, got %v", err)
	}
}

func TestShipBatchDeductsAndCompletes(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	// packSize=30, stock=100, two approved orders of 2 and 1 units:
	// 2*30 + 1*30 = 90 <= 100.
	item, _ := store.CreateItem(ctx, database, "Widget", 30, 100)

	req := validRequest(item.ID)
	req.Quantity = 2
	o1, _ := CreateOrder(ctx, database, sales, req)
	req.Quantity = 1
	o2, _ := CreateOrder(ctx, database, sales, req)

	OverrideStatus(ctx, database, admin, o1.ID, model.OrderApproved)
	OverrideStatus(ctx, database, admin, o2.ID, model.OrderApproved)

	result, err := ShipBatch(ctx, database, admin, nil, nil)
	if err != nil {
		t.Fatalf("ShipBatch: %v", err)
	}
	if result.ShippedCount != 2 {
		t.Errorf("expected 2 shipped, got %d", result.ShippedCount)
	}

	after, _ := store.GetItem(ctx, database, item.ID)
	if after.StockQty != 10 {
		t.Errorf("expected stock 10, got %d", after.StockQty)
	}

	for _, id := range []int64{o1.ID, o2.ID} {
		order, _ := store.GetOrder(ctx, database, admin, id)
		if order.Status != model.OrderDone {
			t.Errorf("order %d: expected 'done', got %q", id, order.Status)
		}
		if order.ShippedAt == nil {
			t.Errorf("order %d: expected shipped_at to be set", id)
		}
	}
}

func TestShipBatchInsufficientStockAbortsAll(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	// Same orders as above but only 50 units on hand: 90 needed.
	item, _ := store.CreateItem(ctx, database, "Widget", 30, 50)

	req := validRequest(item.ID)
	req.Quantity = 2
	o1, _ := CreateOrder(ctx, database, sales, req)
	req.Quantity = 1
	o2, _ := CreateOrder(ctx, database, sales, req)

	OverrideStatus(ctx, database, admin, o1.ID, model.OrderApproved)
	OverrideStatus(ctx, database, admin, o2.ID, model.OrderApproved)

	_, err := ShipBatch(ctx, database, admin, nil, nil)
	var ise *model.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ItemName != "Widget" || ise.Held != 50 || ise.Required != 90 {
		t.Errorf("expected Widget held=50 required=90, got %+v", ise)
	}

	// No partial effect: stock unchanged, orders still approved.
	after, _ := store.GetItem(ctx, database, item.ID)
	if after.StockQty != 50 {
		t.Errorf("expected stock 50, got %d", after.StockQty)
	}
	for _, id := range []int64{o1.ID, o2.ID} {
		order, _ := store.GetOrder(ctx, database, admin, id)
		if order.Status != model.OrderApproved {
			t.Errorf("order %d: expected 'approved', got %q", id, order.Status)
		}
	}
}

func TestShipBatchOneShortItemBlocksWholeBatch(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	ok, _ := store.CreateItem(ctx, database, "Plenty", 1, 1000)
	short, _ := store.CreateItem(ctx, database, "Scarce", 10, 5)

	req := validRequest(ok.ID)
	o1, _ := CreateOrder(ctx, database, sales, req)
	req = validRequest(short.ID)
	o2, _ := CreateOrder(ctx, database, sales, req)

	OverrideStatus(ctx, database, admin, o1.ID, model.OrderApproved)
	OverrideStatus(ctx, database, admin, o2.ID, model.OrderApproved)

	_, err := ShipBatch(ctx, database, admin, nil, nil)
	var ise *model.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ItemName != "Scarce" {
		t.Errorf("expected 'Scarce' to be named, got %q", ise.ItemName)
	}

	// The well-stocked item must not have been deducted either.
	after, _ := store.GetItem(ctx, database, ok.ID)
	if after.StockQty != 1000 {
		t.Errorf("expected stock 1000, got %d", after.StockQty)
	}
	order, _ := store.GetOrder(ctx, database, admin, o1.ID)
	if order.Status != model.OrderApproved {
		t.Errorf("expected 'approved', got %q", order.Status)
	}
}

func TestShipBatchIdempotentAfterSuccess(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Widget", 30, 100)
	order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))
	OverrideStatus(ctx, database, admin, order.ID, model.OrderApproved)

	first, err := ShipBatch(ctx, database, admin, nil, nil)
	if err != nil {
		t.Fatalf("first ShipBatch: %v", err)
	}
	if first.ShippedCount != 1 {
		t.Fatalf("expected 1 shipped, got %d", first.ShippedCount)
	}

	// Done orders are no longer approved, so a re-run selects nothing and
	// deducts nothing.
	second, err := ShipBatch(ctx, database, admin, nil, nil)
	if err != nil {
		t.Fatalf("second ShipBatch: %v", err)
	}
	if second.ShippedCount != 0 {
		t.Errorf("expected 0 shipped on re-run, got %d", second.ShippedCount)
	}

	after, _ := store.GetItem(ctx, database, item.ID)
	if after.StockQty != 70 {
		t.Errorf("expected stock 70, got %d", after.StockQty)
	}
}

func TestShipBatchSkipsUnapproved(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Widget", 30, 100)
	requested, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))
	rejected, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))
	OverrideStatus(ctx, database, admin, rejected.ID, model.OrderRejected)

	result, err := ShipBatch(ctx, database, admin, nil, nil)
	if err != nil {
		t.Fatalf("ShipBatch: %v", err)
	}
	if result.ShippedCount != 0 {
		t.Errorf("expected 0 shipped, got %d", result.ShippedCount)
	}

	order, _ := store.GetOrder(ctx, database, admin, requested.ID)
	if order.Status != model.OrderRequested {
		t.Errorf("expected 'requested', got %q", order.Status)
	}
}

func TestShipBatchDateRange(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Widget", 1, 100)
	order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))
	OverrideStatus(ctx, database, admin, order.ID, model.OrderApproved)

	// A range entirely in the past selects nothing.
	past := time.Now().Add(-48 * time.Hour)
	pastEnd := time.Now().Add(-24 * time.Hour)
	result, err := ShipBatch(ctx, database, admin, &past, &pastEnd)
	if err != nil {
		t.Fatalf("ShipBatch: %v", err)
	}
	if result.ShippedCount != 0 {
		t.Errorf("expected 0 shipped for past range, got %d", result.ShippedCount)
	}

	// A range spanning now selects the order.
	future := time.Now().Add(24 * time.Hour)
	result, err = ShipBatch(ctx, database, admin, &past, &future)
	if err != nil {
		t.Fatalf("ShipBatch: %v", err)
	}
	if result.ShippedCount != 1 {
		t.Errorf("expected 1 shipped for spanning range, got %d", result.ShippedCount)
	}
}

func TestStockStaysNonNegative(t *testing.T) {
	database := setup(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, "Widget", 7, 10)

	// Alternate top-ups and shipments, stock must never dip below zero.
	for i := 0; i < 5; i++ {
		store.AddStock(ctx, database, item.ID, 10)

		order, _ := CreateOrder(ctx, database, sales, validRequest(item.ID))
		OverrideStatus(ctx, database, admin, order.ID, model.OrderApproved)
		ShipBatch(ctx, database, admin, nil, nil)

		after, _ := store.GetItem(ctx, database, item.ID)
		if after.StockQty < 0 {
			t.Fatalf("stock went negative: %d", after.StockQty)
		}
	}
}
