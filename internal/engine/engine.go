// Package engine implements the order lifecycle: order creation, the admin
// status override, and the atomic batch-ship operation that converts approved
// orders into completed shipments with the matching stock deduction.
//
// Every operation takes the acting identity explicitly. Stock is deliberately
// not checked at creation or approval time: several pending orders may compete
// for the same stock, and the admin decides at ship time which accumulated
// approved orders to commit to. Only ShipBatch verifies and deducts stock.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"time"

	"cheop/internal/model"
	"cheop/internal/store"
)

// mobileRe matches the required 10-11 digit receiver mobile number.
var mobileRe = regexp.MustCompile(`^[0-9]{10,11}$`)

// phoneRe matches the optional landline number: digits only when present.
var phoneRe = regexp.MustCompile(`^[0-9]*$`)

// CreateOrderRequest is the normalized shape of a shipment request. Handlers
// fold any legacy field aliases into this form before calling the engine.
type CreateOrderRequest struct {
	ItemID   int64
	ClientID *int64
	Quantity int
	Receiver string
	Address  string
	Mobile   string
	Phone    string
	Message  string
}

func (req CreateOrderRequest) validate() error {
	if req.Quantity < 1 {
		return &model.ValidationError{Reason: "quantity must be at least 1"}
	}
	if req.Receiver == "" {
		return &model.ValidationError{Reason: "receiver name required"}
	}
	if req.Address == "" {
		return &model.ValidationError{Reason: "delivery address required"}
	}
	if !mobileRe.MatchString(req.Mobile) {
		return &model.ValidationError{Reason: "mobile must be 10-11 digits"}
	}
	if !phoneRe.MatchString(req.Phone) {
		return &model.ValidationError{Reason: "phone must contain only digits"}
	}
	return nil
}

// CreateOrder validates a shipment request and persists it with status
// "requested". Stock is not consulted here.
func CreateOrder(ctx context.Context, db *sql.DB, actor model.Actor, req CreateOrderRequest) (*model.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, db, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{Kind: "item", ID: req.ItemID}
	}

	if req.ClientID != nil {
		ownerID, err := store.ClientOwner(ctx, db, *req.ClientID)
		if err != nil {
			return nil, err
		}
		if ownerID != actor.ID && !actor.IsAdmin() {
			return nil, &model.ValidationError{Reason: "client belongs to another sales user"}
		}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO orders (user_id, item_id, client_id, quantity, status, receiver, address, mobile, phone, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		actor.ID, req.ItemID, req.ClientID, req.Quantity, model.OrderRequested,
		req.Receiver, req.Address, req.Mobile, req.Phone, req.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting order id: %w", err)
	}

	return store.GetOrder(ctx, db, actor, id)
}

// OverrideStatus force-sets an order's status. This is the administrative
// escape hatch, not the guarded state machine: any of the four statuses can
// be written over any other, including moving a done order back to requested.
// Stock is never touched here, deduction happens only in ShipBatch.
func OverrideStatus(ctx context.Context, db *sql.DB, actor model.Actor, orderID int64, status string) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, &model.AuthorizationError{Reason: "only admins can change order status"}
	}
	if !model.ValidOrderStatus(status) {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("unknown order status %q", status)}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`,
		status, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("setting order status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("setting order status: %w", err)
	}
	if n == 0 {
		return nil, &model.NotFoundError{Kind: "order", ID: orderID}
	}

	return store.GetOrder(ctx, db, actor, orderID)
}

// ShipResult reports the outcome of a successful batch shipment.
type ShipResult struct {
	ShippedCount int         `json:"shipped_count"`
	OrderIDs     []int64     `json:"order_ids"`
	Deductions   []Deduction `json:"deductions"`
}

// Deduction records the base units taken from one item by the batch.
type Deduction struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Units    int    `json:"units"`
}

// ShipBatch selects all approved orders created within [from, to] (nil bounds
// mean unbounded), verifies that every referenced item holds enough stock for
// the batch's summed deduction, then deducts stock and marks the orders done.
//
// The whole read-check-deduct-update sequence runs in one transaction: if any
// single item is short, nothing is deducted and every order stays approved.
// The error names the short item and the shortfall so the admin can top up
// stock or narrow the date range and retry.
func ShipBatch(ctx context.Context, db *sql.DB, actor model.Actor, from, to *time.Time) (*ShipResult, error) {
	if !actor.IsAdmin() {
		return nil, &model.AuthorizationError{Reason: "only admins can ship order batches"}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning shipment transaction: %w", err)
	}
	defer tx.Rollback()

	// Select the batch: approved orders in range, with each item's pack size.
	query := `SELECT o.id, o.item_id, o.quantity, i.pack_size
	          FROM orders o
	          JOIN items i ON i.id = o.item_id
	          WHERE o.status = ?`
	args := []any{model.OrderApproved}
	if from != nil {
		query += ` AND o.created_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND o.created_at <= ?`
		args = append(args, *to)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting approved orders: %w", err)
	}

	var orderIDs []int64
	required := make(map[int64]int) // item id → base units to deduct
	for rows.Next() {
		var orderID, itemID int64
		var quantity, packSize int
		if err := rows.Scan(&orderID, &itemID, &quantity, &packSize); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning approved order: %w", err)
		}
		orderIDs = append(orderIDs, orderID)
		required[itemID] += quantity * packSize
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("selecting approved orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return &ShipResult{}, nil
	}

	// Check every item before deducting anything. Sorted for deterministic
	// failure reporting when several items are short.
	itemIDs := make([]int64, 0, len(required))
	for id := range required {
		itemIDs = append(itemIDs, id)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	deductions := make([]Deduction, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		var name string
		var held int
		if err := tx.QueryRowContext(ctx,
			`SELECT name, stock_qty FROM items WHERE id = ?`, itemID,
		).Scan(&name, &held); err != nil {
			return nil, fmt.Errorf("checking stock for item %d: %w", itemID, err)
		}
		if held < required[itemID] {
			return nil, &model.InsufficientStockError{
				ItemID:   itemID,
				ItemName: name,
				Held:     held,
				Required: required[itemID],
			}
		}
		deductions = append(deductions, Deduction{ItemID: itemID, ItemName: name, Units: required[itemID]})
	}

	// All checks passed: deduct stock and complete the orders.
	for _, d := range deductions {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET stock_qty = stock_qty - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			d.Units, d.ItemID,
		); err != nil {
			return nil, fmt.Errorf("deducting stock for item %d: %w", d.ItemID, err)
		}
	}

	for _, orderID := range orderIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, shipped_at = CURRENT_TIMESTAMP WHERE id = ?`,
			model.OrderDone, orderID,
		); err != nil {
			return nil, fmt.Errorf("completing order %d: %w", orderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing shipment batch: %w", err)
	}

	return &ShipResult{
		ShippedCount: len(orderIDs),
		OrderIDs:     orderIDs,
		Deductions:   deductions,
	}, nil
}
