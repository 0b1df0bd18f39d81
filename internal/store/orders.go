package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cheop/internal/model"
)

const orderColumns = `o.id, o.user_id, o.item_id, o.client_id, o.quantity, o.status,
	o.receiver, o.address, o.mobile, o.phone, o.message, o.created_at, o.shipped_at,
	u.username AS user_name, i.name AS item_name, i.pack_size,
	COALESCE(c.name, '') AS client_name`

const orderJoins = `FROM orders o
	JOIN users u ON u.id = o.user_id
	JOIN items i ON i.id = o.item_id
	LEFT JOIN clients c ON c.id = o.client_id`

// OrderFilter narrows ListOrders. Zero values mean "no filter".
type OrderFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// GetOrder returns an order by ID, or nil if it doesn't exist or the actor is
// a sales user who didn't create it.
func GetOrder(ctx context.Context, db *sql.DB, actor model.Actor, id int64) (*model.Order, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` `+orderJoins+` WHERE o.id = ?`, id,
	)
	o, err := scanOrderRow(row)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	if !actor.IsAdmin() && o.UserID != actor.ID {
		return nil, nil
	}
	return o, nil
}

// ListOrders returns orders newest-first. Sales users see only their own;
// admins see everything, optionally narrowed by status and creation range.
func ListOrders(ctx context.Context, db *sql.DB, actor model.Actor, filter OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` ` + orderJoins + ` WHERE 1=1`
	var args []any

	if !actor.IsAdmin() {
		query += ` AND o.user_id = ?`
		args = append(args, actor.ID)
	}
	if filter.Status != "" {
		query += ` AND o.status = ?`
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		query += ` AND o.created_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND o.created_at <= ?`
		args = append(args, *filter.To)
	}

	query += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// StockReportRow summarizes one catalog item for the stock report: current
// base-unit balance plus the base units an approved-but-unshipped backlog
// would consume.
type StockReportRow struct {
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name"`
	PackSize      int    `json:"pack_size"`
	StockQty      int    `json:"stock_qty"`
	PendingUnits  int    `json:"pending_units"`
	PendingOrders int    `json:"pending_orders"`
}

// ListStockReport returns the stock report rows ordered by item name.
func ListStockReport(ctx context.Context, db *sql.DB) ([]StockReportRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.pack_size, i.stock_qty,
		        COALESCE(SUM(o.quantity), 0) * i.pack_size AS pending_units,
		        COUNT(o.id) AS pending_orders
		 FROM items i
		 LEFT JOIN orders o ON o.item_id = i.id AND o.status = 'approved'
		 GROUP BY i.id
		 ORDER BY i.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stock report: %w", err)
	}
	defer rows.Close()

	var report []StockReportRow
	for rows.Next() {
		var row StockReportRow
		if err := rows.Scan(&row.ItemID, &row.ItemName, &row.PackSize, &row.StockQty,
			&row.PendingUnits, &row.PendingOrders); err != nil {
			return nil, fmt.Errorf("scanning stock report: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderInto(s rowScanner, o *model.Order) error {
	var phone, message sql.NullString
	if err := s.Scan(&o.ID, &o.UserID, &o.ItemID, &o.ClientID, &o.Quantity, &o.Status,
		&o.Receiver, &o.Address, &o.Mobile, &phone, &message, &o.CreatedAt, &o.ShippedAt,
		&o.UserName, &o.ItemName, &o.PackSize, &o.ClientName); err != nil {
		return err
	}
	o.Phone = phone.String
	o.Message = message.String
	return nil
}

func scanOrder(rows *sql.Rows) (*model.Order, error) {
	o := &model.Order{}
	if err := scanOrderInto(rows, o); err != nil {
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return o, nil
}

func scanOrderRow(row *sql.Row) (*model.Order, error) {
	o := &model.Order{}
	err := scanOrderInto(row, o)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return o, nil
}
