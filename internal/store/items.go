package store

import (
	"context"
	"database/sql"
	"fmt"

	"cheop/internal/model"
)

// CreateItem creates a new catalog item. The name must be unique across the
// catalog; packSize is the base units deducted per ordered unit.
func CreateItem(ctx context.Context, db *sql.DB, name string, packSize, stockQty int) (*model.Item, error) {
	if name == "" {
		return nil, &model.ValidationError{Reason: "item name required"}
	}
	if packSize < 1 {
		return nil, &model.ValidationError{Reason: "pack size must be at least 1"}
	}
	if stockQty < 0 {
		return nil, &model.ValidationError{Reason: "stock quantity cannot be negative"}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, pack_size, stock_qty) VALUES (?, ?, ?)`,
		name, packSize, stockQty,
	)
	if isUniqueViolation(err) {
		return nil, &model.ConflictError{Reason: fmt.Sprintf("item %q already exists", name)}
	}
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if no such item exists.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, pack_size, stock_qty, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.PackSize, &item.StockQty, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns the full catalog ordered by name.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, pack_size, stock_qty, created_at, updated_at
		 FROM items ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.PackSize, &item.StockQty, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RenameItem changes an item's name, keeping catalog-wide uniqueness.
func RenameItem(ctx context.Context, db *sql.DB, id int64, name string) error {
	if name == "" {
		return &model.ValidationError{Reason: "item name required"}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if isUniqueViolation(err) {
		return &model.ConflictError{Reason: fmt.Sprintf("item %q already exists", name)}
	}
	if err != nil {
		return fmt.Errorf("renaming item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("renaming item: %w", err)
	}
	if n == 0 {
		return &model.NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

// SetPackSize changes the base units deducted per ordered unit. Already-done
// orders are unaffected: their deduction happened at their shipment's rate.
func SetPackSize(ctx context.Context, db *sql.DB, id int64, packSize int) error {
	if packSize < 1 {
		return &model.ValidationError{Reason: "pack size must be at least 1"}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET pack_size = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		packSize, id,
	)
	if err != nil {
		return fmt.Errorf("setting pack size: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting pack size: %w", err)
	}
	if n == 0 {
		return &model.NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

// AddStock tops up an item's stock. Additive only; the shipment batch is the
// sole path that lowers stock.
func AddStock(ctx context.Context, db *sql.DB, id int64, amount int) error {
	if amount < 0 {
		return &model.ValidationError{Reason: "stock amount cannot be negative"}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET stock_qty = stock_qty + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("adding stock: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("adding stock: %w", err)
	}
	if n == 0 {
		return &model.NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

// DeleteItem removes an item from the catalog. Fails while any order, of any
// status, references the item, since orders are permanent records.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE item_id = ?`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("checking item references: %w", err)
	}
	if refs > 0 {
		return &model.ConflictError{Reason: fmt.Sprintf("item referenced by %d existing orders", refs)}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return &model.NotFoundError{Kind: "item", ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}
