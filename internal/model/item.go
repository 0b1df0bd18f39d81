package model

import "time"

// Item represents a catalog entry for a decoction product. PackSize is the
// number of base stock units consumed per ordered unit (one ordered course of
// 30 packets deducts 30 base units), StockQty is the base-unit balance on hand.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	PackSize  int       `json:"pack_size"`
	StockQty  int       `json:"stock_qty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
