package model

import "time"

// Order represents a shipment request submitted by a sales user. Orders are
// historical records and are never deleted; an item cannot be removed from the
// catalog while any order references it.
type Order struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	ItemID    int64      `json:"item_id"`
	ClientID  *int64     `json:"client_id,omitempty"`
	Quantity  int        `json:"quantity"`
	Status    string     `json:"status"`
	Receiver  string     `json:"receiver"`
	Address   string     `json:"address"`
	Mobile    string     `json:"mobile"`
	Phone     string     `json:"phone,omitempty"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ShippedAt *time.Time `json:"shipped_at,omitempty"`

	// Joined fields (not always populated).
	UserName   string `json:"user_name,omitempty"`
	ItemName   string `json:"item_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	PackSize   int    `json:"pack_size,omitempty"`
}

// Order statuses. The normal flow is requested → approved → done, with
// requested → rejected as the terminal refusal. Admin status overrides are
// not bound to this flow.
const (
	OrderRequested = "requested"
	OrderApproved  = "approved"
	OrderRejected  = "rejected"
	OrderDone      = "done"
)

// ValidOrderStatus reports whether status is one of the four order statuses.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderRequested, OrderApproved, OrderRejected, OrderDone:
		return true
	}
	return false
}
