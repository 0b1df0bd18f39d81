package model

import "time"

// Client represents a customer record owned by a single sales user. Other
// sales users cannot see or modify it; admins see everything.
type Client struct {
	ID             int64      `json:"id"`
	OwnerID        int64      `json:"owner_id"`
	Name           string     `json:"name"`
	BusinessNo     string     `json:"business_no,omitempty"`
	Representative string     `json:"representative,omitempty"`
	CareNo         string     `json:"care_no,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	Note           string     `json:"note,omitempty"`
	CertMime       string     `json:"cert_mime,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}
