package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"cheop/internal/model"
)

// careNoRe matches a pharmacy care number: exactly 8 digits.
var careNoRe = regexp.MustCompile(`^[0-9]{8}$`)

// ClientParams holds the mutable client fields.
type ClientParams struct {
	Name           string
	BusinessNo     string
	Representative string
	CareNo         string
	Phone          string
	Address        string
	Note           string
}

func (p ClientParams) validate() error {
	if p.Name == "" {
		return &model.ValidationError{Reason: "client name required"}
	}
	if p.CareNo != "" && !careNoRe.MatchString(p.CareNo) {
		return &model.ValidationError{Reason: "care number must be exactly 8 digits"}
	}
	return nil
}

// canAccessClient reports whether the actor may read or modify a client row.
func canAccessClient(actor model.Actor, ownerID int64) bool {
	return actor.IsAdmin() || actor.ID == ownerID
}

// ClientOwner returns the owning user of an active client, for referential
// checks from outside the client book. Missing and soft-deleted clients both
// come back as NotFoundError.
func ClientOwner(ctx context.Context, db *sql.DB, id int64) (int64, error) {
	c, err := getClient(ctx, db, id)
	if err != nil {
		return 0, err
	}
	if c == nil || c.DeletedAt != nil {
		return 0, &model.NotFoundError{Kind: "client", ID: id}
	}
	return c.OwnerID, nil
}

// CreateClient creates a client owned by the actor. Client names only need to
// be unique within one owner's book; two sales users may both have a "Kim
// Pharmacy".
func CreateClient(ctx context.Context, db *sql.DB, actor model.Actor, p ClientParams) (*model.Client, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO clients (owner_id, name, business_no, representative, care_no, phone, address, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		actor.ID, p.Name, p.BusinessNo, p.Representative, p.CareNo, p.Phone, p.Address, p.Note,
	)
	if isUniqueViolation(err) {
		return nil, &model.ConflictError{Reason: fmt.Sprintf("client %q already exists", p.Name)}
	}
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting client id: %w", err)
	}

	return GetClient(ctx, db, actor, id)
}

// GetClient returns a client by ID. Sales users only see their own clients;
// a client owned by someone else is reported as not found rather than
// forbidden, so client IDs don't leak across sales accounts.
func GetClient(ctx context.Context, db *sql.DB, actor model.Actor, id int64) (*model.Client, error) {
	c, err := getClient(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !canAccessClient(actor, c.OwnerID) {
		return nil, nil
	}
	return c, nil
}

func getClient(ctx context.Context, db *sql.DB, id int64) (*model.Client, error) {
	c := &model.Client{}
	var businessNo, representative, careNo, phone, address, note, certMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.owner_id, c.name, c.business_no, c.representative, c.care_no,
		        c.phone, c.address, c.note, c.cert_mime, c.created_at, c.deleted_at,
		        u.username AS owner_name
		 FROM clients c
		 JOIN users u ON u.id = c.owner_id
		 WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &businessNo, &representative, &careNo,
		&phone, &address, &note, &certMime, &c.CreatedAt, &c.DeletedAt, &c.OwnerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}
	c.BusinessNo = businessNo.String
	c.Representative = representative.String
	c.CareNo = careNo.String
	c.Phone = phone.String
	c.Address = address.String
	c.Note = note.String
	c.CertMime = certMime.String
	return c, nil
}

// ListClients returns non-deleted clients: all of them for admins, only the
// actor's own for sales users.
func ListClients(ctx context.Context, db *sql.DB, actor model.Actor) ([]model.Client, error) {
	query := `SELECT c.id, c.owner_id, c.name, c.business_no, c.representative, c.care_no,
	                 c.phone, c.address, c.note, c.cert_mime, c.created_at, c.deleted_at,
	                 u.username AS owner_name
	          FROM clients c
	          JOIN users u ON u.id = c.owner_id
	          WHERE c.deleted_at IS NULL`
	var args []any

	if !actor.IsAdmin() {
		query += ` AND c.owner_id = ?`
		args = append(args, actor.ID)
	}
	query += ` ORDER BY c.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		var businessNo, representative, careNo, phone, address, note, certMime sql.NullString
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &businessNo, &representative, &careNo,
			&phone, &address, &note, &certMime, &c.CreatedAt, &c.DeletedAt, &c.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		c.BusinessNo = businessNo.String
		c.Representative = representative.String
		c.CareNo = careNo.String
		c.Phone = phone.String
		c.Address = address.String
		c.Note = note.String
		c.CertMime = certMime.String
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpdateClient updates a client's fields, enforcing ownership.
func UpdateClient(ctx context.Context, db *sql.DB, actor model.Actor, id int64, p ClientParams) (*model.Client, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	existing, err := getClient(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.DeletedAt != nil {
		return nil, &model.NotFoundError{Kind: "client", ID: id}
	}
	if !canAccessClient(actor, existing.OwnerID) {
		return nil, &model.AuthorizationError{Reason: "client belongs to another sales user"}
	}

	_, err = db.ExecContext(ctx,
		`UPDATE clients SET name = ?, business_no = ?, representative = ?, care_no = ?,
		        phone = ?, address = ?, note = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		p.Name, p.BusinessNo, p.Representative, p.CareNo, p.Phone, p.Address, p.Note, id,
	)
	if isUniqueViolation(err) {
		return nil, &model.ConflictError{Reason: fmt.Sprintf("client %q already exists", p.Name)}
	}
	if err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	return GetClient(ctx, db, actor, id)
}

// DeleteClient soft-deletes a client. Orders keep their client reference for
// history.
func DeleteClient(ctx context.Context, db *sql.DB, actor model.Actor, id int64) error {
	existing, err := getClient(ctx, db, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.DeletedAt != nil {
		return &model.NotFoundError{Kind: "client", ID: id}
	}
	if !canAccessClient(actor, existing.OwnerID) {
		return &model.AuthorizationError{Reason: "client belongs to another sales user"}
	}

	_, err = db.ExecContext(ctx,
		`UPDATE clients SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return nil
}

// SetClientCertificate stores a client's business certificate image.
func SetClientCertificate(ctx context.Context, db *sql.DB, actor model.Actor, id int64, data []byte, mime string) error {
	existing, err := getClient(ctx, db, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.DeletedAt != nil {
		return &model.NotFoundError{Kind: "client", ID: id}
	}
	if !canAccessClient(actor, existing.OwnerID) {
		return &model.AuthorizationError{Reason: "client belongs to another sales user"}
	}

	_, err = db.ExecContext(ctx,
		`UPDATE clients SET certificate = ?, cert_mime = ? WHERE id = ?`,
		data, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting client certificate: %w", err)
	}
	return nil
}

// GetClientCertificate returns a client's certificate image and MIME type,
// or nil data if none was uploaded.
func GetClientCertificate(ctx context.Context, db *sql.DB, actor model.Actor, id int64) ([]byte, string, error) {
	existing, err := getClient(ctx, db, id)
	if err != nil {
		return nil, "", err
	}
	if existing == nil || !canAccessClient(actor, existing.OwnerID) {
		return nil, "", &model.NotFoundError{Kind: "client", ID: id}
	}

	var data []byte
	var mime sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT certificate, cert_mime FROM clients WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err != nil {
		return nil, "", fmt.Errorf("getting client certificate: %w", err)
	}
	return data, mime.String, nil
}
