package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Orders are append-only history: there is no deleted_at column and no DELETE
// path. Items are hard-deleted, but only while no order references them, so
// the orders.item_id reference always resolves. Clients and users are
// soft-deleted so order history keeps its names.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'sales' CHECK (role IN ('admin', 'sales')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    pack_size  INTEGER NOT NULL DEFAULT 1 CHECK (pack_size >= 1),
    stock_qty  INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS clients (
    id             INTEGER PRIMARY KEY,
    owner_id       INTEGER NOT NULL REFERENCES users(id),
    name           TEXT NOT NULL,
    business_no    TEXT,
    representative TEXT,
    care_no        TEXT,
    phone          TEXT,
    address        TEXT,
    note           TEXT,
    certificate    BLOB,
    cert_mime      TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_owner_name_active
    ON clients(owner_id, name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS orders (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    item_id    INTEGER NOT NULL REFERENCES items(id),
    client_id  INTEGER REFERENCES clients(id),
    quantity   INTEGER NOT NULL CHECK (quantity >= 1),
    status     TEXT NOT NULL DEFAULT 'requested'
        CHECK (status IN ('requested', 'approved', 'rejected', 'done')),
    receiver   TEXT NOT NULL,
    address    TEXT NOT NULL,
    mobile     TEXT NOT NULL,
    phone      TEXT,
    message    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    shipped_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_orders_status_created
    ON orders(status, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
