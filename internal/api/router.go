package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	clientsHandler := &ClientsHandler{DB: db}
	ordersHandler := &OrdersHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireAdmin(h))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return authMW(h)
	}

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated session management.
	mux.Handle("PUT /api/auth/password", user(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", user(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Catalog: read (all roles), write (admin).
	mux.Handle("GET /api/items", user(itemsHandler.List))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", user(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Rename))
	mux.Handle("PUT /api/items/{id}/packsize", admin(itemsHandler.SetPackSize))
	mux.Handle("POST /api/items/{id}/stock", admin(itemsHandler.AddStock))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))

	// Clients: ownership enforced in the store.
	mux.Handle("GET /api/clients", user(clientsHandler.List))
	mux.Handle("POST /api/clients", user(clientsHandler.Create))
	mux.Handle("GET /api/clients/{id}", user(clientsHandler.Get))
	mux.Handle("PUT /api/clients/{id}", user(clientsHandler.Update))
	mux.Handle("DELETE /api/clients/{id}", user(clientsHandler.Delete))
	mux.Handle("PUT /api/clients/{id}/certificate", user(clientsHandler.UploadCertificate))
	mux.Handle("GET /api/clients/{id}/certificate", user(clientsHandler.GetCertificate))

	// Orders: creation and reads for everyone (scoped per role in the store),
	// status override and shipment for admins.
	mux.Handle("POST /api/orders", user(ordersHandler.Create))
	mux.Handle("GET /api/orders", user(ordersHandler.List))
	mux.Handle("POST /api/orders/ship", admin(ordersHandler.Ship))
	mux.Handle("GET /api/orders/{id}", user(ordersHandler.Get))
	mux.Handle("PUT /api/orders/{id}/status", admin(ordersHandler.SetStatus))

	// Reports (admin only).
	mux.Handle("GET /api/reports/manifest", admin(reportsHandler.Manifest))
	mux.Handle("GET /api/reports/stock", admin(reportsHandler.Stock))

	return mux
}
