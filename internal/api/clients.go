package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"cheop/internal/imaging"
	"cheop/internal/model"
	"cheop/internal/store"
)

// ClientsHandler handles client book endpoints. Sales users operate on their
// own clients only, admins see everything.
type ClientsHandler struct {
	DB *sql.DB
}

type clientRequest struct {
	Name           string `json:"name"`
	BusinessNo     string `json:"business_no"`
	Representative string `json:"representative"`
	CareNo         string `json:"care_no"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Note           string `json:"note"`
}

func (req clientRequest) params() store.ClientParams {
	return store.ClientParams{
		Name:           req.Name,
		BusinessNo:     req.BusinessNo,
		Representative: req.Representative,
		CareNo:         req.CareNo,
		Phone:          req.Phone,
		Address:        req.Address,
		Note:           req.Note,
	}
}

// List handles GET /api/clients.
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := store.ListClients(r.Context(), h.DB, actorFrom(r.Context()))
	if err != nil {
		slog.Error("failed to list clients", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	if clients == nil {
		clients = []model.Client{}
	}
	jsonResponse(w, http.StatusOK, clients)
}

// Create handles POST /api/clients.
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := store.CreateClient(r.Context(), h.DB, actorFrom(r.Context()), req.params())
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to create client", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("client created", "user", claims.Username, "client", client.Name)
	jsonResponse(w, http.StatusCreated, client)
}

// Get handles GET /api/clients/{id}.
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	client, err := store.GetClient(r.Context(), h.DB, actorFrom(r.Context()), id)
	if err != nil {
		slog.Error("failed to get client", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get client")
		return
	}
	if client == nil || client.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "client not found")
		return
	}

	jsonResponse(w, http.StatusOK, client)
}

// Update handles PUT /api/clients/{id}.
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := store.UpdateClient(r.Context(), h.DB, actorFrom(r.Context()), id, req.params())
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to update client", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update client")
		return
	}

	jsonResponse(w, http.StatusOK, client)
}

// Delete handles DELETE /api/clients/{id}.
func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := store.DeleteClient(r.Context(), h.DB, actorFrom(r.Context()), id); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to delete client", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("client deleted", "user", claims.Username, "client_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

// UploadCertificate handles PUT /api/clients/{id}/certificate.
func (h *ClientsHandler) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	// Limit to 10 MB, certificate scans from phone cameras run large.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("certificate")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "certificate file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetClientCertificate(r.Context(), h.DB, actorFrom(r.Context()), id, processed.Data, processed.MIME); err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to save certificate", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save certificate")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "certificate uploaded"})
}

// GetCertificate handles GET /api/clients/{id}/certificate.
func (h *ClientsHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	data, mime, err := store.GetClientCertificate(r.Context(), h.DB, actorFrom(r.Context()), id)
	if err != nil {
		if businessError(w, err) {
			return
		}
		slog.Error("failed to get certificate", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get certificate")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no certificate")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(data)
}
