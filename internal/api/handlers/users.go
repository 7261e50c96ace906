package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/auth"
	"github.com/brainsait/docuscan/internal/user"
)

type UserHandler struct {
	svc *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), u.ID, req.FullName, req.Phone, req.AvatarURL)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type createAPIKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *UserHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}

	created, err := h.svc.CreateAPIKey(r.Context(), u, req.Name, req.ExpiresAt)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	keys, err := h.svc.ListAPIKeys(r.Context(), u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"keys": keys, "count": len(keys)})
}

func (h *UserHandler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, apierror.Validation("invalid key id"))
		return
	}

	if err := h.svc.DeleteAPIKey(r.Context(), id, u.ID); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "api key revoked"})
}

func (h *UserHandler) Usage(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	stats, err := h.svc.Usage(r.Context(), u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) Billing(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())

	summary, err := h.svc.Billing(r.Context(), u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *UserHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, apierror.Validation("invalid invoice id"))
		return
	}

	inv, err := h.svc.Invoice(r.Context(), id, u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
