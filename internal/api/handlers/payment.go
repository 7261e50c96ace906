package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/auth"
	"github.com/brainsait/docuscan/internal/billing"
	"github.com/brainsait/docuscan/internal/models"
)

type PaymentHandler struct {
	svc *billing.Service
}

func NewPaymentHandler(svc *billing.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": billing.Plans()})
}

type createSessionRequest struct {
	Tier models.Tier `json:"tier"`
}

func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}

	result, err := h.svc.CreateSession(r.Context(), user, req.Tier)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type callbackRequest struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
}

// Callback settles a payment after checkout. The reported status is
// ignored in favor of direct gateway verification.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}
	if req.PaymentID == uuid.Nil {
		WriteError(w, r, apierror.Validation("payment_id is required"))
		return
	}

	payment, err := h.svc.HandleCallback(r.Context(), req.PaymentID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	payments, err := h.svc.History(r.Context(), user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": payments, "count": len(payments)})
}
