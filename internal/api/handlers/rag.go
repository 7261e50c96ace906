package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/auth"
	"github.com/brainsait/docuscan/internal/rag"
)

type RAGHandler struct {
	svc *rag.Service
}

func NewRAGHandler(svc *rag.Service) *RAGHandler {
	return &RAGHandler{svc: svc}
}

type indexDocumentRequest struct {
	Name     string          `json:"name"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

func (h *RAGHandler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req indexDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}

	doc, err := h.svc.IndexDocument(r.Context(), user.ID, req.Name, req.Content, req.Metadata)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *RAGHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	docs, err := h.svc.ListDocuments(r.Context(), user.ID, limit, offset)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *RAGHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, apierror.Validation("invalid document id"))
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id, user.ID); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

type queryRequest struct {
	Query          string     `json:"query"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	MaxResults     int        `json:"max_results,omitempty"`
}

func (h *RAGHandler) Query(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierror.Validation("invalid request body"))
		return
	}

	result, err := h.svc.Query(r.Context(), user, req.Query, req.ConversationID, req.MaxResults)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RAGHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	convs, err := h.svc.ListConversations(r.Context(), user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs, "count": len(convs)})
}

func (h *RAGHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, apierror.Validation("invalid conversation id"))
		return
	}

	conv, msgs, err := h.svc.GetConversation(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversation": conv, "messages": msgs})
}
