package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brainsait/docuscan/internal/apierror"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError maps any error to the client-safe taxonomy. The original
// cause is logged for internal errors only.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.From(err)
	if apiErr.Status >= 500 {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, apiErr.Status, map[string]interface{}{"error": apiErr})
}
