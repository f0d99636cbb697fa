package ladder

import (
	"encoding/json"
	"net/http"

	"holdem-arcade/apps/server/internal/auth"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	auth   auth.Service
	ladder Service
}

func NewHTTPHandler(authService auth.Service, ladderService Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, ladder: ladderService}
}

func (h *HTTPHandler) Mount(r chi.Router) {
	r.Get("/api/ladder", h.handleProgress)
}

func (h *HTTPHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	acct, ok := h.auth.ResolveSession(auth.BearerToken(r))
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid session token"})
		return
	}
	progress, err := h.ladder.GetProgress(r.Context(), acct.ID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "query progress failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(progress)
}
