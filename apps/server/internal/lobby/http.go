package lobby

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (l *Lobby) Mount(r chi.Router) {
	r.Get("/api/tables", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"tables": l.ListTables()})
	})
}
