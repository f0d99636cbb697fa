package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"holdem-arcade/apps/server/internal/auth"
	"holdem-arcade/replay"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger Service
	logger *log.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type savedRequest struct {
	Saved bool `json:"saved"`
}

func NewHTTPHandler(authService auth.Service, ledgerService Service, logger *log.Logger) *HTTPHandler {
	return &HTTPHandler{auth: authService, ledger: ledgerService, logger: logger.WithPrefix("ledger")}
}

// Mount registers the hand history endpoints under /api/hands. Every route
// needs a session token.
func (h *HTTPHandler) Mount(r chi.Router) {
	r.Route("/api/hands", func(r chi.Router) {
		r.Get("/recent", h.handleRecent)
		r.Post("/replay", h.handleReplay)
		r.Get("/{source}/{handID}/events", h.handleEvents)
		r.Put("/{source}/{handID}/saved", h.handleSaved)
	})
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	source, ok := ParseSource(r.URL.Query().Get("source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, userID, source, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error("list recent failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "query recent hands failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	source, ok := ParseSource(chi.URLParam(r, "source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	events, err := h.ledger.GetHandEvents(ctx, userID, source, chi.URLParam(r, "handID"))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "hand not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "query hand events failed")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

func (h *HTTPHandler) handleSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	source, ok := ParseSource(chi.URLParam(r, "source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}
	var req savedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	err := h.ledger.SetSaved(ctx, userID, source, chi.URLParam(r, "handID"), req.Saved)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "hand not found")
	case errors.Is(err, ErrSavedLimitReach):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "update saved flag failed")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleReplay generates a tape from a match script and files it under the
// replay source. A script that diverges returns the ReplayError as 422.
func (h *HTTPHandler) handleReplay(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	var script replay.MatchScript
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&script); err != nil {
		writeError(w, http.StatusBadRequest, "invalid match script")
		return
	}

	tape, err := replay.GenerateReplayTape(script)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			writeJSON(w, http.StatusUnprocessableEntity, replayErr)
			return
		}
		writeError(w, http.StatusInternalServerError, "generate replay failed")
		return
	}

	rec := RecordFromTape(userID, "replay_"+uuid.NewString(), tape)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.ledger.RecordHand(ctx, rec); err != nil {
		h.logger.Error("store replay failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "store replay failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hand_id": rec.HandID,
		"outcome": tape.Outcome,
		"events":  len(rec.Events),
	})
}

// RecordFromTape converts a replay tape into a ledger record. Only events
// carrying an encoded envelope are kept.
func RecordFromTape(userID uint64, handID string, tape *replay.ReplayTape) HandRecord {
	events := make([]EventItem, 0, len(tape.Events))
	for _, ev := range tape.Events {
		if ev.EnvelopeB64 == "" {
			continue
		}
		events = append(events, EventItem{Seq: ev.Seq, EventType: ev.Type, EnvelopeB64: ev.EnvelopeB64})
	}
	return HandRecord{
		UserID:   userID,
		Source:   SourceReplay,
		HandID:   handID,
		PlayedAt: time.Now(),
		Summary: map[string]any{
			"seed":    tape.Seed,
			"outcome": tape.Outcome,
			"table":   tape.TableID,
		},
		Events: events,
	}
}

func (h *HTTPHandler) resolveUserID(r *http.Request) (uint64, bool) {
	token := auth.BearerToken(r)
	if token == "" || h.auth == nil {
		return 0, false
	}
	acct, ok := h.auth.ResolveSession(token)
	return acct.ID, ok
}

func parseLimit(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultRecentLimit
	}
	return v
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
