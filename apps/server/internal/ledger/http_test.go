package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"holdem-arcade/apps/server/internal/auth"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, Service, auth.Account, string) {
	t.Helper()
	authSvc := auth.NewManager()
	acct, token, _, err := authSvc.Guest("")
	require.NoError(t, err)
	svc := NewMemoryService()
	r := chi.NewRouter()
	NewHTTPHandler(authSvc, svc, log.New(io.Discard)).Mount(r)
	return r, svc, acct, token
}

func do(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTPRecentRequiresSession(t *testing.T) {
	r, _, _, _ := newTestRouter(t)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/hands/recent", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/hands/recent", "nope", "").Code)
}

func TestHTTPRecentEventsSaved(t *testing.T) {
	r, svc, acct, token := newTestRouter(t)
	require.NoError(t, svc.RecordHand(context.Background(), HandRecord{
		UserID: acct.ID, HandID: "table_1_h1", PlayedAt: time.Now(),
		Summary: map[string]any{"winners": []any{"You"}},
		Events:  []EventItem{{Seq: 1, EventType: "snapshot", EnvelopeB64: "AQ=="}},
	}))

	rec := do(r, http.MethodGet, "/api/hands/recent?limit=5", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []HistoryItem `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "table_1_h1", body.Items[0].HandID)

	rec = do(r, http.MethodGet, "/api/hands/live/table_1_h1/events", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"event_type":"snapshot"`)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/hands/live/missing/events", token, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/hands/sandbox/x/events", token, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPut, "/api/hands/live/table_1_h1/saved", token, `{"saved":true}`).Code)
}

func TestHTTPReplay(t *testing.T) {
	r, svc, acct, token := newTestRouter(t)
	script := `{"seed":42,"difficulty":"easy","opponents":1,"deck":["As","Ks","7c","2d"],"intents":[{"hand":1,"phase":"PREFLOP","type":"call"}]}`

	rec := do(r, http.MethodPost, "/api/hands/replay", token, script)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		HandID string `json:"hand_id"`
		Events int    `json:"events"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.HandID, "replay_"))
	assert.Positive(t, resp.Events)

	items, err := svc.ListRecent(context.Background(), acct.ID, SourceReplay, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	bad := do(r, http.MethodPost, "/api/hands/replay", token, `{"seed":0,"difficulty":"easy","opponents":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	assert.Contains(t, bad.Body.String(), "invalid_seed")
}
