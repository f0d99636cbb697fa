package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRegisterThenMe(t *testing.T) {
	r := chi.NewRouter()
	NewHTTPHandler(NewManager()).Mount(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"dave_1","password":"secret12"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var reg authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reg))
	require.NotEmpty(t, reg.SessionToken)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+reg.SessionToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, reg.UserID, me.UserID)
	assert.Equal(t, "dave_1", me.DisplayName)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"dave_1","password":"secret12"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me?token=bogus", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTPGuest(t *testing.T) {
	r := chi.NewRouter()
	NewHTTPHandler(NewManager()).Mount(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/guest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Guest)
	assert.True(t, strings.HasPrefix(resp.DisplayName, "guest-"))
}
