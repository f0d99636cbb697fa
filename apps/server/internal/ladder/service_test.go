package ladder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"holdem-arcade/apps/server/internal/auth"
	"holdem-arcade/apps/server/internal/store"
	"holdem-arcade/holdem"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func services(t *testing.T) map[string]Service {
	t.Helper()
	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlSvc, err := NewSQLService(db, log.New(io.Discard))
	require.NoError(t, err)
	return map[string]Service{"memory": NewMemoryService(), "sqlite": sqlSvc}
}

func TestLadderUnlocksNextTier(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p, err := svc.GetProgress(ctx, 5)
			require.NoError(t, err)
			assert.Equal(t, holdem.TierBeginner, p.HighestUnlocked)
			assert.False(t, p.Unlocked(holdem.TierEasy))

			_, err = svc.RecordResult(ctx, 5, holdem.TierMedium, holdem.OutcomeWon)
			assert.ErrorIs(t, err, ErrTierLocked)

			p, err = svc.RecordResult(ctx, 5, holdem.TierBeginner, holdem.OutcomeLost)
			require.NoError(t, err)
			assert.Equal(t, 1, p.MatchesLost)
			assert.Equal(t, holdem.TierBeginner, p.HighestUnlocked)

			p, err = svc.RecordResult(ctx, 5, holdem.TierBeginner, holdem.OutcomeWon)
			require.NoError(t, err)
			assert.Equal(t, holdem.TierEasy, p.HighestUnlocked)
			assert.Equal(t, []int{1}, p.CompletedTiers)

			p, err = svc.GetProgress(ctx, 5)
			require.NoError(t, err)
			assert.Equal(t, 1, p.MatchesWon)
			assert.True(t, p.Unlocked(holdem.TierEasy))
		})
	}
}

func TestLadderCapsAtMaster(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	var p *Progress
	var err error
	for _, tier := range holdem.Tiers {
		p, err = svc.RecordResult(ctx, 9, tier, holdem.OutcomeWon)
		require.NoError(t, err)
	}
	assert.Equal(t, holdem.TierMaster, p.HighestCompleted)
	assert.Equal(t, holdem.TierMaster, p.HighestUnlocked)
	assert.Len(t, p.CompletedTiers, 5)
}

func TestLadderRejectsUnfinished(t *testing.T) {
	svc := NewMemoryService()
	_, err := svc.RecordResult(context.Background(), 9, holdem.TierBeginner, holdem.OutcomeNone)
	assert.Error(t, err)
	p, _ := svc.GetProgress(context.Background(), 9)
	assert.Zero(t, p.MatchesWon+p.MatchesLost)
}

func TestLadderHTTP(t *testing.T) {
	authSvc := auth.NewManager()
	acct, token, _, err := authSvc.Guest("")
	require.NoError(t, err)
	r := chi.NewRouter()
	NewHTTPHandler(authSvc, NewMemoryService()).Mount(r)

	req := httptest.NewRequest(http.MethodGet, "/api/ladder", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"highest_unlocked":1`)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"user_id":%d`, acct.ID))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ladder", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
