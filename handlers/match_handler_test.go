package handlers

import (
	"net/http"
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchRouter(ms services.MatchService) http.Handler {
	h := NewMatchHandler(ms)
	r := chi.NewRouter()
	r.Get("/tournaments/{tournamentID}/matches", h.ListByTournamentHandler)
	r.Put("/matches/{matchID}", h.RecordResultHandler)
	return r
}

func TestListByTournamentHandler_RoundFilter(t *testing.T) {
	svc := &stubMatchService{matches: []models.Match{{ID: 1, RoundOrder: 2}}}
	router := matchRouter(svc)

	rec := do(router, http.MethodGet, "/tournaments/3/matches?round=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.round)
	assert.Equal(t, 2, *svc.round)

	rec = do(router, http.MethodGet, "/tournaments/3/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.round)

	rec = do(router, http.MethodGet, "/tournaments/3/matches?round=first", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByTournamentHandler_EmptyListIsArray(t *testing.T) {
	rec := do(matchRouter(&stubMatchService{}), http.MethodGet, "/tournaments/3/matches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"matches": []}`, rec.Body.String())
}

func TestRecordResultHandler(t *testing.T) {
	svc := &stubMatchService{match: &models.Match{ID: 9, HomeScore: 2, AwayScore: 1, IsFinished: true}}
	body := `{"home_score": 2, "away_score": 1, "is_finished": true, "round_name": "Final"}`
	rec := do(matchRouter(svc), http.MethodPut, "/matches/9", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.input.HomeScore)
	assert.Equal(t, 1, svc.input.AwayScore)
	assert.True(t, svc.input.IsFinished)
	require.NotNil(t, svc.input.RoundName)
	assert.Equal(t, "Final", *svc.input.RoundName)
	assert.Nil(t, svc.input.StartTime)
	assert.Contains(t, rec.Body.String(), `"match"`)
}

func TestRecordResultHandler_RequiresScores(t *testing.T) {
	svc := &stubMatchService{}
	rec := do(matchRouter(svc), http.MethodPut, "/matches/9", `{"home_score": 2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.called)
}

func TestRecordResultHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrNegativeScore, http.StatusBadRequest},
		{services.ErrMatchNotFound, http.StatusNotFound},
		{services.ErrTournamentCompleted, http.StatusConflict},
	}
	for _, tt := range tests {
		rec := do(matchRouter(&stubMatchService{err: tt.err}), http.MethodPut, "/matches/9", `{"home_score": -1, "away_score": 0}`)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}
