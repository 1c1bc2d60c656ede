package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// HomeScore и AwayScore обязательны, поэтому указатели
type recordResultRequest struct {
	HomeScore  *int       `json:"home_score"`
	AwayScore  *int       `json:"away_score"`
	IsFinished bool       `json:"is_finished"`
	StartTime  *time.Time `json:"start_time"`
	RoundName  *string    `json:"round_name"`
}

// ListByTournamentHandler обрабатывает GET /tournaments/{tournamentID}/matches?round=N
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var round *int
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		value, err := strconv.Atoi(roundStr)
		if err != nil || value <= 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		round = &value
	}

	matches, err := h.matchService.ListMatchesByTournament(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler обрабатывает PUT /matches/{matchID}
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		badRequestResponse(w, r, errors.New("home_score and away_score are required"))
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), matchID, services.RecordResultInput{
		HomeScore:  *req.HomeScore,
		AwayScore:  *req.AwayScore,
		IsFinished: req.IsFinished,
		StartTime:  req.StartTime,
		RoundName:  req.RoundName,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
