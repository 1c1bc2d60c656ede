package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
)

const defaultListLimit = 20

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type createTournamentRequest struct {
	Name                 string              `json:"name"`
	Format               string              `json:"format"`
	ScoringRules         *models.ScoringRule `json:"scoring_rules"`
	TeamIDs              []int               `json:"team_ids"`
	Seeding              string              `json:"seeding"`
	StartTime            time.Time           `json:"start_time"`
	Cadence              string              `json:"cadence"`
	MatchDurationMinutes int                 `json:"match_duration_minutes"`
	ByePolicy            string              `json:"bye_policy"`
	ConfirmEmpty         bool                `json:"confirm_empty"`
}

type generateScheduleRequest struct {
	TeamIDs      []int  `json:"team_ids"`
	Seeding      string `json:"seeding"`
	ConfirmEmpty bool   `json:"confirm_empty"`
}

type advanceKnockoutRequest struct {
	Winners   []int      `json:"winners"`
	StartTime *time.Time `json:"start_time"`
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := services.CreateTournamentInput{
		Name:                 req.Name,
		Format:               req.Format,
		ScoringRules:         req.ScoringRules,
		TeamIDs:              req.TeamIDs,
		Seeding:              req.Seeding,
		StartTime:            req.StartTime,
		Cadence:              req.Cadence,
		MatchDurationMinutes: req.MatchDurationMinutes,
		ByePolicy:            req.ByePolicy,
		ConfirmEmpty:         req.ConfirmEmpty,
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/tournaments/"+strconv.Itoa(tournament.ID))

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.ListTournamentsFilter{Limit: defaultListLimit}

	if formatStr := query.Get("format"); formatStr != "" {
		format, err := models.ParseTournamentFormat(formatStr)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter.Format = &format
	}

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		switch status {
		case models.StatusUpcoming, models.StatusActive, models.StatusCompleted:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 100 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		filter.Limit = limit
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
		filter.Offset = offset
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if tournaments == nil {
		tournaments = []models.Tournament{}
	}

	// Возвращаем список (даже если он пустой)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateScheduleHandler обрабатывает POST /tournaments/{tournamentID}/schedule
func (h *TournamentHandler) GenerateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req generateScheduleRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GenerateSchedule(r.Context(), id, services.GenerateScheduleInput{
		TeamIDs:      req.TeamIDs,
		Seeding:      req.Seeding,
		ConfirmEmpty: req.ConfirmEmpty,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearScheduleHandler обрабатывает DELETE /tournaments/{tournamentID}/schedule
func (h *TournamentHandler) ClearScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.ClearSchedule(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdvanceKnockoutHandler обрабатывает POST /tournaments/{tournamentID}/knockout/advance
func (h *TournamentHandler) AdvanceKnockoutHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req advanceKnockoutRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.AdvanceKnockout(r.Context(), id, services.AdvanceKnockoutInput{
		Winners:   req.Winners,
		StartTime: req.StartTime,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
