package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type generateTeamsRequest struct {
	PlayerIDs []int `json:"player_ids"`
	TeamSize  int   `json:"team_size"`
}

// GenerateHandler обрабатывает POST /teams/generate
func (h *TeamHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateTeamsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.GenerateTeams(r.Context(), services.GenerateTeamsInput{
		PlayerIDs: req.PlayerIDs,
		TeamSize:  req.TeamSize,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
