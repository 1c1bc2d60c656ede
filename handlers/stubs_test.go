package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubTournamentService struct {
	services.TournamentService

	createInput   services.CreateTournamentInput
	scheduleInput services.GenerateScheduleInput
	advanceInput  services.AdvanceKnockoutInput
	listFilter    repositories.ListTournamentsFilter

	tournament  *models.Tournament
	tournaments []models.Tournament
	err         error
}

func (s *stubTournamentService) CreateTournament(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	s.createInput = input
	return s.tournament, s.err
}

func (s *stubTournamentService) GenerateSchedule(_ context.Context, _ int, input services.GenerateScheduleInput) (*models.Tournament, error) {
	s.scheduleInput = input
	return s.tournament, s.err
}

func (s *stubTournamentService) ClearSchedule(context.Context, int) error { return s.err }

func (s *stubTournamentService) GetTournament(context.Context, int) (*models.Tournament, error) {
	return s.tournament, s.err
}

func (s *stubTournamentService) ListTournaments(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	s.listFilter = filter
	return s.tournaments, s.err
}

func (s *stubTournamentService) DeleteTournament(context.Context, int) error { return s.err }

func (s *stubTournamentService) AdvanceKnockout(_ context.Context, _ int, input services.AdvanceKnockoutInput) (*models.Tournament, error) {
	s.advanceInput = input
	return s.tournament, s.err
}

type stubMatchService struct {
	round  *int
	input  services.RecordResultInput
	called bool

	matches []models.Match
	match   *models.Match
	err     error
}

func (s *stubMatchService) ListMatchesByTournament(_ context.Context, _ int, round *int) ([]models.Match, error) {
	s.round = round
	return s.matches, s.err
}

func (s *stubMatchService) RecordResult(_ context.Context, _ int, input services.RecordResultInput) (*models.Match, error) {
	s.called = true
	s.input = input
	return s.match, s.err
}

type stubStandingsService struct {
	standings *services.StandingsView
	bracket   *services.BracketView
	err       error
}

func (s *stubStandingsService) GetStandings(context.Context, int) (*services.StandingsView, error) {
	return s.standings, s.err
}

func (s *stubStandingsService) GetBracket(context.Context, int) (*services.BracketView, error) {
	return s.bracket, s.err
}

type stubTeamService struct {
	input services.GenerateTeamsInput
	teams []models.Team
	err   error
}

func (s *stubTeamService) GenerateTeams(_ context.Context, input services.GenerateTeamsInput) ([]models.Team, error) {
	s.input = input
	return s.teams, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tournamentRouter(ts services.TournamentService) http.Handler {
	h := NewTournamentHandler(ts)
	r := chi.NewRouter()
	r.Post("/tournaments", h.CreateHandler)
	r.Get("/tournaments", h.ListHandler)
	r.Get("/tournaments/{tournamentID}", h.GetByIDHandler)
	r.Delete("/tournaments/{tournamentID}", h.DeleteHandler)
	r.Post("/tournaments/{tournamentID}/schedule", h.GenerateScheduleHandler)
	r.Delete("/tournaments/{tournamentID}/schedule", h.ClearScheduleHandler)
	r.Post("/tournaments/{tournamentID}/knockout/advance", h.AdvanceKnockoutHandler)
	return r
}
