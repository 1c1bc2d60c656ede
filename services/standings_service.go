package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type StandingsView struct {
	TournamentID int                     `json:"tournament_id"`
	Format       models.TournamentFormat `json:"format"`
	ScoringRule  models.ScoringRule      `json:"scoring_rule"`
	Rows         []models.StandingsRow   `json:"rows"`
}

type BracketRound struct {
	Order   int            `json:"order"`
	Name    string         `json:"name"`
	Matches []models.Match `json:"matches"`
}

type BracketView struct {
	TournamentID int                     `json:"tournament_id"`
	Stage        *models.KnockoutStage   `json:"stage,omitempty"`
	Status       models.TournamentStatus `json:"status"`
	Rounds       []BracketRound          `json:"rounds"`
}

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) (*StandingsView, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	metrics        metrics.Recorder
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	recorder metrics.Recorder,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		metrics:        recorder,
	}
}

// loadTournamentAndMatches fetches both in parallel.
func (s *standingsService) loadTournamentAndMatches(ctx context.Context, tournamentID int) (*models.Tournament, []models.Match, error) {
	var tournament *models.Tournament
	var matches []models.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, nil, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gctx, nil, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tournament, matches, nil
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) (*StandingsView, error) {
	tournament, matches, err := s.loadTournamentAndMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Format.IsLeague() {
		return nil, ErrNotLeague
	}

	rule := tournament.EffectiveScoringRule()
	rows := brackets.CalculateStandings(matches, rule)

	if len(rows) > 0 {
		ids := make([]int, len(rows))
		for i, r := range rows {
			ids[i] = r.ParticipantID
		}
		teams, err := s.teamRepo.ListByIDs(ctx, nil, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load team names: %w", err)
		}
		names := make(map[int]string, len(teams))
		for _, t := range teams {
			names[t.ID] = t.Name
		}
		for i := range rows {
			rows[i].TeamName = names[rows[i].ParticipantID]
		}
	}

	s.metrics.StandingsComputed(string(tournament.Format))
	return &StandingsView{
		TournamentID: tournament.ID,
		Format:       tournament.Format,
		ScoringRule:  rule,
		Rows:         rows,
	}, nil
}

func (s *standingsService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, matches, err := s.loadTournamentAndMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Format != models.FormatKnockout {
		return nil, ErrNotKnockout
	}

	byOrder := make(map[int]*BracketRound)
	for _, m := range matches {
		r, ok := byOrder[m.RoundOrder]
		if !ok {
			r = &BracketRound{Order: m.RoundOrder, Name: m.RoundName, Matches: []models.Match{}}
			byOrder[m.RoundOrder] = r
		}
		r.Matches = append(r.Matches, m)
	}
	rounds := make([]BracketRound, 0, len(byOrder))
	for _, r := range byOrder {
		rounds = append(rounds, *r)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Order < rounds[j].Order })

	return &BracketView{
		TournamentID: tournament.ID,
		Stage:        tournament.Stage,
		Status:       tournament.Status,
		Rounds:       rounds,
	}, nil
}
