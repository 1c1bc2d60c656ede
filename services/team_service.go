package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type GenerateTeamsInput struct {
	PlayerIDs []int
	TeamSize  int
}

type TeamService interface {
	// GenerateTeams splits the players into balanced teams and stores them with their members.
	GenerateTeams(ctx context.Context, input GenerateTeamsInput) ([]models.Team, error)
}

type teamService struct {
	tx           repositories.Transactor
	teamRepo     repositories.TeamRepository
	playerRepo   repositories.PlayerRepository
	metrics      metrics.Recorder
	allowedSizes []int
	logger       *slog.Logger
}

func NewTeamService(
	tx repositories.Transactor,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	recorder metrics.Recorder,
	allowedSizes []int,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		tx:           tx,
		teamRepo:     teamRepo,
		playerRepo:   playerRepo,
		metrics:      recorder,
		allowedSizes: allowedSizes,
		logger:       logger,
	}
}

func (s *teamService) GenerateTeams(ctx context.Context, input GenerateTeamsInput) ([]models.Team, error) {
	if !slices.Contains(s.allowedSizes, input.TeamSize) {
		return nil, fmt.Errorf("%w: %d (allowed: %v)", ErrTeamSizeNotAllowed, input.TeamSize, s.allowedSizes)
	}
	if err := checkDistinctIDs(input.PlayerIDs); err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByIDs(ctx, nil, input.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	byID := make(map[int]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	pool := make([]brackets.Participant, 0, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownPlayers, id)
		}
		pool = append(pool, brackets.Participant{ID: p.ID, Strength: float64(p.Level)})
	}

	buckets, err := brackets.GroupBalanced(pool, input.TeamSize)
	if err != nil {
		return nil, err
	}

	teams := make([]models.Team, len(buckets))
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		for i, b := range buckets {
			team := models.Team{Name: b.Name()}
			if err := s.teamRepo.Create(ctx, exec, &team); err != nil {
				return err
			}

			memberIDs := make([]int, len(b.Members))
			team.Members = make([]models.Player, len(b.Members))
			for j, m := range b.Members {
				memberIDs[j] = m.ID
				team.Members[j] = byID[m.ID]
			}
			if err := s.teamRepo.AddMembers(ctx, exec, team.ID, memberIDs); err != nil {
				return err
			}
			team.Strength = b.TotalStrength() / float64(len(b.Members))
			teams[i] = team
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store generated teams: %w", handleRepositoryError(err))
	}

	s.metrics.TeamsGenerated(len(teams))
	s.logger.Info("teams generated",
		slog.Int("players", len(pool)),
		slog.Int("team_size", input.TeamSize),
		slog.Int("teams", len(teams)),
	)
	return teams, nil
}
