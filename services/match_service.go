package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// RecordResultInput is a result edit. Nil optional fields keep the stored value.
type RecordResultInput struct {
	HomeScore  int
	AwayScore  int
	IsFinished bool
	StartTime  *time.Time
	RoundName  *string
}

type MatchService interface {
	ListMatchesByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Match, error)
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error)
}

type matchService struct {
	tx             repositories.Transactor
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             tx,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *matchService) ListMatchesByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	// nil для round означает все туры
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

// RecordResult stores a score edit under row locks on the tournament and the match,
// then moves the tournament forward: the first result starts it, and a league with
// every match finished is completed.
func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, ErrNegativeScore
	}
	if input.RoundName != nil && strings.TrimSpace(*input.RoundName) == "" {
		return nil, fmt.Errorf("%w: round name must not be blank", ErrValidationFailed)
	}

	// турнир нужен до блокировки, чтобы брать блокировки в том же порядке, что и AdvanceKnockout
	unlocked, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	var updated *models.Match
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, unlocked.TournamentID)
		if err != nil {
			return err
		}
		if tournament.Format == models.FormatKnockout && tournament.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}

		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return err
		}
		match.HomeScore = input.HomeScore
		match.AwayScore = input.AwayScore
		match.IsFinished = input.IsFinished
		if input.StartTime != nil {
			match.StartTime = *input.StartTime
		}
		if input.RoundName != nil {
			match.RoundName = strings.TrimSpace(*input.RoundName)
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return err
		}

		if err := s.updateProgress(ctx, exec, tournament); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record result for match %d: %w", matchID, handleRepositoryError(err))
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", updated.ID),
		slog.Int("tournament_id", updated.TournamentID),
		slog.Int("home_score", updated.HomeScore),
		slog.Int("away_score", updated.AwayScore),
		slog.Bool("is_finished", updated.IsFinished),
	)
	return updated, nil
}

func (s *matchService) updateProgress(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	status := t.Status
	stage := t.Stage

	if t.Format.IsLeague() {
		matches, err := s.matchRepo.ListByTournament(ctx, exec, t.ID, nil)
		if err != nil {
			return err
		}
		status = models.StatusActive
		if allFinished(matches) {
			status = models.StatusCompleted
		}
	} else {
		status = models.StatusActive
		if stage != nil && *stage == models.StageSeeded {
			next := models.StageInProgress
			stage = &next
		}
	}

	if status == t.Status && stage == t.Stage {
		return nil
	}
	return s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, status, stage)
}

func allFinished(matches []models.Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.IsFinished {
			return false
		}
	}
	return true
}
