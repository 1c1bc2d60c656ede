package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
)

type CreateTournamentInput struct {
	Name                 string
	Format               string
	ScoringRules         *models.ScoringRule
	TeamIDs              []int
	Seeding              string
	StartTime            time.Time
	Cadence              string
	MatchDurationMinutes int
	ByePolicy            string
	// ConfirmEmpty allows persisting a tournament whose schedule has no fixtures.
	ConfirmEmpty bool
}

type GenerateScheduleInput struct {
	TeamIDs      []int
	Seeding      string
	ConfirmEmpty bool
}

// AdvanceKnockoutInput carries the winners an organiser picked for the current round.
type AdvanceKnockoutInput struct {
	Winners   []int
	StartTime *time.Time
}

// ScheduleDefaults apply when a tournament is created without cadence settings.
type ScheduleDefaults struct {
	Cadence              string
	MatchDurationMinutes int
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GenerateSchedule(ctx context.Context, tournamentID int, input GenerateScheduleInput) (*models.Tournament, error)
	ClearSchedule(ctx context.Context, tournamentID int) error
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	AdvanceKnockout(ctx context.Context, tournamentID int, input AdvanceKnockoutInput) (*models.Tournament, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	publisher      storage.SnapshotPublisher
	metrics        metrics.Recorder
	defaults       ScheduleDefaults
	rng            *lockedRand
	now            func() time.Time
	logger         *slog.Logger
}

type TournamentServiceOption func(*tournamentService)

// WithRandSource fixes the shuffle used by random seeding.
func WithRandSource(src rand.Source) TournamentServiceOption {
	return func(s *tournamentService) {
		s.rng = newLockedRand(src)
	}
}

func WithClock(now func() time.Time) TournamentServiceOption {
	return func(s *tournamentService) {
		s.now = now
	}
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	publisher storage.SnapshotPublisher,
	recorder metrics.Recorder,
	defaults ScheduleDefaults,
	logger *slog.Logger,
	opts ...TournamentServiceOption,
) TournamentService {
	s := &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		publisher:      publisher,
		metrics:        recorder,
		defaults:       defaults,
		rng:            newLockedRand(rand.NewSource(time.Now().UnixNano())),
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	started := s.now()

	tournament, err := s.newTournament(input)
	if err != nil {
		return nil, err
	}
	mode, err := brackets.ParseSeedingMode(input.Seeding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	fixtures, bye, err := s.buildFixtures(ctx, tournament, input.TeamIDs, mode, input.ConfirmEmpty)
	if err != nil {
		return nil, err
	}
	tournament.ByeTeamID = bye

	var matches []*models.Match
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}
		if err := s.matchRepo.ClaimSchedule(ctx, exec, tournament.ID); err != nil {
			return err
		}
		matches = fixturesToMatches(tournament.ID, fixtures)
		return s.matchRepo.BatchCreate(ctx, exec, matches)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament '%s': %w", tournament.Name, handleRepositoryError(err))
	}

	tournament.Matches = derefMatches(matches)
	s.afterGeneration(ctx, tournament, started)
	return tournament, nil
}

func (s *tournamentService) newTournament(input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	format, err := models.ParseTournamentFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if input.ScoringRules != nil {
		if err := brackets.ValidateScoringRule(*input.ScoringRules); err != nil {
			return nil, err
		}
	}
	if input.StartTime.IsZero() {
		return nil, ErrTournamentStartRequired
	}

	cadenceName := input.Cadence
	if cadenceName == "" {
		cadenceName = s.defaults.Cadence
	}
	policy, err := brackets.ParseCadencePolicy(cadenceName)
	if err != nil {
		return nil, err
	}

	duration := input.MatchDurationMinutes
	if duration < 0 {
		return nil, fmt.Errorf("%w: match duration must not be negative", ErrValidationFailed)
	}
	if duration == 0 {
		duration = s.defaults.MatchDurationMinutes
	}

	byePolicy, err := brackets.ParseByePolicy(input.ByePolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	t := &models.Tournament{
		Name:                 name,
		Format:               format,
		ScoringRules:         input.ScoringRules,
		Status:               models.StatusUpcoming,
		Cadence:              string(policy),
		MatchDurationMinutes: duration,
		ByePolicy:            string(byePolicy),
		StartTime:            input.StartTime,
	}
	if format == models.FormatKnockout {
		stage := models.StageSeeded
		t.Stage = &stage
	}
	if _, err := tournamentCadence(t); err != nil {
		return nil, err
	}
	return t, nil
}

// buildFixtures runs the engine: seeding order, generator, dater. Nothing is written.
// For a knockout it also returns the team that skips round 1, if any.
func (s *tournamentService) buildFixtures(ctx context.Context, t *models.Tournament, teamIDs []int, mode brackets.SeedingMode, confirmEmpty bool) ([]brackets.Fixture, *int, error) {
	if err := checkDistinctIDs(teamIDs); err != nil {
		return nil, nil, err
	}
	teams, err := s.teamRepo.ListByIDs(ctx, nil, teamIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load teams: %w", err)
	}
	participants, err := participantsInRequestOrder(teamIDs, teams)
	if err != nil {
		return nil, nil, err
	}

	generator, err := brackets.NewGenerator(t.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	byePolicy, err := brackets.ParseByePolicy(t.ByePolicy)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	schedule, err := generator.GenerateBracket(brackets.GenerateBracketParams{
		ParticipantIDs: s.rng.order(participants, mode),
		ByePolicy:      byePolicy,
		RoundIndex:     1,
	})
	if err != nil {
		return nil, nil, err
	}
	if schedule.IsEmpty() && !confirmEmpty {
		return nil, nil, brackets.ErrEmptySchedule
	}

	cadence, err := tournamentCadence(t)
	if err != nil {
		return nil, nil, err
	}
	fixtures, err := brackets.DateSchedule(schedule, t.StartTime, cadence)
	if err != nil {
		return nil, nil, err
	}

	var bye *int
	if t.Format == models.FormatKnockout {
		bye = knockoutBye(schedule)
	}

	s.logger.Debug("schedule built",
		slog.String("generator", generator.GetName()),
		slog.String("seeding", string(mode)),
		slog.Int("rounds", len(schedule.Rounds)),
		slog.Int("fixtures", len(fixtures)),
	)
	return fixtures, bye, nil
}

// knockoutBye returns the participant left out of the single seeded round.
func knockoutBye(schedule *brackets.Schedule) *int {
	if len(schedule.Rounds) == 0 || len(schedule.Rounds[0].Byes) == 0 {
		return nil
	}
	bye := schedule.Rounds[0].Byes[0]
	return &bye
}

func (s *tournamentService) afterGeneration(ctx context.Context, t *models.Tournament, started time.Time) {
	s.metrics.ScheduleGenerated(string(t.Format), len(t.Matches), s.now().Sub(started))
	s.logger.Info("schedule generated",
		slog.Int("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int("fixtures", len(t.Matches)),
	)
	s.publishSnapshot(ctx, t, t.Matches)
}

// Сбой публикации снимка не отменяет уже сохранённое расписание.
func (s *tournamentService) publishSnapshot(ctx context.Context, t *models.Tournament, matches []models.Match) {
	location, err := s.publisher.Publish(ctx, storage.ScheduleSnapshot{
		TournamentID: t.ID,
		Name:         t.Name,
		Format:       t.Format,
		GeneratedAt:  s.now().UTC(),
		Matches:      matches,
	})
	if err != nil {
		s.logger.Warn("failed to publish schedule snapshot", slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	if location != "" {
		s.logger.Info("schedule snapshot published", slog.Int("tournament_id", t.ID), slog.String("location", location))
	}
}

func (s *tournamentService) GenerateSchedule(ctx context.Context, tournamentID int, input GenerateScheduleInput) (*models.Tournament, error) {
	started := s.now()

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	mode, err := brackets.ParseSeedingMode(input.Seeding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	fixtures, bye, err := s.buildFixtures(ctx, tournament, input.TeamIDs, mode, input.ConfirmEmpty)
	if err != nil {
		return nil, err
	}

	var matches []*models.Match
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := s.matchRepo.ClaimSchedule(ctx, exec, tournamentID); err != nil {
			return err
		}
		matches = fixturesToMatches(tournamentID, fixtures)
		if err := s.matchRepo.BatchCreate(ctx, exec, matches); err != nil {
			return err
		}

		locked.Status = models.StatusUpcoming
		if locked.Format == models.FormatKnockout {
			stage := models.StageSeeded
			locked.Stage = &stage
		}
		locked.ByeTeamID = bye
		tournament = locked
		if err := s.tournamentRepo.SetBye(ctx, exec, tournamentID, bye); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateProgress(ctx, exec, tournamentID, locked.Status, locked.Stage)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule for tournament %d: %w", tournamentID, handleRepositoryError(err))
	}

	tournament.Matches = derefMatches(matches)
	s.afterGeneration(ctx, tournament, started)
	return tournament, nil
}

// ClearSchedule removes every fixture and the generation claim so the schedule can be generated again.
func (s *tournamentService) ClearSchedule(ctx context.Context, tournamentID int) error {
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID); err != nil {
			return err
		}
		deleted, err := s.matchRepo.DeleteByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := s.matchRepo.ReleaseSchedule(ctx, exec, tournamentID); err != nil {
			return err
		}
		s.logger.Info("schedule cleared", slog.Int("tournament_id", tournamentID), slog.Int64("matches_deleted", deleted))
		if err := s.tournamentRepo.SetBye(ctx, exec, tournamentID, nil); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateProgress(ctx, exec, tournamentID, models.StatusUpcoming, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to clear schedule for tournament %d: %w", tournamentID, handleRepositoryError(err))
	}
	s.purgeSnapshots(ctx, tournamentID)
	return nil
}

// Опубликованные снимки больше не соответствуют расписанию; ошибка удаления только логируется.
func (s *tournamentService) purgeSnapshots(ctx context.Context, tournamentID int) {
	removed, err := s.publisher.Purge(ctx, tournamentID)
	if err != nil {
		s.logger.Warn("failed to remove schedule snapshots", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("schedule snapshots removed", slog.Int("tournament_id", tournamentID), slog.Int("removed", removed))
	}
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", id, err)
	}
	tournament.Matches = matches
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	s.purgeSnapshots(ctx, id)
	return nil
}

// AdvanceKnockout closes the current knockout round with the winners chosen by an organiser.
// Closing the final completes the tournament; otherwise the winners are seeded into the next round.
func (s *tournamentService) AdvanceKnockout(ctx context.Context, tournamentID int, input AdvanceKnockoutInput) (*models.Tournament, error) {
	if len(input.Winners) == 0 {
		return nil, fmt.Errorf("%w: at least one winner is required", ErrInvalidWinners)
	}
	if err := checkDistinctIDs(input.Winners); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWinners, err)
	}

	var tournament *models.Tournament
	var created []*models.Match
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Format != models.FormatKnockout {
			return ErrNotKnockout
		}
		if t.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}

		matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return err
		}
		round, roundMatches, err := currentRound(matches)
		if err != nil {
			return err
		}
		if err := validateWinners(round, roundMatches, t.ByeTeamID, input.Winners); err != nil {
			return err
		}

		current := models.StageSeeded
		if t.Stage != nil {
			current = *t.Stage
		}
		stage, err := brackets.AdvanceStage(current, models.StageAdvanced)
		if err != nil {
			return err
		}

		var nextBye *int
		if len(roundMatches) == 1 && t.ByeTeamID == nil {
			if stage, err = brackets.AdvanceStage(stage, models.StageCompleted); err != nil {
				return err
			}
			t.Status = models.StatusCompleted
		} else {
			next := round + 1
			byePolicy, err := brackets.ParseByePolicy(t.ByePolicy)
			if err != nil {
				return err
			}
			schedule, err := brackets.SeedKnockout(input.Winners, byePolicy, next)
			if err != nil {
				return err
			}
			cadence, err := tournamentCadence(t)
			if err != nil {
				return err
			}
			fixtures, err := brackets.DateSchedule(schedule, nextRoundBase(t, cadence, matches, next, input.StartTime), cadence)
			if err != nil {
				return err
			}
			nextBye = knockoutBye(schedule)
			created = fixturesToMatches(tournamentID, fixtures)
			if err := s.matchRepo.BatchCreate(ctx, exec, created); err != nil {
				return err
			}
			if stage, err = brackets.AdvanceStage(stage, models.StageInProgress); err != nil {
				return err
			}
			t.Status = models.StatusActive
		}

		t.Stage = &stage
		t.ByeTeamID = nextBye
		if err := s.tournamentRepo.SetBye(ctx, exec, tournamentID, nextBye); err != nil {
			return err
		}
		if err := s.tournamentRepo.UpdateProgress(ctx, exec, tournamentID, t.Status, t.Stage); err != nil {
			return err
		}
		t.Matches = append(matches, derefMatches(created)...)
		tournament = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to advance tournament %d: %w", tournamentID, handleRepositoryError(err))
	}

	s.logger.Info("knockout advanced",
		slog.Int("tournament_id", tournamentID),
		slog.String("stage", string(*tournament.Stage)),
		slog.Int("winners", len(input.Winners)),
		slog.Int("fixtures_created", len(created)),
	)
	if len(created) > 0 {
		s.publishSnapshot(ctx, tournament, tournament.Matches)
	}
	return tournament, nil
}

// currentRound returns the highest round order and its matches. Every match of that round must be finished.
func currentRound(matches []models.Match) (int, []models.Match, error) {
	round := 0
	for _, m := range matches {
		if m.RoundOrder > round {
			round = m.RoundOrder
		}
	}
	if round == 0 {
		return 0, nil, ErrNoRoundToAdvance
	}

	var inRound []models.Match
	for _, m := range matches {
		if m.RoundOrder != round {
			continue
		}
		if !m.IsFinished {
			return 0, nil, fmt.Errorf("%w: match %d in %s", ErrRoundNotFinished, m.ID, m.RoundName)
		}
		inRound = append(inRound, m)
	}
	return round, inRound, nil
}

// validateWinners requires exactly one side of every match in the round, plus the
// team that had the bye. Anyone else did not take part in the round and cannot advance.
func validateWinners(round int, roundMatches []models.Match, bye *int, winners []int) error {
	expected := len(roundMatches)
	if bye != nil {
		expected++
	}
	if len(winners) != expected {
		return fmt.Errorf("%w: round %d needs %d winners, got %d", ErrInvalidWinners, round, expected, len(winners))
	}

	matchOf := make(map[int]models.Match, 2*len(roundMatches))
	for _, m := range roundMatches {
		matchOf[m.HomeTeamID] = m
		matchOf[m.AwayTeamID] = m
	}
	decided := make(map[int]bool, len(roundMatches))
	for _, id := range winners {
		m, played := matchOf[id]
		if !played {
			if bye != nil && id == *bye {
				continue
			}
			return fmt.Errorf("%w: team %d did not take part in round %d", ErrInvalidWinners, id, round)
		}
		if decided[m.ID] {
			return fmt.Errorf("%w: both sides of match %d", ErrInvalidWinners, m.ID)
		}
		if winner, ok := m.Winner(); ok && winner != id {
			return fmt.Errorf("%w: team %d lost match %d", ErrInvalidWinners, id, m.ID)
		}
		decided[m.ID] = true
	}
	return nil
}

// nextRoundBase picks the DateSchedule start for round `index`.
// Weekly and daily rounds keep their offset from the tournament start;
// compact rounds continue after the latest scheduled fixture.
func nextRoundBase(t *models.Tournament, cadence brackets.Cadence, matches []models.Match, index int, explicit *time.Time) time.Time {
	if explicit != nil {
		return roundBase(cadence.Policy, *explicit, index)
	}
	if cadence.Policy != brackets.CadenceCompact {
		return t.StartTime
	}
	latest := t.StartTime
	for _, m := range matches {
		if m.StartTime.After(latest) {
			latest = m.StartTime
		}
	}
	return latest.Add(cadence.MatchDuration)
}
