package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrMatchNotFound            = errors.New("match not found")
	ErrMatchTeamInvalid         = errors.New("match references an unknown team")
	ErrMatchTournamentInvalid   = errors.New("match references an unknown tournament")
	ErrMatchScoreInvalid        = errors.New("match scores must not be negative")
	ErrScheduleAlreadyGenerated = errors.New("schedule already generated for this tournament")
)

type MatchRepository interface {
	// ClaimSchedule records that fixtures are being generated for the tournament.
	// The claim is unique per tournament, so a second generation fails with ErrScheduleAlreadyGenerated.
	ClaimSchedule(ctx context.Context, exec SQLExecutor, tournamentID int) error
	ReleaseSchedule(ctx context.Context, exec SQLExecutor, tournamentID int) error
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, home_team_id, away_team_id, start_time, is_finished,
		       home_score, away_score, round_name, round_order, created_at`

func (r *postgresMatchRepository) ClaimSchedule(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`INSERT INTO tournament_schedules (tournament_id) VALUES ($1)`, tournamentID)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return fmt.Errorf("%w: tournament %d", ErrScheduleAlreadyGenerated, tournamentID)
			case pqForeignKeyViolation:
				return ErrTournamentNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) ReleaseSchedule(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM tournament_schedules WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	stmt, err := r.getExecutor(exec).PrepareContext(ctx, `
		INSERT INTO matches
			(tournament_id, home_team_id, away_team_id, start_time, is_finished,
			 home_score, away_score, round_name, round_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`)
	if err != nil {
		return fmt.Errorf("BatchCreate failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		err = stmt.QueryRowContext(ctx,
			m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.StartTime, m.IsFinished,
			m.HomeScore, m.AwayScore, m.RoundName, m.RoundOrder,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for %s %d vs %d: %w", m.RoundName, m.HomeTeamID, m.AwayTeamID, r.handleMatchError(err))
		}
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.StartTime, &m.IsFinished,
		&m.HomeScore, &m.AwayScore, &m.RoundName, &m.RoundOrder, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the match row so concurrent result edits are applied one at a time.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	if exec == nil {
		return nil, errors.New("GetByIDForUpdate requires a transaction")
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if roundFilter != nil {
		queryBuilder.WriteString(" AND round_order = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *roundFilter)
	}
	// id keeps insertion order for fixtures sharing a start time
	queryBuilder.WriteString(" ORDER BY start_time ASC, round_order ASC, id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, is_finished = $3, start_time = $4, round_name = $5
		WHERE id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.HomeScore, m.AwayScore, m.IsFinished, m.StartTime, m.RoundName, m.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	pqErr, ok := asPQError(err)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pqForeignKeyViolation:
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	case pqCheckViolation:
		return ErrMatchScoreInvalid
	}
	return err
}
