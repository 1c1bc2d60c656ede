package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameConflict  = errors.New("team name already exists")
	ErrTeamMemberInvalid = errors.New("team member references an unknown player")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	AddMembers(ctx context.Context, exec SQLExecutor, teamID int, playerIDs []int) error
	// ListByIDs returns the requested teams with Strength set to the mean member level.
	// Teams without members have strength 0. Missing ids are simply absent from the result.
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
			return ErrTeamNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) AddMembers(ctx context.Context, exec SQLExecutor, teamID int, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO team_members (team_id, profile_id)
		SELECT $1, unnest($2::int[])`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, teamID, pq.Array(playerIDs))
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
			if pqErr.Constraint == "team_members_team_id_fkey" {
				return ErrTeamNotFound
			}
			return ErrTeamMemberInvalid
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}

	// сила команды = средний уровень участников
	query := `
		SELECT t.id, t.name, t.created_at, COALESCE(AVG(p.level), 0)::float8 AS strength
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		LEFT JOIN profiles p ON p.id = tm.profile_id
		WHERE t.id = ANY($1)
		GROUP BY t.id, t.name, t.created_at
		ORDER BY t.id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.Strength); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}
