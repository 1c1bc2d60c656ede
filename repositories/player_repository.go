package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

type PlayerRepository interface {
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error) {
	players := make([]models.Player, 0, len(ids))
	if len(ids) == 0 {
		return players, nil
	}
	if exec == nil {
		exec = r.db
	}

	rows, err := exec.QueryContext(ctx,
		`SELECT id, username, level FROM profiles WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Level); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
