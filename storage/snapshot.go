package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/gofrs/uuid/v5"
)

// ScheduleSnapshot is the published, read-only copy of a generated fixture list.
type ScheduleSnapshot struct {
	TournamentID int                     `json:"tournament_id"`
	Name         string                  `json:"name"`
	Format       models.TournamentFormat `json:"format"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Matches      []models.Match          `json:"matches"`
}

type SnapshotPublisher interface {
	// Publish stores the snapshot and returns its public location ("" when nothing was stored).
	Publish(ctx context.Context, snapshot ScheduleSnapshot) (string, error)
	// Purge removes every snapshot of the tournament and reports how many were removed.
	Purge(ctx context.Context, tournamentID int) (int, error)
}

type objectSnapshotPublisher struct {
	store ObjectStore
}

func NewSnapshotPublisher(store ObjectStore) SnapshotPublisher {
	return &objectSnapshotPublisher{store: store}
}

func SnapshotPrefix(tournamentID int) string {
	return fmt.Sprintf("schedules/%d/", tournamentID)
}

// SnapshotKey builds schedules/<tournament>/<uuid>.json. Every publication gets its own object.
func SnapshotKey(tournamentID int) string {
	return SnapshotPrefix(tournamentID) + uuid.Must(uuid.NewV4()).String() + ".json"
}

func (p *objectSnapshotPublisher) Publish(ctx context.Context, snapshot ScheduleSnapshot) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode schedule snapshot: %w", err)
	}
	result, err := p.store.Upload(ctx, SnapshotKey(snapshot.TournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

func (p *objectSnapshotPublisher) Purge(ctx context.Context, tournamentID int) (int, error) {
	keys, err := p.store.List(ctx, SnapshotPrefix(tournamentID))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if err := p.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

type nopPublisher struct{}

// NopPublisher is used when object storage is not configured.
func NopPublisher() SnapshotPublisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, ScheduleSnapshot) (string, error) {
	return "", nil
}

func (nopPublisher) Purge(context.Context, int) (int, error) {
	return 0, nil
}
