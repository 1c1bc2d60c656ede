package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
)

// --- Общие хелперы ---

func checkDistinctIDs(ids []int) error {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: id %d", brackets.ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// participantsInRequestOrder keeps the order the caller listed the teams in,
// so equal strengths are tie-broken by that order.
func participantsInRequestOrder(ids []int, teams []models.Team) ([]brackets.Participant, error) {
	byID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	participants := make([]brackets.Participant, 0, len(ids))
	var missing []string
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		participants = append(participants, brackets.Participant{ID: t.ID, Strength: t.Strength})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeams, strings.Join(missing, ", "))
	}
	return participants, nil
}

func fixturesToMatches(tournamentID int, fixtures []brackets.Fixture) []*models.Match {
	matches := make([]*models.Match, len(fixtures))
	for i, f := range fixtures {
		matches[i] = &models.Match{
			TournamentID: tournamentID,
			HomeTeamID:   f.Home,
			AwayTeamID:   f.Away,
			StartTime:    f.StartTime,
			RoundName:    f.RoundName,
			RoundOrder:   f.RoundOrder,
		}
	}
	return matches
}

func derefMatches(slice []*models.Match) []models.Match {
	result := make([]models.Match, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

// roundBase returns the start passed to DateSchedule so that round `index`
// begins exactly at `at`. Weekly and daily cadences offset rounds from the base.
func roundBase(policy brackets.CadencePolicy, at time.Time, index int) time.Time {
	switch policy {
	case brackets.CadenceWeekly:
		return at.AddDate(0, 0, -7*(index-1))
	case brackets.CadenceDaily:
		return at.AddDate(0, 0, -(index - 1))
	default:
		return at
	}
}

func tournamentCadence(t *models.Tournament) (brackets.Cadence, error) {
	policy, err := brackets.ParseCadencePolicy(t.Cadence)
	if err != nil {
		return brackets.Cadence{}, err
	}
	cadence := brackets.Cadence{
		Policy:        policy,
		MatchDuration: time.Duration(t.MatchDurationMinutes) * time.Minute,
	}
	return cadence, cadence.Validate()
}

// lockedRand makes a *rand.Rand safe for concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	return &lockedRand{rng: rand.New(src)}
}

func (l *lockedRand) order(participants []brackets.Participant, mode brackets.SeedingMode) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return brackets.OrderParticipants(participants, mode, l.rng)
}
