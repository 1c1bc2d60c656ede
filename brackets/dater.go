package brackets

import (
	"fmt"
	"time"
)

// CadencePolicy controls how rounds are spread over the calendar.
type CadencePolicy string

const (
	CadenceWeekly  CadencePolicy = "weekly"
	CadenceDaily   CadencePolicy = "daily"
	CadenceCompact CadencePolicy = "compact"
)

// ParseCadencePolicy accepts both the canonical names and the short
// week/day/manual values used by the admin forms.
func ParseCadencePolicy(s string) (CadencePolicy, error) {
	switch s {
	case "weekly", "week":
		return CadenceWeekly, nil
	case "daily", "day":
		return CadenceDaily, nil
	case "compact", "manual":
		return CadenceCompact, nil
	default:
		return "", fmt.Errorf("%w: unknown policy '%s'", ErrInvalidCadence, s)
	}
}

type Cadence struct {
	Policy CadencePolicy
	// MatchDuration is the gap between consecutive fixtures under CadenceCompact.
	MatchDuration time.Duration
}

func (c Cadence) Validate() error {
	switch c.Policy {
	case CadenceWeekly, CadenceDaily:
		return nil
	case CadenceCompact:
		if c.MatchDuration <= 0 {
			return fmt.Errorf("%w: compact cadence needs a positive match duration", ErrInvalidCadence)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown policy '%s'", ErrInvalidCadence, c.Policy)
	}
}

// Fixture is a pairing with a concrete start time, ready to be persisted.
type Fixture struct {
	Home       int       `json:"home_team_id"`
	Away       int       `json:"away_team_id"`
	StartTime  time.Time `json:"start_time"`
	RoundName  string    `json:"round_name"`
	RoundOrder int       `json:"round_order"`
}

func RoundName(index int) string {
	return fmt.Sprintf("Round %d", index)
}

// DateSchedule assigns start times to every pairing of the schedule.
// Under weekly and daily cadences all fixtures of a round share one timestamp.
// Under compact cadence fixtures run back to back in emission order.
func DateSchedule(s *Schedule, start time.Time, cadence Cadence) ([]Fixture, error) {
	if err := cadence.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return []Fixture{}, nil
	}

	fixtures := make([]Fixture, 0, s.PairingCount())
	for _, round := range s.Rounds {
		var roundStart time.Time
		switch cadence.Policy {
		case CadenceWeekly:
			roundStart = start.AddDate(0, 0, 7*(round.Index-1))
		case CadenceDaily:
			roundStart = start.AddDate(0, 0, round.Index-1)
		}

		for _, p := range round.Pairings {
			startTime := roundStart
			if cadence.Policy == CadenceCompact {
				startTime = start.Add(time.Duration(len(fixtures)) * cadence.MatchDuration)
			}
			fixtures = append(fixtures, Fixture{
				Home:       p.Home,
				Away:       p.Away,
				StartTime:  startTime,
				RoundName:  RoundName(round.Index),
				RoundOrder: round.Index,
			})
		}
	}
	return fixtures, nil
}
