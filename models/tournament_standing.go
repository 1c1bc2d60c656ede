package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScoringRule holds the points awarded for each match outcome.
type ScoringRule struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

func DefaultScoringRule() ScoringRule {
	return ScoringRule{Win: 2, Draw: 1, Loss: 0}
}

// Value stores the rule as a JSONB column.
func (r ScoringRule) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ScoringRule) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ScoringRule", src)
	}
	return json.Unmarshal(raw, r)
}

// StandingsRow is one line of a league table. It is recomputed from the match set on every read.
type StandingsRow struct {
	Position      int `json:"position"`
	ParticipantID int `json:"participant_id"`
	Played        int `json:"played"`
	Won           int `json:"won"`
	Drawn         int `json:"drawn"`
	Lost          int `json:"lost"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
	Difference    int `json:"difference"`
	Points        int `json:"points"`

	TeamName string `json:"team_name,omitempty"`
}
