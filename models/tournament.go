package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// KnockoutStage tracks the manual advancement of a knockout bracket.
type KnockoutStage string

const (
	StageSeeded     KnockoutStage = "seeded"
	StageInProgress KnockoutStage = "in_progress"
	StageAdvanced   KnockoutStage = "advanced"
	StageCompleted  KnockoutStage = "completed"
)

// Tournament представляет турнир.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Format               TournamentFormat `json:"format" db:"format"`
	ScoringRules         *ScoringRule     `json:"scoring_rules,omitempty" db:"scoring_rules"` // NULL means DefaultScoringRule
	Status               TournamentStatus `json:"status" db:"status"`
	Stage                *KnockoutStage   `json:"stage,omitempty" db:"stage"` // knockout only
	ByeTeamID            *int             `json:"bye_team_id,omitempty" db:"bye_team_id"` // сидит без игры в текущем раунде
	Cadence              string           `json:"cadence" db:"cadence"`
	MatchDurationMinutes int              `json:"match_duration_minutes" db:"match_duration_minutes"`
	ByePolicy            string           `json:"bye_policy" db:"bye_policy"`
	StartTime            time.Time        `json:"start_time" db:"start_time"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}

// EffectiveScoringRule returns the tournament rule or the default one.
func (t *Tournament) EffectiveScoringRule() ScoringRule {
	if t.ScoringRules == nil {
		return DefaultScoringRule()
	}
	return *t.ScoringRules
}
