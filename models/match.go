package models

import "time"

// Match is a persisted fixture. Scores stay zero until a result is recorded.
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int       `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id" db:"away_team_id"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	IsFinished   bool      `json:"is_finished" db:"is_finished"`
	HomeScore    int       `json:"home_score" db:"home_score"`
	AwayScore    int       `json:"away_score" db:"away_score"`
	RoundName    string    `json:"round_name" db:"round_name"`
	RoundOrder   int       `json:"round_order" db:"round_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Winner returns the id of the winning side of a finished match.
// ok is false for unfinished matches and draws.
func (m Match) Winner() (id int, ok bool) {
	if !m.IsFinished || m.HomeScore == m.AwayScore {
		return 0, false
	}
	if m.HomeScore > m.AwayScore {
		return m.HomeTeamID, true
	}
	return m.AwayTeamID, true
}
