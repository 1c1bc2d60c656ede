package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

func ValidateScoringRule(rule models.ScoringRule) error {
	if rule.Win < 0 || rule.Draw < 0 || rule.Loss < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidScoringRule, rule)
	}
	return nil
}

// CalculateStandings folds finished matches into a league table.
//
// Rows are created in order of first appearance (home side first) and then
// stably sorted by points and score difference, both descending. Teams level on
// both keep their first-appearance order. Unfinished matches and matches of a
// team against itself are ignored.
func CalculateStandings(matches []models.Match, rule models.ScoringRule) []models.StandingsRow {
	index := make(map[int]int)
	rows := make([]models.StandingsRow, 0)
	register := func(id int) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(rows)
		rows = append(rows, models.StandingsRow{ParticipantID: id})
		return len(rows) - 1
	}

	for _, m := range matches {
		if !m.IsFinished || m.HomeTeamID == m.AwayTeamID {
			continue
		}
		hi := register(m.HomeTeamID)
		ai := register(m.AwayTeamID)
		home, away := &rows[hi], &rows[ai]

		home.Played++
		away.Played++
		home.PointsFor += m.HomeScore
		home.PointsAgainst += m.AwayScore
		away.PointsFor += m.AwayScore
		away.PointsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Won++
			home.Points += rule.Win
			away.Lost++
			away.Points += rule.Loss
		case m.HomeScore < m.AwayScore:
			away.Won++
			away.Points += rule.Win
			home.Lost++
			home.Points += rule.Loss
		default:
			home.Drawn++
			away.Drawn++
			home.Points += rule.Draw
			away.Points += rule.Draw
		}
	}

	for i := range rows {
		rows[i].Difference = rows[i].PointsFor - rows[i].PointsAgainst
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Difference > rows[j].Difference
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
