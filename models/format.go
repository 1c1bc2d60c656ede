package models

import "fmt"

type TournamentFormat string

const (
	FormatLeague       TournamentFormat = "league"
	FormatDoubleLeague TournamentFormat = "double_league"
	FormatKnockout     TournamentFormat = "knockout"
)

func ParseTournamentFormat(s string) (TournamentFormat, error) {
	switch f := TournamentFormat(s); f {
	case FormatLeague, FormatDoubleLeague, FormatKnockout:
		return f, nil
	default:
		return "", fmt.Errorf("unknown tournament format '%s'", s)
	}
}

// IsLeague reports whether the format produces a standings table.
func (f TournamentFormat) IsLeague() bool {
	return f == FormatLeague || f == FormatDoubleLeague
}
