package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// Pairing is a single match-up. Home and Away are ordering labels only.
type Pairing struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Reversed swaps the home/away labels.
func (p Pairing) Reversed() Pairing {
	return Pairing{Home: p.Away, Away: p.Home}
}

// Round groups the pairings that share an abstract round index (1-based).
type Round struct {
	Index    int       `json:"index"`
	Pairings []Pairing `json:"pairings"`
	Byes     []int     `json:"byes,omitempty"` // participants idle in this round
}

// Schedule is the ordered list of rounds produced by a generator.
// It is never mutated after generation.
type Schedule struct {
	Rounds []Round `json:"rounds"`
}

// PairingCount returns the total number of pairings across all rounds.
func (s *Schedule) PairingCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Rounds {
		n += len(r.Pairings)
	}
	return n
}

func (s *Schedule) IsEmpty() bool {
	return s.PairingCount() == 0
}

type GenerateBracketParams struct {
	ParticipantIDs []int
	ByePolicy      ByePolicy
	// RoundIndex is the index assigned to a seeded knockout round. Zero means 1.
	RoundIndex int
}

// BracketGenerator turns an ordered participant list into an abstract schedule.
type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) (*Schedule, error)

	GetName() string
}

// NewGenerator picks the generator matching a tournament format.
func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatLeague:
		return NewRoundRobinGenerator(SingleLeg), nil
	case models.FormatDoubleLeague:
		return NewRoundRobinGenerator(DoubleLeg), nil
	case models.FormatKnockout:
		return NewSingleEliminationGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported tournament format '%s'", format)
	}
}

func checkDistinct(ids []int) error {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
