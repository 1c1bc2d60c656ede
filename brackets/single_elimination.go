package brackets

import "fmt"

// ByePolicy decides what happens to the odd participant out of a knockout round.
type ByePolicy string

const (
	// ByeNone rejects odd participant counts.
	ByeNone ByePolicy = "none"
	// ByeLastSeed lets the last participant in the list advance without playing.
	ByeLastSeed ByePolicy = "last_seed"
)

func ParseByePolicy(s string) (ByePolicy, error) {
	switch ByePolicy(s) {
	case "", ByeNone:
		return ByeNone, nil
	case ByeLastSeed:
		return ByeLastSeed, nil
	default:
		return "", fmt.Errorf("unknown bye policy '%s'", s)
	}
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(params GenerateBracketParams) (*Schedule, error) {
	return SeedKnockout(params.ParticipantIDs, params.ByePolicy, params.RoundIndex)
}

// SeedKnockout pairs consecutive positions (2i, 2i+1) into a single round.
// Only that one round is produced; later rounds depend on results and are
// seeded again from the winners by whoever records them.
func SeedKnockout(ids []int, policy ByePolicy, roundIndex int) (*Schedule, error) {
	if roundIndex < 1 {
		roundIndex = 1
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidBracketSize)
	}
	if err := checkDistinct(ids); err != nil {
		return nil, err
	}

	seeded := ids
	var byes []int
	if len(ids)%2 != 0 {
		if policy != ByeLastSeed {
			return nil, fmt.Errorf("%w (found %d)", ErrInvalidBracketSize, len(ids))
		}
		seeded = ids[:len(ids)-1]
		byes = []int{ids[len(ids)-1]}
	}

	round := Round{Index: roundIndex, Pairings: make([]Pairing, 0, len(seeded)/2), Byes: byes}
	for i := 0; i+1 < len(seeded); i += 2 {
		round.Pairings = append(round.Pairings, Pairing{Home: seeded[i], Away: seeded[i+1]})
	}
	return &Schedule{Rounds: []Round{round}}, nil
}
