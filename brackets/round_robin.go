package brackets

import (
	"fmt"
	"slices"
)

// Legs is the number of times every pair of participants meets.
type Legs int

const (
	SingleLeg Legs = 1
	DoubleLeg Legs = 2
)

type RoundRobinGenerator struct {
	legs Legs
}

func NewRoundRobinGenerator(legs Legs) BracketGenerator {
	if legs != DoubleLeg {
		legs = SingleLeg
	}
	return &RoundRobinGenerator{legs: legs}
}

func (g *RoundRobinGenerator) GetName() string {
	if g.legs == DoubleLeg {
		return "DoubleRoundRobin"
	}
	return "RoundRobin"
}

func (g *RoundRobinGenerator) GenerateBracket(params GenerateBracketParams) (*Schedule, error) {
	return GenerateRoundRobin(params.ParticipantIDs, g.legs)
}

// seat is a position in the Berger table. A bye seat pairs with nobody.
type seat struct {
	id  int
	bye bool
}

// GenerateRoundRobin builds a round-robin schedule with the circle (Berger) method.
// Seat 0 stays fixed while the others rotate, so every pair meets exactly once per leg.
// An odd participant count gets a bye seat, and whoever faces it sits the round out.
// The second leg repeats the first with home and away swapped.
func GenerateRoundRobin(ids []int, legs Legs) (*Schedule, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrInvalidParticipantCount, len(ids))
	}
	if err := checkDistinct(ids); err != nil {
		return nil, err
	}

	ring := make([]seat, 0, len(ids)+1)
	for _, id := range ids {
		ring = append(ring, seat{id: id})
	}
	if len(ring)%2 != 0 {
		ring = append(ring, seat{bye: true})
	}

	m := len(ring)
	half := m / 2
	numRounds := m - 1

	rounds := make([]Round, 0, numRounds*int(legs))
	for r := 0; r < numRounds; r++ {
		round := Round{Index: r + 1, Pairings: make([]Pairing, 0, half)}
		for i := 0; i < half; i++ {
			home, away := ring[i], ring[m-1-i]
			switch {
			case home.bye:
				round.Byes = append(round.Byes, away.id)
			case away.bye:
				round.Byes = append(round.Byes, home.id)
			default:
				round.Pairings = append(round.Pairings, Pairing{Home: home.id, Away: away.id})
			}
		}
		rounds = append(rounds, round)

		// последний элемент переезжает на позицию 1, позиция 0 неподвижна
		last := ring[m-1]
		copy(ring[2:], ring[1:m-1])
		ring[1] = last
	}

	if legs == DoubleLeg {
		for r := 0; r < numRounds; r++ {
			first := rounds[r]
			mirrored := Round{
				Index:    numRounds + r + 1,
				Pairings: make([]Pairing, 0, len(first.Pairings)),
				Byes:     slices.Clone(first.Byes),
			}
			for _, p := range first.Pairings {
				mirrored.Pairings = append(mirrored.Pairings, p.Reversed())
			}
			rounds = append(rounds, mirrored)
		}
	}

	return &Schedule{Rounds: rounds}, nil
}
