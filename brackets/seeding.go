package brackets

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
)

// SeedingMode decides the order participants enter a generator in.
type SeedingMode string

const (
	// SeedingBalanced orders participants by strength, strongest first.
	SeedingBalanced SeedingMode = "balanced"
	// SeedingRandom shuffles participants.
	SeedingRandom SeedingMode = "random"
)

func ParseSeedingMode(s string) (SeedingMode, error) {
	switch SeedingMode(s) {
	case "", SeedingRandom:
		return SeedingRandom, nil
	case SeedingBalanced:
		return SeedingBalanced, nil
	default:
		return "", fmt.Errorf("unknown seeding mode '%s'", s)
	}
}

// OrderParticipants returns participant ids in generator order.
// rng is only used for SeedingRandom and may be nil for SeedingBalanced.
func OrderParticipants(participants []Participant, mode SeedingMode, rng *rand.Rand) []int {
	ordered := slices.Clone(participants)
	switch mode {
	case SeedingBalanced:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Strength > ordered[j].Strength
		})
	default:
		if rng != nil {
			rng.Shuffle(len(ordered), func(i, j int) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			})
		}
	}

	ids := make([]int, len(ordered))
	for i, p := range ordered {
		ids[i] = p.ID
	}
	return ids
}
