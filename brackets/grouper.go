package brackets

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Participant is a team or player with the strength used for balancing and seeding.
type Participant struct {
	ID       int     `json:"id"`
	Strength float64 `json:"strength"`
}

// TeamBucket is one team synthesized by the snake draft.
type TeamBucket struct {
	Index        int           `json:"index"`
	Members      []Participant `json:"members"`
	MeanStrength int           `json:"mean_strength"`
}

// Name is the display name of the bucket, e.g. "Team A (Lv.20)".
func (b TeamBucket) Name() string {
	if b.Index < 26 {
		return fmt.Sprintf("Team %c (Lv.%d)", rune('A'+b.Index), b.MeanStrength)
	}
	return fmt.Sprintf("Team %d (Lv.%d)", b.Index+1, b.MeanStrength)
}

// TotalStrength sums the strengths of the bucket members.
func (b TeamBucket) TotalStrength() float64 {
	total := 0.0
	for _, m := range b.Members {
		total += m.Strength
	}
	return total
}

// GroupBalanced splits the pool into teams of teamSize with a snake draft:
// the strongest players are dealt left to right, the next block right to left, and so on.
//
// With 8 players and 2 teams the order goes A, B, B, A, A, B, B, A.
func GroupBalanced(pool []Participant, teamSize int) ([]TeamBucket, error) {
	if teamSize < 1 {
		return nil, fmt.Errorf("%w: team size %d", ErrInvalidGroupSize, teamSize)
	}
	if len(pool) < teamSize || len(pool)%teamSize != 0 {
		return nil, fmt.Errorf("%w: %d players cannot form teams of %d", ErrInvalidGroupSize, len(pool), teamSize)
	}

	sorted := slices.Clone(pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Strength > sorted[j].Strength
	})

	numTeams := len(sorted) / teamSize
	buckets := make([]TeamBucket, numTeams)
	for i := range buckets {
		buckets[i] = TeamBucket{Index: i, Members: make([]Participant, 0, teamSize)}
	}

	for i, p := range sorted {
		slot := i % numTeams
		if (i/numTeams)%2 != 0 {
			slot = numTeams - 1 - slot
		}
		buckets[slot].Members = append(buckets[slot].Members, p)
	}

	for i := range buckets {
		buckets[i].MeanStrength = int(math.Round(buckets[i].TotalStrength() / float64(len(buckets[i].Members))))
	}
	return buckets, nil
}
