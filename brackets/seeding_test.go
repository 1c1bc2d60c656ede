package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderParticipants_Balanced(t *testing.T) {
	ps := []Participant{{ID: 1, Strength: 2}, {ID: 2, Strength: 9}, {ID: 3, Strength: 5}, {ID: 4, Strength: 9}}
	assert.Equal(t, []int{2, 4, 3, 1}, OrderParticipants(ps, SeedingBalanced, nil))
}

func TestOrderParticipants_RandomIsSeededPermutation(t *testing.T) {
	ps := pool(1, 2, 3, 4, 5, 6, 7, 8)

	first := OrderParticipants(ps, SeedingRandom, rand.New(rand.NewSource(42)))
	second := OrderParticipants(ps, SeedingRandom, rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, seq(8), first)
	assert.Equal(t, pool(1, 2, 3, 4, 5, 6, 7, 8), ps)
}

func TestOrderParticipants_RandomWithoutSourceKeepsOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, OrderParticipants(pool(3, 1, 2), SeedingRandom, nil))
}

func TestParseSeedingMode(t *testing.T) {
	m, err := ParseSeedingMode("balanced")
	require.NoError(t, err)
	assert.Equal(t, SeedingBalanced, m)

	m, err = ParseSeedingMode("")
	require.NoError(t, err)
	assert.Equal(t, SeedingRandom, m)

	_, err = ParseSeedingMode("elo")
	assert.Error(t, err)
}
