package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDeckCompleteAndUnique(t *testing.T) {
	deck := NewDeck(1)
	require.Len(t, deck, 52)
	seen := map[Card]bool{}
	for _, c := range deck {
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
}

func TestNewDeckSeedReproducible(t *testing.T) {
	a := NewDeck(42)
	b := NewDeck(42)
	require.Equal(t, a, b)

	c := NewDeck(43)
	require.NotEqual(t, a, c)
}

func TestNewDeckNoPositionBias(t *testing.T) {
	// Over 5200 shuffles each card should land on top roughly 100 times
	// (sd ≈ 10). Bounds are 5 sigma wide so this never flakes in CI.
	const trials = 5200
	counts := map[Card]int{}
	for i := 1; i <= trials; i++ {
		counts[NewDeck(int64(i))[0]]++
	}
	require.Len(t, counts, 52)
	for c, n := range counts {
		require.Greater(t, n, 50, "card %s on top only %d times", c, n)
		require.Less(t, n, 150, "card %s on top %d times", c, n)
	}
}

func TestRankValues(t *testing.T) {
	require.Equal(t, 1, Ace.Value())
	require.Equal(t, 10, Ten.Value())
	require.Equal(t, 11, Jack.Value())
	require.Equal(t, 13, King.Value())
}

func TestRankPenalties(t *testing.T) {
	cases := map[Rank]int{
		Ace: 4, King: 3, Queen: 2, Jack: 1,
		Two: 0, Seven: 0, Ten: 0,
	}
	for r, want := range cases {
		require.Equal(t, want, r.Penalty(), "rank %s", r)
	}
}

func TestCardString(t *testing.T) {
	require.Equal(t, "A♠", Card{Suit: Spades, Rank: Ace}.String())
	require.Equal(t, "10♥", Card{Suit: Hearts, Rank: Ten}.String())
}
