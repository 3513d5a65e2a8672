package engine

import (
	"fmt"
	"math/rand"
	"time"
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

var rankValues = map[Rank]int{
	Ace: 1, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
	Eight: 8, Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13,
}

// Value is the ordinal rank value (A=1 .. K=13). It is an ordering, not a
// point score.
func (r Rank) Value() int { return rankValues[r] }

// Penalty is the number of plain cards the opponent owes when this rank is
// played: A=4, K=3, Q=2, J=1, anything else 0.
func (r Rank) Penalty() int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	}
	return 0
}

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

var suitGlyphs = map[Suit]string{Hearts: "♥", Diamonds: "♦", Clubs: "♣", Spades: "♠"}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, suitGlyphs[c.Suit])
}

// NewDeck returns the 52-card deck in a uniformly random order. Seed 0 means
// "seed from the clock"; any other seed gives a reproducible shuffle.
func NewDeck(seed int64) []Card {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, rk := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: rk})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
