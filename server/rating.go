package main

import (
	"math"

	"bizim-dunyamiz/server/engine"
	"bizim-dunyamiz/server/store"
)

// Elo is a playful head-to-head rating for the two Kent players, recomputed
// from match history so nothing needs its own table.
type Elo struct {
	A, B  float64
	K     float64
	Games int
}

func NewElo(start, k float64) Elo { return Elo{A: start, B: start, K: k} }

func (e Elo) expect() (ea, eb float64) {
	ea = 1.0 / (1.0 + math.Pow(10, (e.B-e.A)/400.0))
	return ea, 1.0 - ea
}

// UpdateFromMatch applies one finished match. The score is softened by the
// final card margin so a 40-12 rout moves ratings more than a 27-25 squeak,
// and K anneals slowly as the couple racks up games.
func (e *Elo) UpdateFromMatch(winner engine.PlayerID, handA, handB int) (dA, dB float64) {
	ea, eb := e.expect()

	margin := float64(handA - handB)
	if winner == engine.PlayerB {
		margin = -margin
	}
	if margin < 0 {
		margin = 0
	}
	sWin := 0.5 + 0.5*math.Tanh(margin/26.0)

	sA, sB := sWin, 1.0-sWin
	if winner == engine.PlayerB {
		sA, sB = sB, sA
	}

	kEff := e.K * (1.0 + 0.35*math.Tanh(margin/26.0)) * decay(e.Games)
	dA = kEff * (sA - ea)
	dB = kEff * (sB - eb)
	e.A += dA
	e.B += dB
	e.Games++
	return dA, dB
}

func decay(games int) float64 {
	return 1.0 / (1.0 + 0.01*float64(games))
}

// replayRatings folds a match list (oldest first) into fresh ratings.
func replayRatings(matches []store.KentMatch) Elo {
	e := NewElo(1000, 32)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		e.UpdateFromMatch(engine.PlayerID(m.Winner), m.HandA, m.HandB)
	}
	return e
}
