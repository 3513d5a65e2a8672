package main

import (
	"testing"

	"bizim-dunyamiz/server/engine"
	"bizim-dunyamiz/server/store"

	"github.com/stretchr/testify/require"
)

func TestEloStartsEven(t *testing.T) {
	e := NewElo(1000, 32)
	ea, eb := e.expect()
	require.InDelta(t, 0.5, ea, 1e-9)
	require.InDelta(t, 0.5, eb, 1e-9)
}

func TestEloWinnerGainsLoserLoses(t *testing.T) {
	e := NewElo(1000, 32)
	dA, dB := e.UpdateFromMatch(engine.PlayerA, 40, 12)
	require.Greater(t, dA, 0.0)
	require.Less(t, dB, 0.0)
	require.InDelta(t, 0.0, dA+dB, 1e-9)
	require.Equal(t, 1, e.Games)
}

func TestEloMarginMatters(t *testing.T) {
	rout := NewElo(1000, 32)
	dRout, _ := rout.UpdateFromMatch(engine.PlayerA, 40, 12)

	squeak := NewElo(1000, 32)
	dSqueak, _ := squeak.UpdateFromMatch(engine.PlayerA, 27, 25)

	require.Greater(t, dRout, dSqueak)
}

func TestEloUpsetMovesMore(t *testing.T) {
	e := NewElo(1000, 32)
	e.A = 1200
	e.B = 800

	favored := e
	dFav, _ := favored.UpdateFromMatch(engine.PlayerA, 30, 22)

	upset := e
	dUp, _ := upset.UpdateFromMatch(engine.PlayerB, 22, 30)
	require.Greater(t, -dUp, dFav)
	require.Less(t, upset.A, e.A)
	require.Greater(t, upset.B, e.B)
}

func TestEloKDecaysWithHistory(t *testing.T) {
	early := NewElo(1000, 32)
	dEarly, _ := early.UpdateFromMatch(engine.PlayerA, 35, 17)

	late := NewElo(1000, 32)
	late.Games = 200
	dLate, _ := late.UpdateFromMatch(engine.PlayerA, 35, 17)

	require.Greater(t, dEarly, dLate)
}

func TestReplayRatingsOldestFirst(t *testing.T) {
	// RecentKentMatches returns newest first; the replay must fold from the
	// back so history order is respected.
	matches := []store.KentMatch{
		{Winner: "B", HandA: 10, HandB: 42}, // newest
		{Winner: "A", HandA: 40, HandB: 12},
		{Winner: "A", HandA: 30, HandB: 22}, // oldest
	}
	e := replayRatings(matches)
	require.Equal(t, 3, e.Games)

	// Same matches oldest first through direct updates give the same result.
	want := NewElo(1000, 32)
	want.UpdateFromMatch(engine.PlayerA, 30, 22)
	want.UpdateFromMatch(engine.PlayerA, 40, 12)
	want.UpdateFromMatch(engine.PlayerB, 10, 42)
	require.InDelta(t, want.A, e.A, 1e-9)
	require.InDelta(t, want.B, e.B, 1e-9)
}

func TestReplayRatingsEmpty(t *testing.T) {
	e := replayRatings(nil)
	require.InDelta(t, 1000, e.A, 1e-9)
	require.InDelta(t, 1000, e.B, 1e-9)
	require.Zero(t, e.Games)
}

func TestKentTally(t *testing.T) {
	var tl kentTally
	require.InDelta(t, 0.5, tl.SlapShare(), 1e-9)

	tl.addPlay(engine.PlayerA)
	tl.addPlay(engine.PlayerA)
	tl.addPlay(engine.PlayerB)
	tl.addSlap(engine.PlayerA)
	tl.addSlap(engine.PlayerB)
	tl.addSlap(engine.PlayerB)
	tl.Penalties++

	require.Equal(t, 2, tl.PlaysA)
	require.Equal(t, 1, tl.PlaysB)
	require.InDelta(t, 1.0/3.0, tl.SlapShare(), 1e-9)

	tl.reset()
	require.Equal(t, kentTally{}, tl)
}
