package main

import (
	"bizim-dunyamiz/server/engine"
)

// kentTally counts what happened during one Kent match, for the post-game
// scoreboard and the history row.
type kentTally struct {
	PlaysA    int `json:"plays_a"`
	PlaysB    int `json:"plays_b"`
	SlapsA    int `json:"slaps_a"`
	SlapsB    int `json:"slaps_b"`
	Penalties int `json:"penalties"`
}

func (t *kentTally) addPlay(p engine.PlayerID) {
	if p == engine.PlayerA {
		t.PlaysA++
	} else {
		t.PlaysB++
	}
}

func (t *kentTally) addSlap(p engine.PlayerID) {
	if p == engine.PlayerA {
		t.SlapsA++
	} else {
		t.SlapsB++
	}
}

func (t *kentTally) reset() { *t = kentTally{} }

// SlapShare is the fraction of claimed slaps that went to player A.
func (t *kentTally) SlapShare() float64 {
	total := t.SlapsA + t.SlapsB
	if total == 0 {
		return 0.5
	}
	return float64(t.SlapsA) / float64(total)
}
