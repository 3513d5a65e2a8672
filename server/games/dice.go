// Package games holds the quick couch mini games: the love dice and the
// split-screen collaborative drawing round.
package games

import (
	"math/rand"
	"time"
)

// The two dice faces. Action and target combine into one instruction, e.g.
// "Kocaman Öp" + "Boynumdan".
var (
	DiceActions = []string{"Kocaman Öp", "Hafifçe Isır", "Kokla", "Masaj Yap", "Yala", "Gıdıkla"}
	DiceTargets = []string{"Boynumdan", "Dudağımdan", "Yanağımdan", "Kulağımdan", "Omzumdan", "Elimden"}
)

type DiceResult struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

type Dice struct {
	rng *rand.Rand
}

// NewDice returns a dice pair. Seed 0 seeds from the clock.
func NewDice(seed int64) *Dice {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Dice{rng: rand.New(rand.NewSource(seed))}
}

func (d *Dice) Roll() DiceResult {
	return DiceResult{
		Action: DiceActions[d.rng.Intn(len(DiceActions))],
		Target: DiceTargets[d.rng.Intn(len(DiceTargets))],
	}
}
