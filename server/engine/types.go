package engine

type PlayerID string

const (
	PlayerA PlayerID = "A" // "bottom" in the original layout, leads the first round
	PlayerB PlayerID = "B" // "top"
)

func (p PlayerID) Other() PlayerID {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

type Phase string

const (
	PhaseInit     Phase = "init"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Penalty tracks an open face-card obligation. It exists only between a
// face-card play and its resolution; a slap claim or pile collection clears it.
type Penalty struct {
	Active      bool     `json:"active"`
	CardsOwed   int      `json:"cards_owed"`
	Beneficiary PlayerID `json:"beneficiary,omitempty"`
}

// State is the read-only projection handed to callers for rendering.
type State struct {
	Phase          Phase    `json:"phase"`
	Turn           PlayerID `json:"turn"`
	HandA          int      `json:"hand_a"`
	HandB          int      `json:"hand_b"`
	Pile           []Card   `json:"pile"`
	Penalty        Penalty  `json:"penalty"`
	SlapClaimable  bool     `json:"slap_claimable"`
	PendingCollect bool     `json:"pending_collect"`
	Winner         PlayerID `json:"winner,omitempty"`
}
