package engine

// Game is the Kent state machine for one two-player session. Every card is in
// exactly one of HandA, HandB or Pile at all times. Methods never return
// errors: an illegal action (wrong phase, wrong turn, slap pending) is a pure
// no-op, because the UI disables those controls and a second tap must not
// corrupt state.
type Game struct {
	Phase          Phase
	Turn           PlayerID
	HandA          []Card // front = next card to play, back = most recently won
	HandB          []Card
	Pile           []Card // face-up shared pile, most recent last
	Penalty        Penalty
	SlapClaimable  bool
	PendingCollect bool // penalty exhausted; waiting for CollectPile
	Winner         PlayerID
}

func New() *Game { return &Game{Phase: PhaseInit} }

// StartNewGame deals a fresh shuffled deck 26/26 and enters Playing. It is
// always legal, from any phase, and discards all in-flight state.
func (g *Game) StartNewGame(seed int64) {
	deck := NewDeck(seed)
	g.HandA = append([]Card(nil), deck[:26]...)
	g.HandB = append([]Card(nil), deck[26:]...)
	g.Pile = nil
	g.Turn = PlayerA
	g.Phase = PhasePlaying
	g.Penalty = Penalty{}
	g.SlapClaimable = false
	g.PendingCollect = false
	g.Winner = ""
}

func (g *Game) hand(p PlayerID) *[]Card {
	if p == PlayerA {
		return &g.HandA
	}
	return &g.HandB
}

// PlayCard moves the front card of actor's hand onto the pile and resolves the
// play. Order matters: the slap check runs first and, when it fires, freezes
// all penalty bookkeeping until the pile is claimed. An empty hand on one's
// turn is an immediate loss, not an error.
func (g *Game) PlayCard(actor PlayerID) {
	if g.Phase != PhasePlaying || g.SlapClaimable || g.PendingCollect || g.Turn != actor {
		return
	}
	hand := g.hand(actor)
	if len(*hand) == 0 {
		g.Phase = PhaseGameOver
		g.Winner = actor.Other()
		return
	}
	card := (*hand)[0]
	*hand = (*hand)[1:]
	g.Pile = append(g.Pile, card)

	if slapEligible(g.Pile) {
		// Turn does not change and no penalty is opened or decremented,
		// even for a face card. Claiming the slap clears the penalty.
		g.SlapClaimable = true
		return
	}

	if pv := card.Rank.Penalty(); pv > 0 {
		// Opening or countering: the obligation restarts against the
		// new beneficiary either way.
		g.Penalty = Penalty{Active: true, CardsOwed: pv, Beneficiary: actor}
		g.Turn = actor.Other()
		return
	}

	if g.Penalty.Active {
		// Plain card while owing: the payer keeps playing until the
		// debt is settled.
		g.Penalty.CardsOwed--
		if g.Penalty.CardsOwed <= 0 {
			g.PendingCollect = true
		}
		return
	}

	g.Turn = actor.Other()
}

// ClaimSlap awards the pile to actor. Either player may claim, turn
// notwithstanding. A claim with no slap available is a no-op.
func (g *Game) ClaimSlap(actor PlayerID) {
	if g.Phase != PhasePlaying || !g.SlapClaimable {
		return
	}
	g.collect(actor)
}

// CollectPile settles an exhausted penalty: the beneficiary takes the pile and
// leads the next round. The caller owns any presentation delay before invoking
// it; until then the game stays frozen.
func (g *Game) CollectPile() {
	if g.Phase != PhasePlaying || !g.PendingCollect {
		return
	}
	g.collect(g.Penalty.Beneficiary)
}

func (g *Game) collect(winner PlayerID) {
	h := g.hand(winner)
	*h = append(*h, g.Pile...)
	g.Pile = nil
	g.Penalty = Penalty{}
	g.SlapClaimable = false
	g.PendingCollect = false
	g.Turn = winner
}

// slapEligible reports whether the pile's top cards form a claimable match:
// pair, consecutive ranks, two sub-ten ranks summing to ten, or a sandwich
// (top rank repeated directly under the card below it).
func slapEligible(pile []Card) bool {
	n := len(pile)
	if n < 2 {
		return false
	}
	top, under := pile[n-1], pile[n-2]
	if top.Rank == under.Rank {
		return true
	}
	d := top.Rank.Value() - under.Rank.Value()
	if d == 1 || d == -1 {
		return true
	}
	if top.Rank.Value() < 10 && under.Rank.Value() < 10 && top.Rank.Value()+under.Rank.Value() == 10 {
		return true
	}
	if n >= 3 && pile[n-3].Rank == top.Rank {
		return true
	}
	return false
}

// Snapshot returns the render projection of the current state. The pile is
// copied so callers can hold it across further moves.
func (g *Game) Snapshot() State {
	return State{
		Phase:          g.Phase,
		Turn:           g.Turn,
		HandA:          len(g.HandA),
		HandB:          len(g.HandB),
		Pile:           append([]Card(nil), g.Pile...),
		Penalty:        g.Penalty,
		SlapClaimable:  g.SlapClaimable,
		PendingCollect: g.PendingCollect,
		Winner:         g.Winner,
	}
}
