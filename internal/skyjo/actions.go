package skyjo

import "github.com/Nyaru01/skyjo/internal/models"

// ActionSet enumerates the operations legal for the acting player right now,
// with the slot indices each one accepts. Clients use it to enable controls;
// bots use it so they only ever issue legal moves.
type ActionSet struct {
	CanDrawPile    bool  `json:"canDrawPile"`
	CanDrawDiscard bool  `json:"canDrawDiscard"`
	CanUndoDraw    bool  `json:"canUndoDraw"`
	CanPlayAction  bool  `json:"canPlayAction"`
	ReplaceSlots   []int `json:"replaceSlots,omitempty"`
	RevealSlots    []int `json:"revealSlots,omitempty"`
	CanDiscard     bool  `json:"canDiscard"`
	SwapPending    bool  `json:"swapPending"`
	BlackHole      bool  `json:"blackHole"`
	InitialReveal  bool  `json:"initialReveal"`
}

// ValidActions computes the ActionSet for a seat. Seats out of turn get an
// empty set, except during INITIAL_REVEAL where every seat that has not yet
// flipped may act. Lock held.
func (g *Game) ValidActions(seat int) ActionSet {
	var as ActionSet
	if seat < 0 || seat >= len(g.Players) {
		return as
	}
	if g.Phase == PhaseInitialReveal {
		if g.initialReveals[seat] < 2 {
			as.InitialReveal = true
			as.RevealSlots = g.hiddenSlots(g.Players[seat])
		}
		return as
	}
	if g.Phase != PhasePlaying && g.Phase != PhaseFinalRound {
		return as
	}
	if seat != g.CurrentPlayerIndex {
		return as
	}

	switch g.TurnPhase {
	case TurnDraw:
		as.CanDrawPile = true
		as.CanDrawDiscard = len(g.DiscardPile) > 0 &&
			!g.DiscardPile[len(g.DiscardPile)-1].IsActionCard()
	case TurnReplaceOrDiscard:
		as.ReplaceSlots = g.replaceTargets()
		as.CanDiscard = true
		as.CanPlayAction = g.DrawnCard != nil && g.DrawnCard.Special == models.SpecialSwap
	case TurnMustReplace:
		as.ReplaceSlots = g.replaceTargets()
		as.CanUndoDraw = g.drawnFromDiscard
		// A hand with no unlockable slot may discard as a fallback.
		as.CanDiscard = len(as.ReplaceSlots) == 0
	case TurnMustReveal:
		as.RevealSlots = g.hiddenSlots(g.CurrentPlayer())
	case TurnSpecialSwap:
		as.SwapPending = true
		as.ReplaceSlots = g.replaceTargets()
	case TurnResolveBlackHole:
		as.BlackHole = true
	}
	return as
}
