package ai

import (
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// RevealInitial performs the agent's two-card initial flip for a seat.
// Caller holds the game lock.
func (a *Agent) RevealInitial(g *skyjo.Game, seat int) *skyjo.RuleViolation {
	i, j := a.ChooseInitialReveal(g.Players[seat])
	if i == -1 || j == -1 {
		return nil
	}
	return g.RevealInitialCards(seat, i, j)
}

// TakeTurn drives a complete turn for the current seat, one decision per
// engine transition, until the turn passes or the round ends. Caller holds
// the game lock. Every step is drawn from ValidActions, so a returned
// violation indicates an engine defect rather than a bad decision.
func (a *Agent) TakeTurn(g *skyjo.Game) *skyjo.RuleViolation {
	seat := g.CurrentPlayerIndex
	turn := g.TurnID

	// A turn is a short chain of transitions; the bound only guards
	// against a stuck state machine.
	for step := 0; step < 8; step++ {
		if g.Phase != skyjo.PhasePlaying && g.Phase != skyjo.PhaseFinalRound {
			return nil
		}
		if g.CurrentPlayerIndex != seat || g.TurnID != turn {
			return nil
		}

		switch g.TurnPhase {
		case skyjo.TurnDraw:
			if a.DecideDrawSource(g, seat) == DrawSourceDiscard {
				if v := g.DrawFromDiscard(); v != nil {
					return v
				}
			} else if v := g.DrawFromPile(); v != nil {
				return v
			}

		case skyjo.TurnReplaceOrDiscard:
			if g.DrawnCard != nil && g.DrawnCard.Special == models.SpecialSwap && a.shouldPlaySwap(g, seat) {
				if v := g.PlayActionCard(); v != nil {
					return v
				}
				continue
			}
			if v := a.applyCardAction(g, seat); v != nil {
				return v
			}

		case skyjo.TurnMustReplace:
			if v := a.applyCardAction(g, seat); v != nil {
				return v
			}

		case skyjo.TurnMustReveal:
			slot := a.pickHiddenSlot(g.Players[seat], -1)
			if v := g.RevealCard(slot); v != nil {
				return v
			}

		case skyjo.TurnSpecialSwap:
			sw := a.DecideSwap(g, seat)
			if sw.OwnIndex == -1 || sw.TargetSeat == -1 {
				// No legal exchange exists; pass the turn.
				g.EndTurn()
				return nil
			}
			if v := g.PerformSwap(sw.OwnIndex, sw.TargetSeat, sw.TargetIndex); v != nil {
				return v
			}

		case skyjo.TurnResolveBlackHole:
			if v := g.ResolveBlackHole(); v != nil {
				return v
			}
		}
	}
	return nil
}

func (a *Agent) applyCardAction(g *skyjo.Game, seat int) *skyjo.RuleViolation {
	act := a.DecideCardAction(g, seat)
	switch act.Kind {
	case ActionReplace:
		return g.ReplaceCard(act.Index)
	case ActionDiscardAndReveal:
		return g.DiscardAndReveal(act.Index)
	default:
		return g.DiscardDrawn()
	}
}
