package skyjo

import "github.com/Nyaru01/skyjo/internal/models"

// PlayActionCard activates the drawn Swap special instead of placing it. The
// action card itself goes to the discard pile and the turn moves to
// SPECIAL_ACTION_SWAP until PerformSwap resolves it. Only a Swap drawn from
// the pile can be played; one taken off the discard must replace.
func (g *Game) PlayActionCard() *RuleViolation {
	const op = "playActionCard"
	if g.TurnPhase != TurnReplaceOrDiscard || g.DrawnCard == nil {
		return wrongPhase(op, "no playable drawn card")
	}
	if g.DrawnCard.Special != models.SpecialSwap {
		return invalidTarget(op, "drawn card has no action")
	}
	card := g.DrawnCard
	g.DrawnCard = nil
	g.pendingSwapCard = card
	g.DiscardPile = append(g.DiscardPile, card)
	g.TurnPhase = TurnSpecialSwap

	g.logAction(g.CurrentPlayer().ID, string(EventPlayerSwapAction), map[string]interface{}{
		"stage": "played", "cardId": card.ID,
	})
	g.fireEvent(GameEvent{
		Type:    EventPlayerSwapAction,
		User:    &EventUser{ID: g.CurrentPlayer().ID},
		Card:    fullEventCard(card, nil),
		Payload: map[string]interface{}{"stage": "played"},
	})
	return nil
}

// PerformSwap exchanges one of the current player's slots with a slot of
// another seat, reveal state and all. Locked cards on either side cannot
// move. Both hands are re-checked for column clears and the turn ends.
func (g *Game) PerformSwap(ownIndex, targetSeat, targetIndex int) *RuleViolation {
	const op = "performSwap"
	if g.TurnPhase != TurnSpecialSwap {
		return wrongPhase(op, "no swap is pending")
	}
	if targetSeat < 0 || targetSeat >= len(g.Players) || targetSeat == g.CurrentPlayerIndex {
		return invalidTarget(op, "swap target must be another seat")
	}
	p := g.CurrentPlayer()
	t := g.Players[targetSeat]
	if ownIndex < 0 || ownIndex >= models.HandSize || targetIndex < 0 || targetIndex >= models.HandSize {
		return invalidTarget(op, "slot index out of range")
	}
	own := p.Hand[ownIndex]
	other := t.Hand[targetIndex]
	if own == nil || other == nil {
		return emptySlot(op, "swap slot is eliminated")
	}
	if own.LockCount > 0 || other.LockCount > 0 {
		return cardLocked(op, "locked cards cannot be swapped")
	}

	p.Hand[ownIndex], t.Hand[targetIndex] = other, own
	g.pendingSwapCard = nil

	g.logAction(p.ID, string(EventPlayerSwapAction), map[string]interface{}{
		"stage": "resolved", "ownSlot": ownIndex, "targetSeat": targetSeat, "targetSlot": targetIndex,
	})
	g.fireEvent(GameEvent{
		Type: EventPlayerSwapAction,
		User: &EventUser{ID: p.ID},
		Payload: map[string]interface{}{
			"stage":      "resolved",
			"ownSlot":    ownIndex,
			"targetSeat": targetSeat,
			"targetSlot": targetIndex,
			"targetUser": t.ID,
		},
	})

	g.checkElimination(p)
	g.checkElimination(t)
	g.EndTurn()
	return nil
}

// ResolveBlackHole applies a drawn black hole: the whole discard pile is
// swallowed under the draw pile face down, the black hole card itself
// becomes the new discard top, and the turn ends.
func (g *Game) ResolveBlackHole() *RuleViolation {
	const op = "resolveBlackHole"
	if g.TurnPhase != TurnResolveBlackHole || g.DrawnCard == nil {
		return wrongPhase(op, "no black hole is pending")
	}
	p := g.CurrentPlayer()
	card := g.DrawnCard
	g.DrawnCard = nil

	swallowed := len(g.DiscardPile)
	for _, c := range g.DiscardPile {
		c.Revealed = false
		c.LockCount = 0
		g.DrawPile = append(g.DrawPile, c)
	}
	card.Revealed = true
	g.DiscardPile = []*models.Card{card}

	g.logAction(p.ID, string(EventGameBlackHole), map[string]interface{}{
		"swallowed": swallowed,
	})
	g.fireEvent(GameEvent{
		Type: EventGameBlackHole,
		User: &EventUser{ID: p.ID},
		Card: fullEventCard(card, nil),
		Payload: map[string]interface{}{
			"swallowed": swallowed,
			"pileSize":  len(g.DrawPile),
		},
	})

	g.EndTurn()
	return nil
}
