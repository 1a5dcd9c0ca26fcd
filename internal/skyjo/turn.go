package skyjo

import (
	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
)

// RevealInitialCards flips two distinct hidden slots for a seat during
// INITIAL_REVEAL. Once every seat has flipped two cards the round enters
// PLAYING and the starting player is the seat with the highest visible pair
// sum (ties broken by seat order).
func (g *Game) RevealInitialCards(seat, i, j int) *RuleViolation {
	const op = "revealInitialCards"
	if g.Phase != PhaseInitialReveal {
		return wrongPhase(op, "round is not in the initial reveal")
	}
	if seat < 0 || seat >= len(g.Players) {
		return invalidTarget(op, "unknown seat")
	}
	if g.initialReveals[seat] >= 2 {
		return wrongPhase(op, "seat already revealed its two cards")
	}
	if i == j {
		return invalidTarget(op, "slots must be distinct")
	}
	p := g.Players[seat]
	for _, idx := range []int{i, j} {
		if idx < 0 || idx >= models.HandSize {
			return invalidTarget(op, "slot index out of range")
		}
		if p.Hand[idx] == nil {
			return emptySlot(op, "slot is eliminated")
		}
		if p.Hand[idx].Revealed {
			return invalidTarget(op, "slot is already face up")
		}
	}

	g.revealSlot(p, i)
	g.revealSlot(p, j)
	g.initialReveals[seat] = 2
	g.logAction(p.ID, string(EventPlayerInitialFlip), map[string]interface{}{"slots": []int{i, j}})
	g.fireEvent(GameEvent{
		Type:    EventPlayerInitialFlip,
		User:    &EventUser{ID: p.ID},
		Payload: map[string]interface{}{"slots": []int{i, j}},
	})

	for _, n := range g.initialReveals {
		if n < 2 {
			return nil
		}
	}
	g.beginPlaying()
	return nil
}

// beginPlaying transitions INITIAL_REVEAL -> PLAYING and picks the opener.
func (g *Game) beginPlaying() {
	best, bestSum := 0, -1<<30
	for i, p := range g.Players {
		sum := 0
		for _, c := range p.Hand {
			if c != nil && c.Revealed {
				sum += c.Value
			}
		}
		if sum > bestSum {
			best, bestSum = i, sum
		}
	}
	g.Phase = PhasePlaying
	g.TurnPhase = TurnDraw
	g.CurrentPlayerIndex = best
	g.TurnID = 1
	g.logAction(uuid.Nil, "game_playing_start", map[string]interface{}{"startingSeat": best})
	g.broadcastPlayerTurn()
}

// DrawFromPile pops the top draw-pile card into the outstanding drawn card.
// An exhausted draw pile is replenished by reshuffling the discard pile
// minus its top card. A cursed skull forces MUST_REPLACE; a black hole moves
// the turn to RESOLVE_BLACK_HOLE; anything else allows replace-or-discard.
func (g *Game) DrawFromPile() *RuleViolation {
	const op = "drawFromPile"
	if v := g.requireTurn(op, TurnDraw); v != nil {
		return v
	}
	if len(g.DrawPile) == 0 {
		g.reshuffleDiscardIntoDraw()
	}
	card := g.popDraw()
	if card == nil {
		// Both piles exhausted; the round cannot continue.
		g.finishRound()
		return nil
	}
	card.Revealed = true
	g.DrawnCard = card
	g.drawnFromDiscard = false

	switch {
	case card.Special == models.SpecialBlackHole:
		g.TurnPhase = TurnResolveBlackHole
	case card.IsCursed():
		g.TurnPhase = TurnMustReplace
	default:
		g.TurnPhase = TurnReplaceOrDiscard
	}

	g.commit(ActionDrawPile, g.CurrentPlayer().ID, -1)
	g.logAction(g.CurrentPlayer().ID, string(EventPlayerDraw), map[string]interface{}{"source": "pile", "cardId": card.ID})
	g.fireEvent(GameEvent{
		Type:   EventPlayerDraw,
		User:   &EventUser{ID: g.CurrentPlayer().ID},
		Card:   &EventCard{ID: card.ID},
		Action: g.LastAction,
		Payload: map[string]interface{}{
			"source":    "pile",
			"pileSize":  len(g.DrawPile),
			"turnPhase": string(g.TurnPhase),
		},
	})
	g.fireEventToPlayer(g.CurrentPlayer().ID, GameEvent{
		Type: EventPrivateDraw,
		Card: fullEventCard(card, nil),
	})
	return nil
}

// DrawFromDiscard takes the visible discard top as the drawn card. A card
// taken from the discard must replace a hand card; it cannot go straight
// back, though UndoDrawDiscard can return it before committing.
func (g *Game) DrawFromDiscard() *RuleViolation {
	const op = "drawFromDiscard"
	if v := g.requireTurn(op, TurnDraw); v != nil {
		return v
	}
	if len(g.DiscardPile) == 0 {
		return emptySlot(op, "discard pile is empty")
	}
	card := g.DiscardPile[len(g.DiscardPile)-1]
	if card.IsActionCard() {
		return invalidTarget(op, "action cards cannot be taken from the discard")
	}
	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	g.DrawnCard = card
	g.drawnFromDiscard = true
	g.TurnPhase = TurnMustReplace

	g.commit(ActionDrawDiscard, g.CurrentPlayer().ID, -1)
	g.logAction(g.CurrentPlayer().ID, string(EventPlayerDraw), map[string]interface{}{"source": "discard", "cardId": card.ID})
	g.fireEvent(GameEvent{
		Type:   EventPlayerDraw,
		User:   &EventUser{ID: g.CurrentPlayer().ID},
		Card:   fullEventCard(card, nil),
		Action: g.LastAction,
		Payload: map[string]interface{}{
			"source":      "discard",
			"discardSize": len(g.DiscardPile),
		},
	})
	return nil
}

// UndoDrawDiscard returns a discard-pile draw before it has been committed
// to a replacement, restoring the DRAW turn phase.
func (g *Game) UndoDrawDiscard() *RuleViolation {
	const op = "undoDrawDiscard"
	if g.TurnPhase != TurnMustReplace || !g.drawnFromDiscard || g.DrawnCard == nil {
		return wrongPhase(op, "no discard draw to undo")
	}
	card := g.DrawnCard
	g.DrawnCard = nil
	g.drawnFromDiscard = false
	g.DiscardPile = append(g.DiscardPile, card)
	g.TurnPhase = TurnDraw

	g.commit(ActionUndoDrawDiscard, g.CurrentPlayer().ID, -1)
	g.logAction(g.CurrentPlayer().ID, string(EventPlayerUndoDraw), map[string]interface{}{"cardId": card.ID})
	g.fireEvent(GameEvent{
		Type:   EventPlayerUndoDraw,
		User:   &EventUser{ID: g.CurrentPlayer().ID},
		Card:   fullEventCard(card, nil),
		Action: g.LastAction,
	})
	return nil
}

// ReplaceCard swaps the outstanding drawn card with the hand slot at index;
// the displaced card lands face up on the discard pile. Legal from both
// REPLACE_OR_DISCARD and MUST_REPLACE.
func (g *Game) ReplaceCard(index int) *RuleViolation {
	const op = "replaceCard"
	if g.Phase != PhasePlaying && g.Phase != PhaseFinalRound {
		return wrongPhase(op, "round is not in play")
	}
	if g.DrawnCard == nil || (g.TurnPhase != TurnReplaceOrDiscard && g.TurnPhase != TurnMustReplace) {
		return wrongPhase(op, "no drawn card to place")
	}
	p := g.CurrentPlayer()
	if index < 0 || index >= models.HandSize {
		return invalidTarget(op, "slot index out of range")
	}
	target := p.Hand[index]
	if target == nil {
		return emptySlot(op, "slot is eliminated")
	}
	if target.LockCount > 0 {
		return cardLocked(op, "slot is locked by a cursed skull")
	}

	drawn := g.DrawnCard
	g.DrawnCard = nil
	g.drawnFromDiscard = false
	p.Hand[index] = drawn
	if drawn.IsCursed() {
		drawn.LockCount = models.LockTurns
	}
	target.Revealed = true
	target.LockCount = 0
	g.DiscardPile = append(g.DiscardPile, target)

	g.commit(ActionReplaceCard, p.ID, index)
	g.logAction(p.ID, string(EventPlayerReplace), map[string]interface{}{
		"slot": index, "placedId": drawn.ID, "discardedId": target.ID,
	})
	idx := index
	g.fireEvent(GameEvent{
		Type:   EventPlayerReplace,
		User:   &EventUser{ID: p.ID},
		Card:   fullEventCard(target, &idx),
		Action: g.LastAction,
	})

	g.checkElimination(p)
	g.EndTurn()
	return nil
}

// DiscardDrawn pushes the drawn card onto the discard pile. Only legal when
// the draw came from the pile and was not a cursed skull; the player must
// then reveal a hidden slot (MUST_REVEAL). If no hidden slot remains the
// turn ends immediately.
func (g *Game) DiscardDrawn() *RuleViolation {
	const op = "discardDrawn"
	if g.TurnPhase != TurnReplaceOrDiscard || g.DrawnCard == nil {
		if g.TurnPhase == TurnMustReplace && g.DrawnCard != nil && len(g.replaceTargets()) == 0 {
			// Every slot is locked or eliminated; discarding is the only out.
			return g.forceDiscardDrawn()
		}
		return wrongPhase(op, "drawn card must be placed, not discarded")
	}
	p := g.CurrentPlayer()
	card := g.DrawnCard
	g.DrawnCard = nil
	g.DiscardPile = append(g.DiscardPile, card)

	g.commit(ActionDiscardDrawn, p.ID, -1)
	g.logAction(p.ID, string(EventPlayerDiscard), map[string]interface{}{"cardId": card.ID})
	g.fireEvent(GameEvent{
		Type:   EventPlayerDiscard,
		User:   &EventUser{ID: p.ID},
		Card:   fullEventCard(card, nil),
		Action: g.LastAction,
	})

	if len(g.hiddenSlots(p)) == 0 {
		g.EndTurn()
		return nil
	}
	g.TurnPhase = TurnMustReveal
	return nil
}

// forceDiscardDrawn is the escape hatch for a mandatory replacement with no
// legal target. Lock held.
func (g *Game) forceDiscardDrawn() *RuleViolation {
	p := g.CurrentPlayer()
	card := g.DrawnCard
	g.DrawnCard = nil
	g.drawnFromDiscard = false
	g.DiscardPile = append(g.DiscardPile, card)
	g.commit(ActionDiscardDrawn, p.ID, -1)
	g.logAction(p.ID, string(EventPlayerDiscard), map[string]interface{}{"cardId": card.ID, "forced": true})
	g.fireEvent(GameEvent{
		Type:   EventPlayerDiscard,
		User:   &EventUser{ID: p.ID},
		Card:   fullEventCard(card, nil),
		Action: g.LastAction,
	})
	g.EndTurn()
	return nil
}

// RevealCard flips the hidden slot at index after a discard (MUST_REVEAL).
func (g *Game) RevealCard(index int) *RuleViolation {
	const op = "revealCard"
	if g.TurnPhase != TurnMustReveal {
		return wrongPhase(op, "no reveal is pending")
	}
	p := g.CurrentPlayer()
	if index < 0 || index >= models.HandSize {
		return invalidTarget(op, "slot index out of range")
	}
	target := p.Hand[index]
	if target == nil {
		return emptySlot(op, "slot is eliminated")
	}
	if target.Revealed {
		return invalidTarget(op, "slot is already face up")
	}

	g.revealSlot(p, index)
	g.commit(ActionDiscardAndReveal, p.ID, index)
	g.logAction(p.ID, string(EventPlayerReveal), map[string]interface{}{"slot": index, "cardId": target.ID})
	idx := index
	g.fireEvent(GameEvent{
		Type:   EventPlayerReveal,
		User:   &EventUser{ID: p.ID},
		Card:   fullEventCard(target, &idx),
		Action: g.LastAction,
	})

	g.checkElimination(p)
	g.EndTurn()
	return nil
}

// DiscardAndReveal is the one-shot form of DiscardDrawn + RevealCard.
func (g *Game) DiscardAndReveal(index int) *RuleViolation {
	const op = "discardAndReveal"
	if g.TurnPhase != TurnReplaceOrDiscard || g.DrawnCard == nil {
		return wrongPhase(op, "drawn card must be placed, not discarded")
	}
	p := g.CurrentPlayer()
	if index < 0 || index >= models.HandSize {
		return invalidTarget(op, "slot index out of range")
	}
	target := p.Hand[index]
	if target == nil {
		return emptySlot(op, "slot is eliminated")
	}
	if target.Revealed {
		return invalidTarget(op, "slot is already face up")
	}
	if v := g.DiscardDrawn(); v != nil {
		return v
	}
	if g.TurnPhase != TurnMustReveal {
		// DiscardDrawn ended the turn because nothing was hidden.
		return nil
	}
	return g.RevealCard(index)
}

// EndTurn finalizes the current player's turn: final-round bookkeeping,
// cursed-skull lock decay for the next player, and the FINISHED transition.
// Engine operations call it themselves; rooms call it directly only to
// force progress past a removed player.
func (g *Game) EndTurn() {
	if g.Phase == PhaseFinished || g.Phase == PhaseRevealingChests {
		return
	}
	endingSeat := g.CurrentPlayerIndex
	ending := g.Players[endingSeat]

	if g.Phase == PhaseFinalRound && endingSeat != g.FinisherIndex {
		g.finalTurnsLeft--
		if g.finalTurnsLeft <= 0 {
			g.finishRound()
			return
		}
	}

	// The first seat to go fully face up triggers the final round; everyone
	// else gets exactly one more turn.
	if g.Phase == PhasePlaying && ending.AllRevealed() {
		g.Phase = PhaseFinalRound
		g.FinisherIndex = endingSeat
		g.finalTurnsLeft = g.activePlayersExcept(endingSeat)
		g.logAction(ending.ID, string(EventGameFinalRound), nil)
		g.fireEvent(GameEvent{
			Type: EventGameFinalRound,
			User: &EventUser{ID: ending.ID},
		})
		if g.finalTurnsLeft == 0 {
			g.finishRound()
			return
		}
	}

	var next int
	if g.Phase == PhaseFinalRound {
		next = g.nextFinalRoundSeat(endingSeat)
	} else {
		next = g.nextActiveSeat(endingSeat)
	}
	if next == -1 {
		g.finishRound()
		return
	}
	g.CurrentPlayerIndex = next
	g.TurnID++
	g.TurnPhase = TurnDraw
	g.DrawnCard = nil
	g.drawnFromDiscard = false
	g.pendingSwapCard = nil
	g.tickLocks(g.Players[next])
	g.broadcastPlayerTurn()
}

// nextActiveSeat finds the next seat that is connected (bots always are) and
// still owns at least one slot. Returns -1 when nobody qualifies.
func (g *Game) nextActiveSeat(from int) int {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		p := g.Players[i]
		if (p.Connected || p.IsBot) && p.RemainingSlots() > 0 {
			return i
		}
	}
	return -1
}

// nextFinalRoundSeat picks the next seat during FINAL_ROUND. The finisher
// never acts again, so control reaching their seat ends the round (-1), and
// a seat that cannot act forfeits the one turn it was owed.
func (g *Game) nextFinalRoundSeat(from int) int {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if i == g.FinisherIndex {
			return -1
		}
		p := g.Players[i]
		if (p.Connected || p.IsBot) && p.RemainingSlots() > 0 {
			return i
		}
		g.finalTurnsLeft--
		if g.finalTurnsLeft <= 0 {
			return -1
		}
	}
	return -1
}

// activePlayersExcept counts seats still in the running, excluding one.
func (g *Game) activePlayersExcept(seat int) int {
	n := 0
	for i, p := range g.Players {
		if i == seat {
			continue
		}
		if (p.Connected || p.IsBot) && p.RemainingSlots() > 0 {
			n++
		}
	}
	return n
}

// tickLocks decays cursed-skull locks at the start of the owner's turn.
func (g *Game) tickLocks(p *models.Player) {
	for _, c := range p.Hand {
		if c != nil && c.LockCount > 0 {
			c.LockCount--
		}
	}
}

// revealSlot flips a slot face up, applying the cursed-skull lock.
func (g *Game) revealSlot(p *models.Player, index int) {
	c := p.Hand[index]
	c.Revealed = true
	if c.IsCursed() {
		c.LockCount = models.LockTurns
	}
}

// reshuffleDiscardIntoDraw rebuilds the draw pile from the discard pile,
// leaving the discard top in place.
func (g *Game) reshuffleDiscardIntoDraw() {
	if len(g.DiscardPile) <= 1 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	recycled := g.DiscardPile[:len(g.DiscardPile)-1]
	for _, c := range recycled {
		c.Revealed = false
		c.LockCount = 0
	}
	g.DrawPile = append(g.DrawPile, recycled...)
	g.DiscardPile = []*models.Card{top}
	g.rng.Shuffle(len(g.DrawPile), func(i, j int) {
		g.DrawPile[i], g.DrawPile[j] = g.DrawPile[j], g.DrawPile[i]
	})
	g.logAction(uuid.Nil, string(EventGameReshuffle), map[string]interface{}{"pileSize": len(g.DrawPile)})
	g.fireEvent(GameEvent{
		Type:    EventGameReshuffle,
		Payload: map[string]interface{}{"pileSize": len(g.DrawPile)},
	})
}

// hiddenSlots lists the face-down slot indices of a hand.
func (g *Game) hiddenSlots(p *models.Player) []int {
	var out []int
	for i, c := range p.Hand {
		if c != nil && !c.Revealed {
			out = append(out, i)
		}
	}
	return out
}

// replaceTargets lists legal replacement slot indices for the current player.
func (g *Game) replaceTargets() []int {
	p := g.CurrentPlayer()
	var out []int
	for i, c := range p.Hand {
		if c != nil && c.LockCount == 0 {
			out = append(out, i)
		}
	}
	return out
}

// requireTurn verifies the round is in play and the turn phase matches.
func (g *Game) requireTurn(op string, want TurnPhase) *RuleViolation {
	if g.Phase != PhasePlaying && g.Phase != PhaseFinalRound {
		return wrongPhase(op, "round is not in play")
	}
	if g.TurnPhase != want {
		return wrongPhase(op, "turn is in phase "+string(g.TurnPhase))
	}
	return nil
}

// fullEventCard builds an EventCard with all details revealed.
func fullEventCard(c *models.Card, idx *int) *EventCard {
	v := c.Value
	return &EventCard{ID: c.ID, Value: &v, Special: c.Special, Idx: idx}
}
