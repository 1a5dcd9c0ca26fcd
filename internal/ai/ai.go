// Package ai implements the heuristic computer opponent. Decisions are
// computed from the same obfuscated view a human sees plus an explicit
// opponent memory; applying a decision is a separate engine call, and every
// decision is drawn from the engine's valid-action set so the agent can
// never trigger a rule violation.
package ai

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// DrawSource is the agent's choice of where to draw from.
type DrawSource string

const (
	DrawSourcePile    DrawSource = "PILE"
	DrawSourceDiscard DrawSource = "DISCARD_PILE"
)

// CardActionKind is what the agent does with a drawn card.
type CardActionKind string

const (
	ActionReplace          CardActionKind = "REPLACE"
	ActionDiscardAndReveal CardActionKind = "DISCARD_AND_REVEAL"
	ActionDiscardDrawn     CardActionKind = "DISCARD_DRAWN"
)

// CardAction pairs a kind with its hand slot; Index is -1 for a plain
// discard.
type CardAction struct {
	Kind  CardActionKind
	Index int
}

// SwapChoice resolves a pending swap special action.
type SwapChoice struct {
	OwnIndex    int
	TargetSeat  int
	TargetIndex int
}

// Agent is one seat's decision engine. Deterministic given its seed except
// where tie-breaks are explicitly randomized.
type Agent struct {
	Difficulty Difficulty
	Memory     *OpponentMemory
	rng        *rand.Rand
}

// NewAgent builds an agent for one session. Seed zero is fine for play;
// tests pass a fixed seed for reproducible tie-breaks.
func NewAgent(d Difficulty, seed int64) *Agent {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Agent{
		Difficulty: d,
		Memory:     NewOpponentMemory(),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// ChooseInitialReveal picks the two slots to flip during the initial reveal.
// Higher tiers take corners for better future column geometry.
func (a *Agent) ChooseInitialReveal(p *models.Player) (int, int) {
	first := a.pickHiddenSlot(p, -1)
	second := a.pickHiddenSlot(p, first)
	return first, second
}

// DecideDrawSource weighs the visible discard top against the blind pile.
func (a *Agent) DecideDrawSource(g *skyjo.Game, seat int) DrawSource {
	as := g.ValidActions(seat)
	if !as.CanDrawDiscard {
		return DrawSourcePile
	}
	t := a.Difficulty.tuning()
	p := g.Players[seat]
	top := g.DiscardPile[len(g.DiscardPile)-1]
	if top.IsCursed() {
		return DrawSourcePile
	}
	v := top.MatchValue()

	// Taking from the discard forces a replacement, so only commit when a
	// destination exists.
	if len(a.replaceCandidates(g, seat)) == 0 {
		return DrawSourcePile
	}

	if slot, ok := columnCompletionSlot(p, v, false); ok && slot >= 0 {
		return DrawSourceDiscard
	}
	if v <= t.discardTakeMax {
		return DrawSourceDiscard
	}
	if t.blockOpponents && a.WouldHelpOpponent(g, seat, v) {
		if v <= 4 || t.sacrificeToBlock {
			return DrawSourceDiscard
		}
	}
	return DrawSourcePile
}

// DecideCardAction chooses what to do with the outstanding drawn card. The
// returned action is always legal for the current turn phase.
func (a *Agent) DecideCardAction(g *skyjo.Game, seat int) CardAction {
	t := a.Difficulty.tuning()
	p := g.Players[seat]
	drawn := g.DrawnCard
	as := g.ValidActions(seat)
	candidates := as.ReplaceSlots

	if len(candidates) == 0 {
		// Locked-out hand; the engine accepts the fallback discard.
		return CardAction{Kind: ActionDiscardDrawn, Index: -1}
	}

	if drawn.IsCursed() {
		return CardAction{Kind: ActionReplace, Index: a.cursedTarget(p, candidates)}
	}
	v := drawn.MatchValue()

	// Column completion first, but never for values that cost more to clear
	// than they save.
	if slot, ok := columnCompletionSlot(p, v, false); ok && v >= MinValueForColumnElimination {
		if containsSlot(candidates, slot) && !isNoOpReplace(p, slot, v) && !sacrificesGoodCard(p, slot) {
			return CardAction{Kind: ActionReplace, Index: slot}
		}
	}

	mustReplace := !as.CanDiscard
	hidden := hiddenSlots(p)

	switch {
	case v <= 0:
		if idx, val, ok := highestRevealed(p, candidates); ok && val-v >= t.excellentMargin {
			return CardAction{Kind: ActionReplace, Index: idx}
		}
		if !mustReplace && len(hidden) > 0 {
			return CardAction{Kind: ActionDiscardAndReveal, Index: a.pickHiddenSlot(p, -1)}
		}
	case v <= 4:
		if idx, val, ok := highestRevealed(p, candidates); ok && val-v >= t.goodMargin {
			return CardAction{Kind: ActionReplace, Index: idx}
		}
		if !mustReplace && len(hidden) > 0 {
			return CardAction{Kind: ActionDiscardAndReveal, Index: a.pickHiddenSlot(p, -1)}
		}
	default:
		if idx, val, ok := highestRevealed(p, candidates); ok && val >= 10 && val > v {
			return CardAction{Kind: ActionReplace, Index: idx}
		}
		if !mustReplace && len(hidden) > 0 {
			return CardAction{Kind: ActionDiscardAndReveal, Index: a.pickHiddenSlot(p, -1)}
		}
	}

	if mustReplace {
		return CardAction{Kind: ActionReplace, Index: a.bestForcedTarget(p, v, candidates)}
	}
	if len(hidden) > 0 {
		return CardAction{Kind: ActionDiscardAndReveal, Index: a.pickHiddenSlot(p, -1)}
	}
	return CardAction{Kind: ActionDiscardDrawn, Index: -1}
}

// DecideSwap picks the agent's worst usable card and the best opposing
// asset to steal, falling back to a hidden opponent slot when nothing good
// is visible.
func (a *Agent) DecideSwap(g *skyjo.Game, seat int) SwapChoice {
	p := g.Players[seat]

	own := -1
	ownVal := -1 << 30
	for i, c := range p.Hand {
		if c == nil || c.LockCount > 0 {
			continue
		}
		if c.Revealed && c.MatchValue() > ownVal {
			own, ownVal = i, c.MatchValue()
		}
	}
	if own == -1 {
		if h := hiddenSlots(p); len(h) > 0 {
			own = h[0]
		}
	}

	targetSeat, targetIdx := -1, -1
	bestVal := 1 << 30
	for s, opp := range g.Players {
		if s == seat {
			continue
		}
		for i, c := range opp.Hand {
			if c == nil || c.LockCount > 0 || !c.Revealed {
				continue
			}
			if c.MatchValue() < bestVal {
				targetSeat, targetIdx, bestVal = s, i, c.MatchValue()
			}
		}
	}
	if targetSeat == -1 || bestVal >= ownVal {
		// Nothing visible worth stealing; gamble on a hidden slot.
		for s, opp := range g.Players {
			if s == seat {
				continue
			}
			if h := hiddenSlots(opp); len(h) > 0 {
				targetSeat, targetIdx = s, h[a.rng.Intn(len(h))]
				break
			}
		}
	}
	return SwapChoice{OwnIndex: own, TargetSeat: targetSeat, TargetIndex: targetIdx}
}

// WouldHelpOpponent reports whether leaving a card of this value on the
// discard pile would let an opponent complete a column next turn, from the
// visible board plus the opponent memory.
func (a *Agent) WouldHelpOpponent(g *skyjo.Game, seat int, value int) bool {
	for s, opp := range g.Players {
		if s == seat {
			continue
		}
		if _, ok := columnCompletionSlot(opp, value, true); ok {
			return true
		}
		if a.Memory != nil && a.Memory.WantsValue(opp.ID, value) {
			return true
		}
	}
	return false
}

// Observe feeds public game events into the opponent memory.
func (a *Agent) Observe(selfID uuid.UUID, ev skyjo.GameEvent) {
	if a.Memory == nil || ev.User == nil || ev.User.ID == selfID {
		return
	}
	switch ev.Type {
	case skyjo.EventPlayerReveal, skyjo.EventPlayerReplace:
		if ev.Card != nil && ev.Card.Value != nil {
			a.Memory.ObserveReveal(ev.User.ID, *ev.Card.Value)
		}
	case skyjo.EventPlayerDraw:
		if ev.Card != nil && ev.Card.Value != nil {
			a.Memory.ObserveDiscardTake(ev.User.ID, *ev.Card.Value)
		}
	}
}

// shouldPlaySwap decides whether an actionable Swap beats placing it as a
// plain zero.
func (a *Agent) shouldPlaySwap(g *skyjo.Game, seat int) bool {
	p := g.Players[seat]
	ownWorst := -1 << 30
	for _, c := range p.Hand {
		if c != nil && c.Revealed && c.LockCount == 0 && c.MatchValue() > ownWorst {
			ownWorst = c.MatchValue()
		}
	}
	for s, opp := range g.Players {
		if s == seat {
			continue
		}
		for _, c := range opp.Hand {
			if c == nil || !c.Revealed || c.LockCount > 0 {
				continue
			}
			if c.MatchValue() <= 0 {
				return true
			}
			if ownWorst >= 5 && c.MatchValue() < ownWorst {
				return true
			}
		}
	}
	return false
}

// cursedTarget is the forced-replacement ladder for a drawn cursed skull:
// the worst revealed card at ten or above, else a hidden corner, else any
// hidden slot, else a revealed card at five or above, else anything legal.
func (a *Agent) cursedTarget(p *models.Player, candidates []int) int {
	best, bestVal := -1, -1
	for _, i := range candidates {
		c := p.Hand[i]
		if c.Revealed && c.MatchValue() >= 10 && c.MatchValue() > bestVal {
			best, bestVal = i, c.MatchValue()
		}
	}
	if best != -1 {
		return best
	}
	for _, i := range candidates {
		if !p.Hand[i].Revealed && models.IsCornerSlot(i) {
			return i
		}
	}
	for _, i := range candidates {
		if !p.Hand[i].Revealed {
			return i
		}
	}
	for _, i := range candidates {
		if p.Hand[i].Revealed && p.Hand[i].MatchValue() >= 5 {
			return i
		}
	}
	return candidates[0]
}

// bestForcedTarget picks the least damaging replacement when a discard draw
// forces one: the worst revealed card strictly above the drawn value, else a
// hidden slot, else the least-bad revealed card.
func (a *Agent) bestForcedTarget(p *models.Player, v int, candidates []int) int {
	best, bestVal := -1, v
	for _, i := range candidates {
		c := p.Hand[i]
		if c.Revealed && c.MatchValue() > bestVal {
			best, bestVal = i, c.MatchValue()
		}
	}
	if best != -1 {
		return best
	}
	for _, i := range candidates {
		if !p.Hand[i].Revealed {
			return i
		}
	}
	worst, worstVal := candidates[0], -1<<30
	for _, i := range candidates {
		if c := p.Hand[i]; c.Revealed && c.MatchValue() > worstVal {
			worst, worstVal = i, c.MatchValue()
		}
	}
	return worst
}

// pickHiddenSlot selects a hidden slot with the tier's geometry bias,
// randomizing ties. exclude skips a slot already chosen this decision.
func (a *Agent) pickHiddenSlot(p *models.Player, exclude int) int {
	t := a.Difficulty.tuning()
	var corners, edges, rest []int
	for i, c := range p.Hand {
		if c == nil || c.Revealed || i == exclude {
			continue
		}
		switch {
		case models.IsCornerSlot(i):
			corners = append(corners, i)
		case models.IsEdgeSlot(i):
			edges = append(edges, i)
		default:
			rest = append(rest, i)
		}
	}
	if t.preferCorners && len(corners) > 0 {
		return corners[a.rng.Intn(len(corners))]
	}
	if t.preferEdges && len(edges) > 0 {
		return edges[a.rng.Intn(len(edges))]
	}
	all := append(append(corners, edges...), rest...)
	if len(all) == 0 {
		return -1
	}
	return all[a.rng.Intn(len(all))]
}

// replaceCandidates mirrors the engine's legal replacement slots.
func (a *Agent) replaceCandidates(g *skyjo.Game, seat int) []int {
	p := g.Players[seat]
	var out []int
	for i, c := range p.Hand {
		if c != nil && c.LockCount == 0 {
			out = append(out, i)
		}
	}
	return out
}

// columnCompletionSlot finds a column holding two revealed, unlocked cards
// matching v whose third slot is still replaceable, returning that slot.
// forceCheck ignores the min-value cutoff, used for blocking evaluation.
func columnCompletionSlot(p *models.Player, v int, forceCheck bool) (int, bool) {
	if !forceCheck && v < MinValueForColumnElimination {
		return -1, false
	}
	for col := 0; col < models.HandColumns; col++ {
		matches := 0
		open := -1
		usable := true
		for _, idx := range models.ColumnIndices(col) {
			c := p.Hand[idx]
			if c == nil {
				usable = false
				break
			}
			if c.Revealed && c.LockCount == 0 && c.MatchValue() == v {
				matches++
				continue
			}
			if c.LockCount > 0 {
				usable = false
				break
			}
			open = idx
		}
		if usable && matches == 2 && open != -1 {
			return open, true
		}
	}
	return -1, false
}

func highestRevealed(p *models.Player, candidates []int) (int, int, bool) {
	best, bestVal := -1, -1<<30
	for _, i := range candidates {
		c := p.Hand[i]
		if c.Revealed && c.MatchValue() > bestVal {
			best, bestVal = i, c.MatchValue()
		}
	}
	return best, bestVal, best != -1
}

func hiddenSlots(p *models.Player) []int {
	var out []int
	for i, c := range p.Hand {
		if c != nil && !c.Revealed {
			out = append(out, i)
		}
	}
	return out
}

func containsSlot(slots []int, want int) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}

// isNoOpReplace guards against swapping a revealed card for an equal value.
func isNoOpReplace(p *models.Player, slot, v int) bool {
	c := p.Hand[slot]
	return c.Revealed && c.MatchValue() == v
}

// sacrificesGoodCard protects revealed cards at two or below from being
// spent on completing a worse column.
func sacrificesGoodCard(p *models.Player, slot int) bool {
	c := p.Hand[slot]
	return c.Revealed && c.MatchValue() <= 2
}
