package skyjo

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/scoring"
)

// GenerateChestResults rolls a value for every treasure chest still held in
// a hand. Each chest draws uniformly from the pool of values nobody has seen
// yet: face-down value cards in the draw pile and in hands. The same seed
// over the same state yields the same rolls, so replays agree with the live
// round. Lock held.
func (g *Game) GenerateChestResults(seed int64) map[uuid.UUID]int {
	pool := g.unseenValuePool()
	rng := rand.New(rand.NewSource(seed))
	results := make(map[uuid.UUID]int)
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c == nil || c.Special != models.SpecialChest {
				continue
			}
			v := 0
			if len(pool) > 0 {
				v = pool[rng.Intn(len(pool))]
			}
			c.Value = v
			c.Revealed = true
			results[c.ID] = v
		}
	}
	g.ChestResults = results
	return results
}

// unseenValuePool collects the face values no player has seen: face-down
// value cards in the draw pile and in every hand. Specials carry no value
// and are excluded.
func (g *Game) unseenValuePool() []int {
	var pool []int
	for _, c := range g.DrawPile {
		if c.Special == models.SpecialNone {
			pool = append(pool, c.Value)
		}
	}
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c != nil && !c.Revealed && c.Special == models.SpecialNone {
				pool = append(pool, c.Value)
			}
		}
	}
	return pool
}

// hasHeldChests reports whether any hand still holds a treasure chest.
func (g *Game) hasHeldChests() bool {
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c != nil && c.Special == models.SpecialChest {
				return true
			}
		}
	}
	return false
}

// finishRound drives the endgame: chests resolve, every hand flips face up,
// raw sums are scored with the finisher penalty, and OnRoundEnd fires once.
// Lock held.
func (g *Game) finishRound() {
	if g.Phase == PhaseFinished {
		return
	}

	if g.Options.BonusMode && g.hasHeldChests() {
		g.Phase = PhaseRevealingChests
		results := g.GenerateChestResults(g.Options.Seed + int64(g.actionIndex))
		payload := make(map[string]interface{}, len(results))
		for id, v := range results {
			payload[id.String()] = v
		}
		g.logAction(uuid.Nil, string(EventGameChestResults), map[string]interface{}{"results": payload})
		g.fireEvent(GameEvent{
			Type:    EventGameChestResults,
			Payload: map[string]interface{}{"results": payload},
		})
	}

	// Full table reveal before scoring.
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c != nil && !c.Revealed {
				c.Revealed = true
			}
		}
	}

	var finisherID uuid.UUID
	if g.FinisherIndex >= 0 && g.FinisherIndex < len(g.Players) {
		finisherID = g.Players[g.FinisherIndex].ID
	}
	raw := make(map[uuid.UUID]int, len(g.Players))
	eliminated := make(map[uuid.UUID]int, len(g.Players))
	for _, p := range g.Players {
		raw[p.ID] = p.RawSum()
		n := 0
		for _, c := range p.Hand {
			if c == nil {
				n++
			}
		}
		eliminated[p.ID] = n
	}
	round := scoring.ScoreRound(raw, finisherID)
	round.ID = g.ID

	g.Phase = PhaseFinished
	g.logAction(uuid.Nil, string(EventGameRoundEnd), map[string]interface{}{
		"scores": stringKeyed(round.Scores),
	})
	g.fireEvent(GameEvent{
		Type: EventGameRoundEnd,
		Payload: map[string]interface{}{
			"rawScores":        stringKeyed(round.RawScores),
			"scores":           stringKeyed(round.Scores),
			"finisherId":       finisherID,
			"isStrictlyLowest": round.IsStrictlyLowest,
		},
	})
	if g.OnRoundEnd != nil {
		g.OnRoundEnd(RoundResult{Round: round, EliminatedBy: eliminated})
	}
}

func stringKeyed(m map[uuid.UUID]int) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}
