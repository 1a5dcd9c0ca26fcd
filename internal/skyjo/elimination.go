package skyjo

import "github.com/Nyaru01/skyjo/internal/models"

// checkElimination clears every column of the hand whose three slots are all
// face up, unlocked and matching. Cleared cards land face up on the discard
// pile so the card pool stays intact. Treasure chests match as zero. Runs to
// a fixed point in a single pass since clearing a column cannot complete
// another one.
func (g *Game) checkElimination(p *models.Player) []*models.Card {
	var cleared []*models.Card
	var clearedCols []int
	for col := 0; col < models.HandColumns; col++ {
		idxs := models.ColumnIndices(col)
		match := true
		var want int
		for k, idx := range idxs {
			c := p.Hand[idx]
			if c == nil || !c.Revealed || c.LockCount > 0 {
				match = false
				break
			}
			if k == 0 {
				want = c.MatchValue()
			} else if c.MatchValue() != want {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for _, idx := range idxs {
			c := p.Hand[idx]
			p.Hand[idx] = nil
			c.Revealed = true
			g.DiscardPile = append(g.DiscardPile, c)
			cleared = append(cleared, c)
		}
		clearedCols = append(clearedCols, col)
	}
	if len(cleared) == 0 {
		return nil
	}
	g.LastEliminated = cleared
	g.logAction(p.ID, string(EventGameColumnCleared), map[string]interface{}{
		"columns": clearedCols,
		"count":   len(cleared),
	})
	g.fireEvent(GameEvent{
		Type: EventGameColumnCleared,
		User: &EventUser{ID: p.ID},
		Payload: map[string]interface{}{
			"columns": clearedCols,
			"count":   len(cleared),
		},
	})
	return cleared
}
