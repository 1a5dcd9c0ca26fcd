package ai

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

func newBotGame(t *testing.T, numPlayers int, opts skyjo.Options) *skyjo.Game {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		players[i] = models.NewPlayer(&models.User{ID: uuid.New(), Username: fmt.Sprintf("bot%d", i)})
		players[i].IsBot = true
	}
	return skyjo.NewRound(players, opts)
}

func toPlaying(g *skyjo.Game) {
	g.Phase = skyjo.PhasePlaying
	g.TurnPhase = skyjo.TurnDraw
	g.CurrentPlayerIndex = 0
	g.TurnID = 1
}

func card(v int) *models.Card {
	return &models.Card{ID: uuid.New(), Value: v}
}

func revealed(v int) *models.Card {
	c := card(v)
	c.Revealed = true
	return c
}

func TestChooseInitialRevealPrefersCorners(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	a := NewAgent(DifficultyHardcore, 7)

	i, j := a.ChooseInitialReveal(g.Players[0])
	assert.NotEqual(t, i, j)
	assert.True(t, models.IsCornerSlot(i), "hardcore flips corners first")
	assert.True(t, models.IsCornerSlot(j))
}

func TestDecideDrawSource(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)

	top := revealed(9)
	g.DiscardPile = append(g.DiscardPile, top)
	a := NewAgent(DifficultyNormal, 7)
	assert.Equal(t, DrawSourcePile, a.DecideDrawSource(g, 0), "a mediocre discard top is not worth a forced replace")

	top.Value = -5
	assert.Equal(t, DrawSourceDiscard, a.DecideDrawSource(g, 0), "negative values are always taken")

	top.Value = models.CursedValue
	assert.Equal(t, DrawSourcePile, a.DecideDrawSource(g, 0), "never pick up a cursed skull")
}

func TestDecideDrawSourceCompletesColumn(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	p := g.Players[0]

	idxs := models.ColumnIndices(1)
	p.Hand[idxs[0]] = revealed(8)
	p.Hand[idxs[1]] = revealed(8)
	g.DiscardPile = append(g.DiscardPile, revealed(8))

	a := NewAgent(DifficultyNormal, 7)
	assert.Equal(t, DrawSourceDiscard, a.DecideDrawSource(g, 0))
}

func TestColumnCompletionRespectsValueCutoff(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	p := g.Players[0]
	a := NewAgent(DifficultyNormal, 7)

	idxs := models.ColumnIndices(0)
	p.Hand[idxs[0]] = revealed(7)
	p.Hand[idxs[1]] = revealed(7)
	g.DrawnCard = revealed(7)
	g.TurnPhase = skyjo.TurnReplaceOrDiscard

	act := a.DecideCardAction(g, 0)
	assert.Equal(t, ActionReplace, act.Kind)
	assert.Equal(t, idxs[2], act.Index, "a 7 column is worth completing")

	// Low-value columns cost more to clear than they save.
	p.Hand[idxs[0]] = revealed(2)
	p.Hand[idxs[1]] = revealed(2)
	g.DrawnCard = revealed(2)
	act = a.DecideCardAction(g, 0)
	if act.Kind == ActionReplace {
		assert.NotEqual(t, idxs[2], act.Index)
	}
}

func TestCursedCardTargetLadder(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	p := g.Players[0]
	a := NewAgent(DifficultyNormal, 7)

	g.DrawnCard = revealed(models.CursedValue)
	g.TurnPhase = skyjo.TurnMustReplace

	p.Hand[4] = revealed(11)
	act := a.DecideCardAction(g, 0)
	assert.Equal(t, ActionReplace, act.Kind)
	assert.Equal(t, 4, act.Index, "the worst revealed card at ten or above eats the skull")

	// Without a high revealed card, a hidden corner takes it.
	p.Hand[4] = revealed(8)
	act = a.DecideCardAction(g, 0)
	assert.Equal(t, ActionReplace, act.Kind)
	assert.True(t, models.IsCornerSlot(act.Index))
	assert.False(t, p.Hand[act.Index].Revealed)
}

func TestExcellentCardReplacesHighestRevealed(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	p := g.Players[0]
	a := NewAgent(DifficultyNormal, 7)

	p.Hand[6] = revealed(12)
	g.DrawnCard = revealed(-10)
	g.TurnPhase = skyjo.TurnReplaceOrDiscard

	act := a.DecideCardAction(g, 0)
	assert.Equal(t, ActionReplace, act.Kind)
	assert.Equal(t, 6, act.Index)
}

func TestMediocreCardRevealsInsteadOfReplacing(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	p := g.Players[0]
	a := NewAgent(DifficultyNormal, 7)

	p.Hand[6] = revealed(6)
	g.DrawnCard = revealed(8)
	g.TurnPhase = skyjo.TurnReplaceOrDiscard

	act := a.DecideCardAction(g, 0)
	assert.Equal(t, ActionDiscardAndReveal, act.Kind)
	assert.False(t, p.Hand[act.Index].Revealed)
}

func TestWouldHelpOpponent(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{})
	toPlaying(g)
	opp := g.Players[1]
	a := NewAgent(DifficultyHard, 7)

	idxs := models.ColumnIndices(2)
	opp.Hand[idxs[0]] = revealed(8)
	opp.Hand[idxs[1]] = revealed(8)

	assert.True(t, a.WouldHelpOpponent(g, 0, 8))
	assert.False(t, a.WouldHelpOpponent(g, 0, 9))
}

func TestOpponentMemorySignals(t *testing.T) {
	m := NewOpponentMemory()
	opp := uuid.New()

	assert.False(t, m.WantsValue(opp, 5))
	m.ObserveReveal(opp, 5)
	assert.False(t, m.WantsValue(opp, 5), "one sighting is not a signal")
	m.ObserveReveal(opp, 5)
	assert.True(t, m.WantsValue(opp, 5))

	m.ObserveDiscardTake(opp, 9)
	assert.True(t, m.WantsValue(opp, 9), "a discard take is an immediate signal")

	m.Reset()
	assert.False(t, m.WantsValue(opp, 5))
	assert.False(t, m.WantsValue(opp, 9))
}

func TestDecideSwapStealsBestVisibleAsset(t *testing.T) {
	g := newBotGame(t, 2, skyjo.Options{BonusMode: true})
	toPlaying(g)
	me, opp := g.Players[0], g.Players[1]
	a := NewAgent(DifficultyHard, 7)

	me.Hand[3] = revealed(11)
	opp.Hand[8] = revealed(-10)

	sw := a.DecideSwap(g, 0)
	assert.Equal(t, 3, sw.OwnIndex)
	assert.Equal(t, 1, sw.TargetSeat)
	assert.Equal(t, 8, sw.TargetIndex)
}

// TestAgentsNeverViolateRules plays full rounds per tier and treats any
// RuleViolation from an agent-originated call as a defect.
func TestAgentsNeverViolateRules(t *testing.T) {
	tiers := []Difficulty{DifficultyNormal, DifficultyHard, DifficultyHardcore, DifficultyBonus}
	for _, tier := range tiers {
		tier := tier
		t.Run(string(tier), func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				g := newBotGame(t, 3, skyjo.Options{
					Seed:      seed,
					BonusMode: tier == DifficultyBonus,
				})
				agents := make([]*Agent, len(g.Players))
				for i := range agents {
					agents[i] = NewAgent(tier, seed*100+int64(i))
				}
				for seat := range g.Players {
					require.Nil(t, agents[seat].RevealInitial(g, seat), "seed %d", seed)
				}
				require.Equal(t, skyjo.PhasePlaying, g.Phase)

				for step := 0; step < 1500 && g.Phase != skyjo.PhaseFinished; step++ {
					seat := g.CurrentPlayerIndex
					v := agents[seat].TakeTurn(g)
					require.Nil(t, v, "tier %s seed %d step %d: %v", tier, seed, step, v)
				}
			}
		})
	}
}
