package skyjo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyaru01/skyjo/internal/models"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) eventsOfType(t GameEventType) []GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []GameEvent
	for _, ev := range mb.allEvents {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// setupTestGame deals a seeded round with connected players.
func setupTestGame(t *testing.T, numPlayers int, opts Options) (*Game, *mockBroadcaster) {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		players[i] = models.NewPlayer(&models.User{ID: uuid.New(), Username: fmt.Sprintf("player%d", i)})
	}
	g := NewRound(players, opts)
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	return g, mb
}

// forcePlaying skips the initial reveal so tests can shape state directly.
func forcePlaying(g *Game) {
	g.Phase = PhasePlaying
	g.TurnPhase = TurnDraw
	g.CurrentPlayerIndex = 0
	g.TurnID = 1
}

func card(v int) *models.Card {
	return &models.Card{ID: uuid.New(), Value: v}
}

// countCards tallies every card in the round: the conserved quantity.
func countCards(g *Game) int {
	n := len(g.DrawPile) + len(g.DiscardPile)
	if g.DrawnCard != nil {
		n++
	}
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c != nil {
				n++
			}
		}
	}
	return n
}

func TestNewRoundDealsTwelvePerPlayer(t *testing.T) {
	g, _ := setupTestGame(t, 3, Options{})
	for _, p := range g.Players {
		assert.Equal(t, models.HandSize, p.RemainingSlots())
		for _, c := range p.Hand {
			require.NotNil(t, c)
			assert.False(t, c.Revealed)
		}
	}
	assert.Equal(t, PhaseInitialReveal, g.Phase)
	require.Len(t, g.DiscardPile, 1)
	assert.True(t, g.DiscardPile[0].Revealed)
	assert.Equal(t, g.DeckSize(), countCards(g))
}

func TestInitialRevealPicksHighestPairOpener(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})

	// Shape the flips so seat 1 shows the bigger pair.
	g.Players[0].Hand[0].Value = 1
	g.Players[0].Hand[1].Value = 2
	g.Players[1].Hand[0].Value = 11
	g.Players[1].Hand[1].Value = 12

	require.Nil(t, g.RevealInitialCards(0, 0, 1))
	assert.Equal(t, PhaseInitialReveal, g.Phase)

	v := g.RevealInitialCards(0, 2, 3)
	require.NotNil(t, v, "a seat may only flip once")
	assert.Equal(t, ViolationWrongPhase, v.Kind)

	require.Nil(t, g.RevealInitialCards(1, 0, 1))
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, 1, g.CurrentPlayerIndex)
	assert.Equal(t, TurnDraw, g.TurnPhase)
}

func TestRevealInitialCardsValidation(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})

	v := g.RevealInitialCards(0, 3, 3)
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind)

	v = g.RevealInitialCards(0, -1, 3)
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind)

	g.Players[0].Hand[5].Revealed = true
	v = g.RevealInitialCards(0, 5, 6)
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind)
}

func TestDrawFromPileCursedForcesReplace(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)

	g.DrawPile[0] = card(models.CursedValue)
	require.Nil(t, g.DrawFromPile())
	assert.Equal(t, TurnMustReplace, g.TurnPhase)

	v := g.DiscardDrawn()
	require.NotNil(t, v, "a cursed skull cannot be discarded")
	assert.Equal(t, ViolationWrongPhase, v.Kind)

	v = g.DiscardAndReveal(0)
	require.NotNil(t, v)
	assert.Equal(t, ViolationWrongPhase, v.Kind)
}

func TestDrawFromDiscardAndUndo(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)

	top := card(-5)
	top.Revealed = true
	g.DiscardPile = append(g.DiscardPile, top)
	discardSize := len(g.DiscardPile)

	require.Nil(t, g.DrawFromDiscard())
	assert.Equal(t, TurnMustReplace, g.TurnPhase)
	assert.Equal(t, top, g.DrawnCard)
	assert.Len(t, g.DiscardPile, discardSize-1)

	require.Nil(t, g.UndoDrawDiscard())
	assert.Equal(t, TurnDraw, g.TurnPhase)
	assert.Nil(t, g.DrawnCard)
	assert.Equal(t, top, g.DiscardPile[len(g.DiscardPile)-1])

	// A pile draw cannot be undone.
	require.Nil(t, g.DrawFromPile())
	if g.TurnPhase == TurnReplaceOrDiscard || g.TurnPhase == TurnMustReplace {
		v := g.UndoDrawDiscard()
		require.NotNil(t, v)
		assert.Equal(t, ViolationWrongPhase, v.Kind)
	}
}

func TestReplaceCardMovesDisplacedToDiscard(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	g.DrawPile[0] = card(-2)
	displaced := p.Hand[4]
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.ReplaceCard(4))

	assert.Equal(t, -2, p.Hand[4].Value)
	assert.True(t, p.Hand[4].Revealed)
	assert.Equal(t, displaced, g.DiscardPile[len(g.DiscardPile)-1])
	assert.True(t, displaced.Revealed)
	assert.Nil(t, g.DrawnCard)
	assert.Equal(t, g.DeckSize(), countCards(g))
	assert.Equal(t, 1, g.CurrentPlayerIndex, "turn passes after a replace")

	require.NotNil(t, g.LastAction)
	assert.Equal(t, ActionReplaceCard, g.LastAction.Type)
	assert.Equal(t, 4, g.LastAction.SlotIndex)
}

func TestReplaceRespectsLocks(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	p.Hand[7] = card(models.CursedValue)
	p.Hand[7].Revealed = true
	p.Hand[7].LockCount = models.LockTurns

	g.DrawPile[0] = card(0)
	require.Nil(t, g.DrawFromPile())
	v := g.ReplaceCard(7)
	require.NotNil(t, v)
	assert.Equal(t, ViolationCardLocked, v.Kind)
	assert.Equal(t, TurnReplaceOrDiscard, g.TurnPhase, "state unchanged after violation")
}

func TestDiscardAndRevealLocksCursedCard(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	p.Hand[3] = card(models.CursedValue)
	g.DrawPile[0] = card(5)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.DiscardAndReveal(3))

	assert.True(t, p.Hand[3].Revealed)
	assert.Equal(t, models.LockTurns, p.Hand[3].LockCount)
	assert.Equal(t, g.DeckSize(), countCards(g))
}

func TestLockDecaysAtOwnersTurnStart(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.Players[0]
	p.Hand[0] = card(models.CursedValue)
	p.Hand[0].Revealed = true
	p.Hand[0].LockCount = 1

	// Seat 1 plays; the lock decays when seat 0 comes back up.
	g.CurrentPlayerIndex = 1
	g.DrawPile[0] = card(4)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.DiscardAndReveal(0))

	assert.Equal(t, 0, g.CurrentPlayerIndex)
	assert.Equal(t, 0, p.Hand[0].LockCount)
}

func TestColumnEliminationOnReveal(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	// Column 0 holds [7, 7, hidden 7].
	for _, idx := range models.ColumnIndices(0) {
		p.Hand[idx] = card(7)
	}
	p.Hand[0].Revealed = true
	p.Hand[1].Revealed = true
	before := p.RawSum()

	g.DrawPile[0] = card(9)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.DiscardAndReveal(2))

	for _, idx := range models.ColumnIndices(0) {
		assert.Nil(t, p.Hand[idx])
	}
	assert.Equal(t, before-21, p.RawSum(), "all 21 raw points leave the hand")
	assert.Equal(t, g.DeckSize(), countCards(g), "cleared cards relocate to the discard pile")
	assert.Len(t, g.LastEliminated, 3)
}

func TestEliminationIdempotent(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	for _, idx := range models.ColumnIndices(1) {
		p.Hand[idx] = card(4)
		p.Hand[idx].Revealed = true
	}
	require.Len(t, g.checkElimination(p), 3)
	assert.Nil(t, g.checkElimination(p), "re-check with no new match is a no-op")
}

func TestChestCountsAsZeroForMatching(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{BonusMode: true})
	forcePlaying(g)
	p := g.CurrentPlayer()

	idxs := models.ColumnIndices(2)
	p.Hand[idxs[0]] = card(0)
	p.Hand[idxs[0]].Revealed = true
	p.Hand[idxs[1]] = &models.Card{ID: uuid.New(), Special: models.SpecialChest, Revealed: true}
	p.Hand[idxs[2]] = card(0)
	p.Hand[idxs[2]].Revealed = true

	require.Len(t, g.checkElimination(p), 3)
}

func TestLockedColumnDoesNotEliminate(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	p := g.CurrentPlayer()

	for _, idx := range models.ColumnIndices(0) {
		p.Hand[idx] = card(models.CursedValue)
		p.Hand[idx].Revealed = true
	}
	p.Hand[0].LockCount = 2
	assert.Nil(t, g.checkElimination(p))
}

func TestSwapTriggersEliminationImmediately(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{BonusMode: true})
	forcePlaying(g)
	actor, target := g.Players[0], g.Players[1]

	// Target's column 0 needs one more 6 that the actor holds at slot 5.
	idxs := models.ColumnIndices(0)
	target.Hand[idxs[0]] = card(6)
	target.Hand[idxs[0]].Revealed = true
	target.Hand[idxs[1]] = card(6)
	target.Hand[idxs[1]].Revealed = true
	target.Hand[idxs[2]] = card(9)
	target.Hand[idxs[2]].Revealed = true
	actor.Hand[5] = card(6)
	actor.Hand[5].Revealed = true

	g.DrawPile[0] = &models.Card{ID: uuid.New(), Special: models.SpecialSwap}
	require.Nil(t, g.DrawFromPile())
	assert.Equal(t, TurnReplaceOrDiscard, g.TurnPhase)
	require.Nil(t, g.PlayActionCard())
	assert.Equal(t, TurnSpecialSwap, g.TurnPhase)
	require.Nil(t, g.PerformSwap(5, 1, idxs[2]))

	for _, idx := range idxs {
		assert.Nil(t, target.Hand[idx], "swap completion clears the column at once")
	}
	assert.Equal(t, 9, actor.Hand[5].Value)
	assert.Equal(t, g.DeckSize(), countCards(g))
}

func TestPerformSwapValidation(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{BonusMode: true})
	forcePlaying(g)

	v := g.PerformSwap(0, 1, 0)
	require.NotNil(t, v)
	assert.Equal(t, ViolationWrongPhase, v.Kind)

	g.DrawPile[0] = &models.Card{ID: uuid.New(), Special: models.SpecialSwap}
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.PlayActionCard())

	v = g.PerformSwap(0, 0, 1)
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind, "cannot swap with yourself")

	g.Players[1].Hand[2].LockCount = 1
	v = g.PerformSwap(0, 1, 2)
	require.NotNil(t, v)
	assert.Equal(t, ViolationCardLocked, v.Kind)
}

func TestBlackHoleSwallowsDiscardPile(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{BonusMode: true})
	forcePlaying(g)

	for i := 0; i < 4; i++ {
		c := card(i)
		c.Revealed = true
		g.DiscardPile = append(g.DiscardPile, c)
	}
	discardSize := len(g.DiscardPile)
	pileSize := len(g.DrawPile)

	hole := &models.Card{ID: uuid.New(), Special: models.SpecialBlackHole}
	g.DrawPile[0] = hole
	require.Nil(t, g.DrawFromPile())
	assert.Equal(t, TurnResolveBlackHole, g.TurnPhase)

	v := g.ReplaceCard(0)
	require.NotNil(t, v, "a black hole cannot be placed in the hand")

	require.Nil(t, g.ResolveBlackHole())
	require.Len(t, g.DiscardPile, 1)
	assert.Equal(t, hole, g.DiscardPile[0])
	assert.Equal(t, pileSize-1+discardSize, len(g.DrawPile))
	assert.Equal(t, g.DeckSize(), countCards(g))
	assert.Equal(t, 1, g.CurrentPlayerIndex, "resolving the black hole ends the turn")
	for _, c := range g.DrawPile[len(g.DrawPile)-discardSize:] {
		assert.False(t, c.Revealed, "swallowed cards go back face down")
	}
}

func TestReshuffleKeepsDiscardTop(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)

	// Exhaust the draw pile into the discard.
	for _, c := range g.DrawPile {
		c.Revealed = true
		g.DiscardPile = append(g.DiscardPile, c)
	}
	g.DrawPile = nil
	top := g.DiscardPile[len(g.DiscardPile)-1]
	total := countCards(g)

	require.Nil(t, g.DrawFromPile())
	require.Len(t, g.DiscardPile, 1)
	assert.Equal(t, top, g.DiscardPile[0])
	assert.Equal(t, total, countCards(g))
}

func TestFinalRoundGivesEveryoneOneMoreTurn(t *testing.T) {
	g, mb := setupTestGame(t, 3, Options{})
	forcePlaying(g)

	// Seat 0 is one reveal away from going out.
	for _, p := range g.Players {
		for _, c := range p.Hand {
			c.Revealed = true
		}
	}
	g.Players[0].Hand[11].Revealed = false
	// Keep values distinct so no column clears mid-test.
	for pi, p := range g.Players {
		for i, c := range p.Hand {
			c.Value = (i+pi)%13 - 1
		}
	}

	var result *RoundResult
	g.OnRoundEnd = func(r RoundResult) { result = &r }

	g.DrawPile[0] = card(12)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.DiscardAndReveal(11))
	assert.Equal(t, PhaseFinalRound, g.Phase)
	assert.Equal(t, 0, g.FinisherIndex)
	require.Len(t, mb.eventsOfType(EventGameFinalRound), 1)

	for seat := 1; seat <= 2; seat++ {
		require.Equal(t, seat, g.CurrentPlayerIndex)
		g.DrawPile[0] = card(12)
		require.Nil(t, g.DrawFromPile())
		require.Nil(t, g.ReplaceCard(0))
	}

	assert.Equal(t, PhaseFinished, g.Phase)
	require.NotNil(t, result, "round end callback fires exactly once")
	assert.Equal(t, g.Players[0].ID, result.Round.FinisherID)
	require.Len(t, mb.eventsOfType(EventGameRoundEnd), 1)
}

func TestFinalRoundEndsWhenOnlyFinisherWouldAct(t *testing.T) {
	g, _ := setupTestGame(t, 3, Options{})
	forcePlaying(g)

	for _, p := range g.Players {
		for _, c := range p.Hand {
			c.Revealed = true
		}
	}
	g.Players[0].Hand[11].Revealed = false
	for pi, p := range g.Players {
		for i, c := range p.Hand {
			c.Value = (i+pi)%13 - 1
		}
	}

	var result *RoundResult
	g.OnRoundEnd = func(r RoundResult) { result = &r }

	g.DrawPile[0] = card(12)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.DiscardAndReveal(11))
	require.Equal(t, PhaseFinalRound, g.Phase)
	require.Equal(t, 0, g.FinisherIndex)
	require.Equal(t, 1, g.CurrentPlayerIndex)

	// Seat 2 drops before taking its last turn. Once seat 1 has played,
	// control must end the round rather than wrap back to the finisher.
	g.Players[2].Connected = false
	g.DrawPile[0] = card(12)
	require.Nil(t, g.DrawFromPile())
	require.Nil(t, g.ReplaceCard(0))

	assert.Equal(t, PhaseFinished, g.Phase)
	require.NotNil(t, result, "skipped seats forfeit their turn, the round still ends")
	assert.NotEqual(t, g.FinisherIndex, g.CurrentPlayerIndex, "the finisher never acts again")
}

func TestActionCardsNotTakeableFromDiscard(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{BonusMode: true})
	forcePlaying(g)

	g.DiscardPile = append(g.DiscardPile, &models.Card{ID: uuid.New(), Special: models.SpecialBlackHole, Revealed: true})
	assert.False(t, g.ValidActions(0).CanDrawDiscard)
	v := g.DrawFromDiscard()
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind)
	assert.Equal(t, TurnDraw, g.TurnPhase, "the refused draw leaves the turn untouched")

	g.DiscardPile[len(g.DiscardPile)-1] = &models.Card{ID: uuid.New(), Special: models.SpecialSwap, Revealed: true}
	v = g.DrawFromDiscard()
	require.NotNil(t, v)
	assert.Equal(t, ViolationInvalidTarget, v.Kind)

	// A chest lives in hands, so it stays takeable.
	g.DiscardPile[len(g.DiscardPile)-1] = &models.Card{ID: uuid.New(), Special: models.SpecialChest, Revealed: true}
	assert.True(t, g.ValidActions(0).CanDrawDiscard)
	require.Nil(t, g.DrawFromDiscard())
	assert.Equal(t, TurnMustReplace, g.TurnPhase)
}

func TestRemovePlayerKeepsRoundGoing(t *testing.T) {
	g, _ := setupTestGame(t, 3, Options{})
	forcePlaying(g)
	total := countCards(g)

	leaving := g.Players[1]
	require.True(t, g.RemovePlayer(leaving.ID))
	assert.Len(t, g.Players, 2)
	assert.Equal(t, total, countCards(g), "departing hand returns to the draw pile")
	assert.NotEqual(t, PhaseFinished, g.Phase)

	require.False(t, g.RemovePlayer(leaving.ID), "already removed")
}

func TestRemovePlayerDownToOneFinishesRound(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)

	done := false
	g.OnRoundEnd = func(RoundResult) { done = true }
	require.True(t, g.RemovePlayer(g.Players[1].ID))
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.True(t, done)
}

func TestChestResultsDeterministicGivenSeed(t *testing.T) {
	build := func() *Game {
		g, _ := setupTestGame(t, 2, Options{BonusMode: true, Seed: 7})
		forcePlaying(g)
		g.Players[0].Hand[0] = &models.Card{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Special: models.SpecialChest}
		g.Players[1].Hand[5] = &models.Card{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Special: models.SpecialChest}
		return g
	}
	a := build()
	b := build()
	ra := a.GenerateChestResults(99)
	rb := b.GenerateChestResults(99)
	assert.Equal(t, ra, rb)
	require.Len(t, ra, 2)
	for _, p := range a.Players {
		for _, c := range p.Hand {
			if c != nil && c.Special == models.SpecialChest {
				assert.True(t, c.Revealed)
			}
		}
	}
}

func TestValidActionsFollowTurnPhase(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})

	as := g.ValidActions(0)
	assert.True(t, as.InitialReveal)
	require.Nil(t, g.RevealInitialCards(0, 0, 1))
	as = g.ValidActions(0)
	assert.False(t, as.InitialReveal, "both flips already made")

	forcePlaying(g)
	as = g.ValidActions(0)
	assert.True(t, as.CanDrawPile)
	assert.True(t, as.CanDrawDiscard)
	assert.Empty(t, g.ValidActions(1).ReplaceSlots, "off-turn seat gets nothing")

	g.DrawPile[0] = card(3)
	require.Nil(t, g.DrawFromPile())
	as = g.ValidActions(0)
	assert.False(t, as.CanDrawPile)
	assert.True(t, as.CanDiscard)
	assert.NotEmpty(t, as.ReplaceSlots)
}

func TestSnapshotObfuscatesHiddenCards(t *testing.T) {
	g, _ := setupTestGame(t, 2, Options{})
	forcePlaying(g)
	viewer := g.Players[0]
	opp := g.Players[1]
	opp.Hand[0].Revealed = true

	g.DrawPile[0] = card(6)
	require.Nil(t, g.DrawFromPile())

	st := g.SnapshotFor(viewer.ID)
	require.NotNil(t, st.DrawnCard)
	require.NotNil(t, st.DrawnCard.Value, "the drawer sees the drawn card")

	oppView := g.SnapshotFor(opp.ID)
	require.NotNil(t, oppView.DrawnCard)
	assert.Nil(t, oppView.DrawnCard.Value, "others see only the card id")

	for _, sp := range st.Players {
		if sp.ID != opp.ID {
			continue
		}
		require.NotNil(t, sp.Hand[0])
		assert.NotNil(t, sp.Hand[0].Value, "revealed cards carry values")
		require.NotNil(t, sp.Hand[1])
		assert.Nil(t, sp.Hand[1].Value, "hidden cards carry no value")
	}
}

func TestCardConservationUnderRandomPlay(t *testing.T) {
	for _, bonus := range []bool{false, true} {
		g, _ := setupTestGame(t, 3, Options{BonusMode: bonus, Seed: 1234})
		for seat := range g.Players {
			require.Nil(t, g.RevealInitialCards(seat, 0, 1))
		}
		for turn := 0; turn < 200 && g.Phase != PhaseFinished; turn++ {
			seat := g.CurrentPlayerIndex
			switch g.TurnPhase {
			case TurnDraw:
				require.Nil(t, g.DrawFromPile())
			case TurnReplaceOrDiscard, TurnMustReplace:
				targets := g.replaceTargets()
				if len(targets) > 0 {
					require.Nil(t, g.ReplaceCard(targets[turn%len(targets)]))
				} else {
					require.Nil(t, g.DiscardDrawn())
				}
			case TurnMustReveal:
				hidden := g.hiddenSlots(g.Players[seat])
				require.NotEmpty(t, hidden)
				require.Nil(t, g.RevealCard(hidden[0]))
			case TurnSpecialSwap:
				g.EndTurn()
			case TurnResolveBlackHole:
				require.Nil(t, g.ResolveBlackHole())
			}
			assert.Equal(t, g.DeckSize(), countCards(g), "bonus=%v turn=%d", bonus, turn)
		}
	}
}
