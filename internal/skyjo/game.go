package skyjo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/cache"
	"github.com/Nyaru01/skyjo/internal/models"
)

// Phase is the coarse round state.
type Phase string

const (
	PhaseInitialReveal   Phase = "INITIAL_REVEAL"
	PhasePlaying         Phase = "PLAYING"
	PhaseFinalRound      Phase = "FINAL_ROUND"
	PhaseRevealingChests Phase = "REVEALING_CHESTS"
	PhaseFinished        Phase = "FINISHED"
)

// TurnPhase is the fine-grained state within the current player's turn.
type TurnPhase string

const (
	TurnDraw             TurnPhase = "DRAW"
	TurnReplaceOrDiscard TurnPhase = "REPLACE_OR_DISCARD"
	TurnMustReplace      TurnPhase = "MUST_REPLACE"
	TurnMustReveal       TurnPhase = "MUST_REVEAL"
	TurnSpecialSwap      TurnPhase = "SPECIAL_ACTION_SWAP"
	TurnResolveBlackHole TurnPhase = "RESOLVE_BLACK_HOLE"
)

// Options configures a new round.
type Options struct {
	// BonusMode mixes Swap, BlackHole and Chest cards into the deck.
	BonusMode bool
	// Seed drives the shuffle and chest resolution. Zero means "derive from
	// the clock", matching normal play; tests and replays pass a fixed seed.
	Seed int64
}

// RoundResult is handed to OnRoundEnd once a round reaches FINISHED.
type RoundResult struct {
	Round        models.Round
	EliminatedBy map[uuid.UUID]int // slots eliminated per player this round
}

// Game holds the authoritative state of a single Skyjo round. One logical
// transition is applied at a time under Mu; rooms are independent.
type Game struct {
	ID     uuid.UUID
	RoomID uuid.UUID

	Options Options

	Players            []*models.Player
	DrawPile           []*models.Card
	DiscardPile        []*models.Card
	DrawnCard          *models.Card
	CurrentPlayerIndex int

	Phase     Phase
	TurnPhase TurnPhase

	// FinisherIndex is the seat that first revealed its whole hand, -1 until
	// the final round begins.
	FinisherIndex int

	// finalTurnsLeft counts the extra turns owed to the other players once
	// the final round starts.
	finalTurnsLeft int

	// drawnFromDiscard marks whether DrawnCard came off the discard pile;
	// only such draws may be undone.
	drawnFromDiscard bool

	// pendingSwapCard holds the Swap special card while its action resolves.
	pendingSwapCard *models.Card

	// initialReveals tracks how many face-up flips each seat made during
	// INITIAL_REVEAL.
	initialReveals []int

	LastAction     *LastAction
	LastEliminated []*models.Card
	ChestResults   map[uuid.UUID]int

	TurnID      int
	actionIndex int
	deckSize    int

	rng *rand.Rand
	Mu  sync.Mutex

	Logger *logrus.Logger

	// BroadcastFn sends an event to every connected player. Nil disables
	// broadcasting (engine-only tests).
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnRoundEnd is invoked exactly once when the round reaches FINISHED.
	OnRoundEnd func(result RoundResult)
}

// NewRound deals a fresh round for the given seats. Players keep their
// identity; hands, piles and phases are rebuilt from a new shuffle.
func NewRound(players []*models.Player, opts Options) *Game {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		opts.Seed = seed
	}
	g := &Game{
		ID:             uuid.New(),
		Options:        opts,
		Players:        players,
		Phase:          PhaseInitialReveal,
		TurnPhase:      TurnDraw,
		FinisherIndex:  -1,
		initialReveals: make([]int, len(players)),
		ChestResults:   make(map[uuid.UUID]int),
		rng:            rand.New(rand.NewSource(seed)),
	}
	g.DrawPile = buildDeck(len(players), opts.BonusMode, g.rng)
	g.deckSize = len(g.DrawPile)
	g.deal()
	return g
}

// deal hands out 12 face-down cards per player and flips the first discard.
func (g *Game) deal() {
	for _, p := range g.Players {
		for i := 0; i < models.HandSize; i++ {
			p.Hand[i] = g.popDraw()
		}
	}
	// Seed the discard pile with one card; a black hole here would have
	// nothing to swallow, so skip specials until a value card turns up.
	for {
		c := g.popDraw()
		if c == nil {
			break
		}
		if c.Special == models.SpecialBlackHole {
			// Bury it back randomly.
			pos := g.rng.Intn(len(g.DrawPile) + 1)
			g.DrawPile = append(g.DrawPile[:pos], append([]*models.Card{c}, g.DrawPile[pos:]...)...)
			continue
		}
		c.Revealed = true
		g.DiscardPile = append(g.DiscardPile, c)
		break
	}
}

// popDraw removes the top draw-pile card without reshuffling.
func (g *Game) popDraw() *models.Card {
	if len(g.DrawPile) == 0 {
		return nil
	}
	c := g.DrawPile[0]
	g.DrawPile = g.DrawPile[1:]
	return c
}

// DeckSize is the total card count of the round, the conserved quantity:
// |draw| + |discard| + non-nil hand slots + the outstanding drawn card.
func (g *Game) DeckSize() int {
	return g.deckSize
}

// CurrentPlayer returns the seat whose turn it is.
func (g *Game) CurrentPlayer() *models.Player {
	return g.Players[g.CurrentPlayerIndex]
}

// PlayerByID finds a seat by user ID, or nil.
func (g *Game) PlayerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SeatOf returns the seat index for a user ID, or -1.
func (g *Game) SeatOf(id uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// fireEvent broadcasts an event to all connected players. Lock held.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event only to a specific player. Lock held.
func (g *Game) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	p := g.PlayerByID(playerID)
	if p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction publishes the transition to the historian queue. Lock held.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil && g.Logger != nil {
			g.Logger.Warnf("game %s: historian publish failed for action %d: %v", g.ID, rec.ActionIndex, err)
		}
	}(record)
}

// commit records the last committed transition for animation-tagged deltas.
func (g *Game) commit(t LastActionType, playerID uuid.UUID, slot int) {
	g.LastAction = &LastAction{Type: t, PlayerID: playerID, SlotIndex: slot}
}

// RemovePlayer drops a seat mid-round so the remaining players can continue.
// The departing hand and any outstanding drawn card go to the bottom of the
// draw pile to keep the card pool intact. Returns false if the seat is
// unknown or the round already finished.
func (g *Game) RemovePlayer(playerID uuid.UUID) bool {
	seat := g.SeatOf(playerID)
	if seat == -1 || g.Phase == PhaseFinished {
		return false
	}
	p := g.Players[seat]
	for i, c := range p.Hand {
		if c != nil {
			c.Revealed = false
			c.LockCount = 0
			g.DrawPile = append(g.DrawPile, c)
			p.Hand[i] = nil
		}
	}
	if seat == g.CurrentPlayerIndex && g.DrawnCard != nil {
		g.DrawnCard.Revealed = false
		g.DrawPile = append(g.DrawPile, g.DrawnCard)
		g.DrawnCard = nil
		g.drawnFromDiscard = false
		g.pendingSwapCard = nil
	}
	g.Players = append(g.Players[:seat], g.Players[seat+1:]...)
	g.initialReveals = append(g.initialReveals[:seat], g.initialReveals[seat+1:]...)
	if g.FinisherIndex > seat {
		g.FinisherIndex--
	} else if g.FinisherIndex == seat {
		g.FinisherIndex = -1
	}
	if g.CurrentPlayerIndex >= len(g.Players) {
		g.CurrentPlayerIndex = 0
	} else if seat < g.CurrentPlayerIndex {
		g.CurrentPlayerIndex--
	}
	g.logAction(playerID, "player_removed", nil)

	if len(g.Players) < 2 && g.Phase != PhaseFinished {
		g.finishRound()
		return true
	}
	if seat == g.CurrentPlayerIndex {
		// Departing player held the turn; hand it to whoever now sits there.
		g.TurnPhase = TurnDraw
		g.broadcastPlayerTurn()
	}
	return true
}

// broadcastPlayerTurn notifies all players whose turn it is now. Lock held.
func (g *Game) broadcastPlayerTurn() {
	if g.Phase == PhaseFinished || len(g.Players) == 0 {
		return
	}
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: &EventUser{ID: g.CurrentPlayer().ID},
		Payload: map[string]interface{}{
			"turn":      g.TurnID,
			"turnPhase": string(g.TurnPhase),
		},
	})
}
