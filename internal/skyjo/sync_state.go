package skyjo

import (
	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
)

// SyncPlayer is a player's public view inside a SyncState snapshot.
type SyncPlayer struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Connected bool         `json:"connected"`
	IsBot     bool         `json:"isBot"`
	// Hand always has HandSize entries; eliminated slots are null.
	Hand []*SyncCard `json:"hand"`
}

// SyncCard is a card as seen by a specific viewer. Face-down cards expose
// only their ID so clients can track movement without learning values.
type SyncCard struct {
	ID        uuid.UUID          `json:"id"`
	Revealed  bool               `json:"revealed"`
	Value     *int               `json:"value,omitempty"`
	Special   models.SpecialType `json:"special,omitempty"`
	LockCount int                `json:"lockCount,omitempty"`
}

// SyncState is the authoritative snapshot sent to one player on join,
// reconnect or desync. Every field is obfuscated for that viewer: hidden
// cards carry no value, and the outstanding drawn card is detailed only when
// the viewer drew it or everyone saw it come off the discard pile.
type SyncState struct {
	GameID          uuid.UUID          `json:"gameId"`
	Phase           Phase              `json:"phase"`
	TurnPhase       TurnPhase          `json:"turnPhase"`
	TurnID          int                `json:"turn"`
	CurrentPlayerID uuid.UUID          `json:"currentPlayerId"`
	Players         []SyncPlayer       `json:"players"`
	DrawPileSize    int                `json:"drawPileSize"`
	DiscardTop      *SyncCard          `json:"discardTop,omitempty"`
	DiscardSize     int                `json:"discardSize"`
	DrawnCard       *SyncCard          `json:"drawnCard,omitempty"`
	LastAction      *LastAction        `json:"lastAction,omitempty"`
	ChestResults    map[uuid.UUID]int  `json:"chestResults,omitempty"`
	ValidActions    ActionSet          `json:"validActions"`
	BonusMode       bool               `json:"bonusMode"`
}

// SnapshotFor builds the obfuscated SyncState for one viewer. Lock held.
func (g *Game) SnapshotFor(viewerID uuid.UUID) *SyncState {
	st := &SyncState{
		GameID:       g.ID,
		Phase:        g.Phase,
		TurnPhase:    g.TurnPhase,
		TurnID:       g.TurnID,
		DrawPileSize: len(g.DrawPile),
		DiscardSize:  len(g.DiscardPile),
		LastAction:   g.LastAction,
		ValidActions: g.ValidActions(g.SeatOf(viewerID)),
		BonusMode:    g.Options.BonusMode,
	}
	if len(g.Players) > 0 && g.CurrentPlayerIndex < len(g.Players) {
		st.CurrentPlayerID = g.CurrentPlayer().ID
	}
	if len(g.DiscardPile) > 0 {
		st.DiscardTop = openCard(g.DiscardPile[len(g.DiscardPile)-1])
	}
	if g.DrawnCard != nil {
		if viewerID == g.CurrentPlayer().ID || g.drawnFromDiscard {
			st.DrawnCard = openCard(g.DrawnCard)
		} else {
			st.DrawnCard = &SyncCard{ID: g.DrawnCard.ID}
		}
	}
	if g.Phase == PhaseRevealingChests || g.Phase == PhaseFinished {
		if len(g.ChestResults) > 0 {
			st.ChestResults = g.ChestResults
		}
	}
	for _, p := range g.Players {
		sp := SyncPlayer{
			ID:        p.ID,
			Name:      p.Name,
			Connected: p.Connected,
			IsBot:     p.IsBot,
			Hand:      make([]*SyncCard, models.HandSize),
		}
		for i, c := range p.Hand {
			if c == nil {
				continue
			}
			if c.Revealed {
				sp.Hand[i] = openCard(c)
			} else {
				sp.Hand[i] = &SyncCard{ID: c.ID}
			}
		}
		st.Players = append(st.Players, sp)
	}
	return st
}

// SyncToPlayer pushes a fresh snapshot to one player. Lock held.
func (g *Game) SyncToPlayer(viewerID uuid.UUID) {
	g.fireEventToPlayer(viewerID, GameEvent{
		Type:  EventPrivateSyncState,
		State: g.SnapshotFor(viewerID),
	})
}

func openCard(c *models.Card) *SyncCard {
	v := c.Value
	return &SyncCard{
		ID:        c.ID,
		Revealed:  true,
		Value:     &v,
		Special:   c.Special,
		LockCount: c.LockCount,
	}
}
