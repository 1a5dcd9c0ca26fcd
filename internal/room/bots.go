package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/ai"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// botThinkDelay simulates deliberation before a bot acts so clients can show
// a thinking indicator. Tests shorten it.
var botThinkDelay = 800 * time.Millisecond

// AddBot seats a computer opponent at the room's difficulty. Host only,
// lobby only.
func (r *Room) AddBot(userID uuid.UUID) (uuid.UUID, error) {
	r.Mu.Lock()
	if userID != r.HostUserID {
		r.Mu.Unlock()
		return uuid.Nil, ErrNotHost
	}
	if r.InGame {
		r.Mu.Unlock()
		return uuid.Nil, ErrGameInProgress
	}
	if len(r.Users) >= r.Options.MaxPlayers {
		r.Mu.Unlock()
		return uuid.Nil, ErrRoomFull
	}
	botID := uuid.New()
	r.Users[botID] = &models.User{
		ID:       botID,
		Username: fmt.Sprintf("Bot %d", len(r.agents)+1),
	}
	r.seats = append(r.seats, botID)
	r.agents[botID] = ai.NewAgent(r.Options.Difficulty, 0)
	payload := map[string]interface{}{
		"type":   "room_update",
		"botJoin": botID.String(),
		"status": r.statusPayloadUnsafe(),
	}
	r.Mu.Unlock()
	r.Broadcast(payload)
	return botID, nil
}

// RemoveBot unseats a bot before the game starts.
func (r *Room) RemoveBot(userID, botID uuid.UUID) error {
	r.Mu.Lock()
	if userID != r.HostUserID {
		r.Mu.Unlock()
		return ErrNotHost
	}
	if r.InGame {
		r.Mu.Unlock()
		return ErrGameInProgress
	}
	if _, ok := r.agents[botID]; !ok {
		r.Mu.Unlock()
		return ErrNoGame
	}
	delete(r.agents, botID)
	delete(r.Users, botID)
	r.dropSeatUnsafe(botID)
	payload := map[string]interface{}{
		"type":    "room_update",
		"botLeft": botID.String(),
		"status":  r.statusPayloadUnsafe(),
	}
	r.Mu.Unlock()
	r.Broadcast(payload)
	return nil
}

// driveBots runs every bot move currently pending: initial reveals, then
// full turns while a bot holds the turn. Safe to call after any state
// change; it exits as soon as a human is up.
func (r *Room) driveBots() {
	r.Mu.Lock()
	g := r.Game
	inGame := r.InGame
	r.Mu.Unlock()
	if !inGame || g == nil {
		return
	}

	g.Mu.Lock()
	if g.Phase == skyjo.PhaseInitialReveal {
		for seat, p := range g.Players {
			if !p.IsBot || !g.ValidActions(seat).InitialReveal {
				continue
			}
			if agent := r.agentFor(p.ID); agent != nil {
				if v := agent.RevealInitial(g, seat); v != nil {
					r.Logger.Errorf("bot %s initial reveal rejected: %v", p.ID, v)
				}
			}
		}
	}
	g.Mu.Unlock()

	for i := 0; i < models.HandSize*MaxPlayers*4; i++ {
		g.Mu.Lock()
		if g.Phase != skyjo.PhasePlaying && g.Phase != skyjo.PhaseFinalRound {
			g.Mu.Unlock()
			return
		}
		p := g.CurrentPlayer()
		if !p.IsBot {
			g.Mu.Unlock()
			return
		}
		agent := r.agentFor(p.ID)
		if agent == nil {
			g.Mu.Unlock()
			return
		}
		r.signalThinking(g, p.ID, true)
		g.Mu.Unlock()

		time.Sleep(botThinkDelay)

		g.Mu.Lock()
		if g.Phase != skyjo.PhasePlaying && g.Phase != skyjo.PhaseFinalRound {
			r.signalThinking(g, p.ID, false)
			g.Mu.Unlock()
			return
		}
		if g.CurrentPlayer().ID != p.ID {
			r.signalThinking(g, p.ID, false)
			g.Mu.Unlock()
			continue
		}
		if v := agent.TakeTurn(g); v != nil {
			r.Logger.Errorf("bot %s move rejected: %v", p.ID, v)
			g.EndTurn()
		}
		r.signalThinking(g, p.ID, false)
		g.Mu.Unlock()
	}
}

// signalThinking broadcasts the AI indicator start/stop. Game lock held.
func (r *Room) signalThinking(g *skyjo.Game, botID uuid.UUID, active bool) {
	if g.BroadcastFn == nil {
		return
	}
	g.BroadcastFn(skyjo.GameEvent{
		Type: skyjo.EventPlayerThinking,
		User: &skyjo.EventUser{ID: botID},
		Payload: map[string]interface{}{
			"thinking": active,
		},
	})
}

func (r *Room) agentFor(id uuid.UUID) *ai.Agent {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.agents[id]
}
