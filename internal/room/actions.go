package room

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// Game action names accepted over the wire.
const (
	ActionRevealInitial    = "reveal_initial"
	ActionDrawPile         = "draw_pile"
	ActionDrawDiscard      = "draw_discard"
	ActionReplace          = "replace_card"
	ActionDiscardDrawn     = "discard_drawn"
	ActionRevealCard       = "reveal_card"
	ActionDiscardAndReveal = "discard_and_reveal"
	ActionUndoDrawDiscard  = "undo_draw_discard"
	ActionPlayActionCard   = "play_action_card"
	ActionPerformSwap      = "perform_swap"
	ActionResolveBlackHole = "resolve_black_hole"
	ActionResync           = "resync"
)

// ApplyAction validates and applies one player-issued game action. Engine
// rejections come back as *skyjo.RuleViolation and are also pushed to the
// acting player as a private failure event; the room state is untouched.
func (r *Room) ApplyAction(userID uuid.UUID, act models.GameAction) error {
	r.Mu.Lock()
	g := r.Game
	inGame := r.InGame
	r.Mu.Unlock()
	if !inGame || g == nil {
		return ErrNoGame
	}

	g.Mu.Lock()
	err := r.applyActionLocked(g, userID, act)
	if err != nil {
		if v, ok := err.(*skyjo.RuleViolation); ok {
			g.BroadcastToPlayerFn(userID, skyjo.GameEvent{
				Type: skyjo.EventPrivateActionFail,
				Payload: map[string]interface{}{
					"kind":   string(v.Kind),
					"op":     v.Op,
					"reason": v.Reason,
				},
			})
		}
	}
	g.Mu.Unlock()

	if err == nil {
		go r.driveBots()
	}
	return err
}

// applyActionLocked dispatches with the game lock held.
func (r *Room) applyActionLocked(g *skyjo.Game, userID uuid.UUID, act models.GameAction) error {
	seat := g.SeatOf(userID)
	if seat == -1 {
		return fmt.Errorf("user %s holds no seat in game %s", userID, g.ID)
	}

	switch act.ActionType {
	case ActionResync:
		g.SyncToPlayer(userID)
		return nil
	case ActionRevealInitial:
		i := intParam(act.Payload, "slot")
		j := intParam(act.Payload, "slot2")
		if v := g.RevealInitialCards(seat, i, j); v != nil {
			return v
		}
		return nil
	}

	// Every other action belongs to the seat holding the turn.
	if g.CurrentPlayerIndex != seat {
		return &skyjo.RuleViolation{
			Kind:   skyjo.ViolationWrongPhase,
			Op:     act.ActionType,
			Reason: "not your turn",
		}
	}

	var v *skyjo.RuleViolation
	switch act.ActionType {
	case ActionDrawPile:
		v = g.DrawFromPile()
	case ActionDrawDiscard:
		v = g.DrawFromDiscard()
	case ActionReplace:
		v = g.ReplaceCard(intParam(act.Payload, "slot"))
	case ActionDiscardDrawn:
		v = g.DiscardDrawn()
	case ActionRevealCard:
		v = g.RevealCard(intParam(act.Payload, "slot"))
	case ActionDiscardAndReveal:
		v = g.DiscardAndReveal(intParam(act.Payload, "slot"))
	case ActionUndoDrawDiscard:
		v = g.UndoDrawDiscard()
	case ActionPlayActionCard:
		v = g.PlayActionCard()
	case ActionPerformSwap:
		v = g.PerformSwap(
			intParam(act.Payload, "slot"),
			intParam(act.Payload, "targetSeat"),
			intParam(act.Payload, "targetSlot"),
		)
	case ActionResolveBlackHole:
		v = g.ResolveBlackHole()
	default:
		return fmt.Errorf("unknown game action %q", act.ActionType)
	}
	if v != nil {
		return v
	}
	return nil
}

// intParam reads an integer out of a decoded JSON payload; absent or
// malformed values come back as -1 and fail target validation downstream.
func intParam(payload map[string]interface{}, key string) int {
	if payload == nil {
		return -1
	}
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return -1
	}
}
