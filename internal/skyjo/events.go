package skyjo

import (
	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventGameRoundStart     GameEventType = "game_round_start"
	EventPlayerInitialFlip  GameEventType = "player_initial_flip"
	EventGamePlayerTurn     GameEventType = "game_player_turn"
	EventPlayerDraw         GameEventType = "player_draw"          // public: source + obfuscated card id
	EventPrivateDraw        GameEventType = "private_draw"         // private: full drawn card
	EventPlayerReplace      GameEventType = "player_replace"       // hand card swapped with drawn card
	EventPlayerDiscard      GameEventType = "player_discard"       // drawn card discarded
	EventPlayerReveal       GameEventType = "player_reveal"        // hand slot flipped face up
	EventPlayerUndoDraw     GameEventType = "player_undo_draw"     // discard draw returned
	EventPlayerSwapAction   GameEventType = "player_swap_action"   // swap special resolved
	EventGameBlackHole      GameEventType = "game_black_hole"      // discard pile swallowed
	EventGameColumnCleared  GameEventType = "game_column_cleared"
	EventGameReshuffle      GameEventType = "game_reshuffle"
	EventGameFinalRound     GameEventType = "game_final_round"
	EventGameChestResults   GameEventType = "game_chest_results"
	EventGameRoundEnd       GameEventType = "game_round_end"
	EventPrivateSyncState   GameEventType = "private_sync_state"
	EventPrivateActionFail  GameEventType = "private_action_fail"
	EventPlayerThinking     GameEventType = "player_thinking" // AI indicator start/stop
)

// LastActionType tags a delta with the logical source/target pair a client
// needs to animate the transition before committing it. A snapshot without a
// LastAction renders the end state with no animation.
type LastActionType string

const (
	ActionDrawPile         LastActionType = "draw_pile"
	ActionDrawDiscard      LastActionType = "draw_discard"
	ActionReplaceCard      LastActionType = "replace_card"
	ActionDiscardDrawn     LastActionType = "discard_drawn"
	ActionDiscardAndReveal LastActionType = "discard_and_reveal"
	ActionUndoDrawDiscard  LastActionType = "undo_draw_discard"
)

// LastAction describes the most recent committed transition for animation.
type LastAction struct {
	Type     LastActionType `json:"type"`
	PlayerID uuid.UUID      `json:"playerId"`
	// SlotIndex is the hand slot involved, or -1 when no slot applies.
	SlotIndex int `json:"slotIndex"`
}

// EventUser identifies the acting player inside a GameEvent.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventCard carries card details inside a GameEvent. Hidden cards are sent
// with only their ID.
type EventCard struct {
	ID      uuid.UUID          `json:"id"`
	Value   *int               `json:"value,omitempty"`
	Special models.SpecialType `json:"special,omitempty"`
	Idx     *int               `json:"idx,omitempty"`
}

// GameEvent holds data about an event broadcast to the clients in a
// consistent format.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`
	Action  *LastAction            `json:"lastAction,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *SyncState             `json:"state,omitempty"`
}
