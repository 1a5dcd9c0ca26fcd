package models

import "github.com/google/uuid"

// SpecialType identifies the action attached to a bonus-mode card.
type SpecialType string

const (
	SpecialNone      SpecialType = ""
	SpecialSwap      SpecialType = "swap"
	SpecialBlackHole SpecialType = "black_hole"
	SpecialChest     SpecialType = "chest"
)

// CursedValue is the face value of the cursed skull. Drawing one forces a
// replacement, and revealing one locks the slot for LockTurns turns.
const CursedValue = 20

// LockTurns is the lock counter applied when a cursed skull is revealed.
const LockTurns = 3

// Card is a single Skyjo card. Value is meaningless for Chest cards until
// end-of-game resolution; see skyjo.GenerateChestResults.
type Card struct {
	ID       uuid.UUID   `json:"id"`
	Value    int         `json:"value"`
	Special  SpecialType `json:"special,omitempty"`
	Revealed bool        `json:"revealed"`

	// LockCount > 0 marks the card immune to replacement. Only revealed
	// cursed skulls carry a lock; it ticks down at the owner's turn start.
	LockCount int `json:"lockCount,omitempty"`
}

// MatchValue is the value used for column-elimination matching. Chest cards
// match as 0 regardless of their eventual resolved value.
func (c *Card) MatchValue() int {
	if c.Special == SpecialChest {
		return 0
	}
	return c.Value
}

// IsCursed reports whether this is a value-20 cursed skull.
func (c *Card) IsCursed() bool {
	return c.Special == SpecialNone && c.Value == CursedValue
}

// IsActionCard reports whether the card resolves as an action rather than a
// hand card. Chests sit in hands, so they do not count.
func (c *Card) IsActionCard() bool {
	return c.Special == SpecialSwap || c.Special == SpecialBlackHole
}
