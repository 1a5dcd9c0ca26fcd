package models

import (
	"github.com/google/uuid"
)

// HandSize is the fixed number of slots in a Skyjo hand: 3 rows by 4 columns.
// Column c occupies indices {3c, 3c+1, 3c+2}. A nil slot has been eliminated.
const (
	HandSize    = 12
	HandRows    = 3
	HandColumns = 4
)

// Player is one seat in a game. Identity is stable across rounds within a
// session; the hand is re-dealt every round.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Hand      [HandSize]*Card `json:"hand"`
	Connected bool            `json:"connected"`
	IsBot     bool            `json:"isBot"`
	User      *User           `json:"-"`
}

// NewPlayer builds a seat for a human user.
func NewPlayer(user *User) *Player {
	return &Player{
		ID:        user.ID,
		Name:      user.Username,
		Connected: true,
		User:      user,
	}
}

// ColumnIndices returns the three slot indices of column c.
func ColumnIndices(c int) [HandRows]int {
	return [HandRows]int{3 * c, 3*c + 1, 3*c + 2}
}

// ColumnOf returns the column a slot index belongs to.
func ColumnOf(idx int) int {
	return idx / HandRows
}

// IsCornerSlot reports whether a slot sits in a corner of the 3x4 grid.
// Corners give the AI the most column-building visibility.
func IsCornerSlot(idx int) bool {
	switch idx {
	case 0, 2, 9, 11:
		return true
	}
	return false
}

// IsEdgeSlot reports whether a slot sits on the grid's outer ring.
func IsEdgeSlot(idx int) bool {
	row := idx % HandRows
	col := idx / HandRows
	return row == 0 || row == HandRows-1 || col == 0 || col == HandColumns-1
}

// RawSum totals the revealed-and-resolved values of the hand. Eliminated
// (nil) slots contribute 0. Unrevealed cards are counted at face value;
// callers score only at round end when every slot has been revealed.
func (p *Player) RawSum() int {
	sum := 0
	for _, c := range p.Hand {
		if c == nil {
			continue
		}
		sum += c.Value
	}
	return sum
}

// RemainingSlots counts non-nil hand slots.
func (p *Player) RemainingSlots() int {
	n := 0
	for _, c := range p.Hand {
		if c != nil {
			n++
		}
	}
	return n
}

// AllRevealed reports whether every non-nil slot is face up. A hand with
// zero remaining slots counts as fully revealed.
func (p *Player) AllRevealed() bool {
	for _, c := range p.Hand {
		if c != nil && !c.Revealed {
			return false
		}
	}
	return true
}
