package ai

import "github.com/google/uuid"

// OpponentMemory is the agent's private view of what opponents have shown.
// It only records observations any player at the table could have made;
// the agent never peeks at hidden state.
type OpponentMemory struct {
	// revealCounts tracks, per opponent, how often each face value has shown
	// up in their hand.
	revealCounts map[uuid.UUID]map[int]int

	// discardInterest tracks values an opponent has taken from the discard
	// pile, a strong hint of what they are collecting.
	discardInterest map[uuid.UUID]map[int]int
}

// NewOpponentMemory returns an empty memory; call Reset between sessions.
func NewOpponentMemory() *OpponentMemory {
	m := &OpponentMemory{}
	m.Reset()
	return m
}

// Reset clears everything at the start of a new game session.
func (m *OpponentMemory) Reset() {
	m.revealCounts = make(map[uuid.UUID]map[int]int)
	m.discardInterest = make(map[uuid.UUID]map[int]int)
}

// ObserveReveal records a face value an opponent turned face up.
func (m *OpponentMemory) ObserveReveal(opponentID uuid.UUID, value int) {
	bump(m.revealCounts, opponentID, value)
}

// ObserveDiscardTake records that an opponent picked a value off the discard
// pile; they replace with it immediately, so it doubles as a reveal.
func (m *OpponentMemory) ObserveDiscardTake(opponentID uuid.UUID, value int) {
	bump(m.discardInterest, opponentID, value)
	bump(m.revealCounts, opponentID, value)
}

// SeenCount reports how many times a value has shown in an opponent's hand.
func (m *OpponentMemory) SeenCount(opponentID uuid.UUID, value int) int {
	return m.revealCounts[opponentID][value]
}

// WantsValue reports whether an opponent has signaled interest in a value,
// either by showing it twice or by pulling it from the discard pile.
func (m *OpponentMemory) WantsValue(opponentID uuid.UUID, value int) bool {
	if m.discardInterest[opponentID][value] > 0 {
		return true
	}
	return m.revealCounts[opponentID][value] >= 2
}

func bump(table map[uuid.UUID]map[int]int, id uuid.UUID, value int) {
	inner, ok := table[id]
	if !ok {
		inner = make(map[int]int)
		table[id] = inner
	}
	inner[value]++
}
