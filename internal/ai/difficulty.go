package ai

// Difficulty selects a tuning tier. Tiers are strictly ordered: each one
// keeps the previous tier's behavior and adds sharper margins, corner
// geometry and opponent blocking. Bonus is the special-card-enabled tier
// used by the daily challenge.
type Difficulty string

const (
	DifficultyNormal   Difficulty = "NORMAL"
	DifficultyHard     Difficulty = "HARD"
	DifficultyHardcore Difficulty = "HARDCORE"
	DifficultyBonus    Difficulty = "BONUS"
)

// MinValueForColumnElimination is the hard cutoff below which completing a
// column via replacement is not worth it: clearing three low or negative
// cards destroys more points than it saves.
const MinValueForColumnElimination = 3

// tuning carries the per-tier decision weights.
type tuning struct {
	// preferCorners biases hidden-slot picks toward corners, preferEdges
	// toward edges next; both improve future column-building visibility.
	preferCorners bool
	preferEdges   bool

	// excellentMargin is the lead a v <= 0 drawn card needs over the highest
	// revealed card to replace it.
	excellentMargin int

	// goodMargin is the lead a 1..4 drawn card needs over a revealed card.
	goodMargin int

	// discardTakeMax takes the discard top outright at or below this value.
	discardTakeMax int

	// blockOpponents enables the discard-denial heuristic.
	blockOpponents bool

	// sacrificeToBlock additionally allows taking a mediocre discard card
	// purely to deny an opponent a column completion.
	sacrificeToBlock bool
}

// tunings is the tier table. Values are monotone across tiers.
var tunings = map[Difficulty]tuning{
	DifficultyNormal: {
		excellentMargin: 5,
		goodMargin:      4,
		discardTakeMax:  0,
	},
	DifficultyHard: {
		preferCorners:   true,
		excellentMargin: 3,
		goodMargin:      4,
		discardTakeMax:  2,
		blockOpponents:  true,
	},
	DifficultyHardcore: {
		preferCorners:    true,
		preferEdges:      true,
		excellentMargin:  2,
		goodMargin:       4,
		discardTakeMax:   3,
		blockOpponents:   true,
		sacrificeToBlock: true,
	},
	DifficultyBonus: {
		preferCorners:    true,
		preferEdges:      true,
		excellentMargin:  2,
		goodMargin:       4,
		discardTakeMax:   3,
		blockOpponents:   true,
		sacrificeToBlock: true,
	},
}

func (d Difficulty) tuning() tuning {
	if t, ok := tunings[d]; ok {
		return t
	}
	return tunings[DifficultyNormal]
}
