// Package scoring turns finished-round hand sums into round scores,
// cumulative totals and a final ranking.
package scoring

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
)

// DefaultThreshold ends the session once any cumulative total reaches it.
const DefaultThreshold = 100

// RoundScore applies the finisher rule to one player's raw hand sum. The
// finisher doubles their score unless they ended strictly lowest; everyone
// else scores the raw sum unmodified. Doubling is unconditional on the sign
// of the sum, so a negative finisher sum doubles downward.
func RoundScore(rawSum int, isFinisher, isStrictlyLowest bool) int {
	if isFinisher && !isStrictlyLowest {
		return rawSum * 2
	}
	return rawSum
}

// StrictlyLowest reports whether the finisher's raw sum beats every other
// player outright. A tie with any other player is not strictly lowest and
// still triggers doubling.
func StrictlyLowest(finisherID uuid.UUID, raw map[uuid.UUID]int) bool {
	fs, ok := raw[finisherID]
	if !ok {
		return false
	}
	for id, s := range raw {
		if id == finisherID {
			continue
		}
		if s <= fs {
			return false
		}
	}
	return true
}

// ScoreRound builds the Round artifact from raw sums and the finisher.
// A nil finisher (round ended without anyone going out, e.g. pile
// exhaustion) scores every player raw.
func ScoreRound(raw map[uuid.UUID]int, finisherID uuid.UUID) models.Round {
	lowest := finisherID != uuid.Nil && StrictlyLowest(finisherID, raw)
	scores := make(map[uuid.UUID]int, len(raw))
	for id, sum := range raw {
		scores[id] = RoundScore(sum, id == finisherID, lowest)
	}
	rawCopy := make(map[uuid.UUID]int, len(raw))
	for id, sum := range raw {
		rawCopy[id] = sum
	}
	return models.Round{
		RawScores:        rawCopy,
		Scores:           scores,
		FinisherID:       finisherID,
		IsStrictlyLowest: lowest,
	}
}

// Accumulate folds one round's scores into the running totals in place.
func Accumulate(totals map[uuid.UUID]int, round models.Round) {
	for id, s := range round.Scores {
		totals[id] += s
	}
}

// GameOver reports whether any cumulative total has reached the threshold.
func GameOver(totals map[uuid.UUID]int, threshold int) bool {
	for _, t := range totals {
		if t >= threshold {
			return true
		}
	}
	return false
}

// RoundWinners returns the IDs holding the lowest score of a round; more
// than one on a tie.
func RoundWinners(round models.Round) []uuid.UUID {
	var winners []uuid.UUID
	best := 0
	for id, s := range round.Scores {
		if len(winners) == 0 || s < best {
			winners = []uuid.UUID{id}
			best = s
		} else if s == best {
			winners = append(winners, id)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].String() < winners[j].String() })
	return winners
}

// RankPlayers orders players best-first at game end: lowest cumulative total
// wins; ties break by fewer round wins, then by seat order. The tie-break is
// a deliberate policy so rematches of identical score sheets rank the same
// way every time.
func RankPlayers(seats []uuid.UUID, totals map[uuid.UUID]int, roundWins map[uuid.UUID]int) []uuid.UUID {
	ranked := make([]uuid.UUID, len(seats))
	copy(ranked, seats)
	seatOf := make(map[uuid.UUID]int, len(seats))
	for i, id := range seats {
		seatOf[id] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if totals[a] != totals[b] {
			return totals[a] < totals[b]
		}
		if roundWins[a] != roundWins[b] {
			return roundWins[a] < roundWins[b]
		}
		return seatOf[a] < seatOf[b]
	})
	return ranked
}
