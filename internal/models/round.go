package models

import "github.com/google/uuid"

// Round is the scoring artifact of one finished round. RawScores are the
// plain hand sums; Scores carry the finisher doubling rule applied.
type Round struct {
	ID               uuid.UUID         `json:"id"`
	RawScores        map[uuid.UUID]int `json:"rawScores"`
	Scores           map[uuid.UUID]int `json:"scores"`
	FinisherID       uuid.UUID         `json:"finisherId"`
	IsStrictlyLowest bool              `json:"isStrictlyLowest"`
}

// GameRecord is the append-only archive artifact produced once per completed
// session.
type GameRecord struct {
	GameID   uuid.UUID         `json:"gameId"`
	Players  []uuid.UUID       `json:"players"`
	Rounds   []Round           `json:"rounds"`
	Totals   map[uuid.UUID]int `json:"totals"`
	WinnerID uuid.UUID         `json:"winnerId"`
}
