// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Nyaru01/skyjo/internal/models"
)

// ArchiveGame persists the final record of a completed session: the game row
// with its full round-by-round history as JSON, plus one result row per
// seated player. Idempotent on replays of the same game ID.
func ArchiveGame(ctx context.Context, record models.GameRecord) error {
	roundsJSON, err := json.Marshal(record.Rounds)
	if err != nil {
		return fmt.Errorf("failed to marshal rounds: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, winner_id, rounds, end_time)
			VALUES ($1, 'completed', $2, $3, NOW())
			ON CONFLICT (id)
			DO UPDATE SET status='completed', winner_id=$2, rounds=$3, end_time=NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, record.GameID, record.WinnerID, roundsJSON); e != nil {
			return e
		}

		for _, playerID := range record.Players {
			q := `
				INSERT INTO game_results (game_id, player_id, total_score, did_win)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET total_score=$3, did_win=$4
			`
			total := record.Totals[playerID]
			didWin := playerID == record.WinnerID
			if _, e := tx.Exec(ctx, q, record.GameID, playerID, total, didWin); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx archive game: %w", err)
	}
	return nil
}
