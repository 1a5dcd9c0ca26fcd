// internal/database/progression.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// XPPerLevel is how much XP a level costs. Levels are derived, never stored
// out of sync with XP.
const XPPerLevel = 10

// DailyBonusXP is the fixed daily-challenge reward, granted at most once per
// calendar day (UTC).
const DailyBonusXP = 5

// GrantRoundWin awards one XP for a round win. When daily is set and the
// user has not yet collected today's bonus, the fixed daily reward is added
// in the same transaction and the bonus timestamp advanced.
func GrantRoundWin(ctx context.Context, userID uuid.UUID, daily bool) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var xp int
		var lastBonus time.Time
		q := `
			SELECT xp, COALESCE(last_daily_bonus, 'epoch'::timestamptz)
			FROM users WHERE id=$1 FOR UPDATE
		`
		if e := tx.QueryRow(ctx, q, userID).Scan(&xp, &lastBonus); e != nil {
			return e
		}

		xp++
		bonusClaimed := false
		if daily && !sameUTCDay(lastBonus, time.Now()) {
			xp += DailyBonusXP
			bonusClaimed = true
		}
		level := xp/XPPerLevel + 1

		if bonusClaimed {
			upd := `UPDATE users SET xp=$1, level=$2, last_daily_bonus=NOW() WHERE id=$3`
			_, e := tx.Exec(ctx, upd, xp, level, userID)
			return e
		}
		upd := `UPDATE users SET xp=$1, level=$2 WHERE id=$3`
		_, e := tx.Exec(ctx, upd, xp, level, userID)
		return e
	})
	if err != nil {
		return fmt.Errorf("tx grant round win: %w", err)
	}
	return nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
