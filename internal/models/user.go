package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`

	// Progression side effects: 1 XP per round win in normal mode, a fixed
	// bonus for the daily challenge (at most once per calendar day).
	Level int `json:"level"`
	XP    int `json:"xp"`

	LastDailyBonus time.Time `json:"last_daily_bonus,omitempty"`
}
