package models

import (
	"time"
)

const XPPerLevel = 100

type UserProgress struct {
	UserID      string    `db:"user_id" json:"userId"`
	Level       int       `db:"level" json:"level"`
	XP          int       `db:"xp" json:"xp"`
	Streak      int       `db:"streak" json:"streak"`
	LastActive  time.Time `db:"last_active" json:"lastActive"`
	SolvedCount int       `db:"solved_count" json:"solvedCount"`
}

// NewUserProgress returns the row a user starts with.
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:      userID,
		Level:       LevelForXP(0),
		XP:          0,
		Streak:      1,
		LastActive:  now,
		SolvedCount: 0,
	}
}

// LevelForXP is the only source of a level value: floor(xp/100) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Award applies a first-pass reward in place.
func (p *UserProgress) Award(amount int, now time.Time) {
	p.XP += amount
	p.Level = LevelForXP(p.XP)
	p.LastActive = now
	p.SolvedCount++
}
