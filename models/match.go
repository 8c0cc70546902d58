package models

import (
	"time"
)

type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// Match is the immutable audit record of one settlement call. It is created
// inside the same transaction that applies the ledger mutations, so an
// orphaned match without its transfer can never be observed.
type Match struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	RoomCode    *string `gorm:"size:6;index" json:"room_code,omitempty"`
	GameID      string  `gorm:"index;not null" json:"game_id"`
	SponsorCode *string `gorm:"index" json:"sponsor_code,omitempty"`
	Mode        string  `gorm:"type:varchar(32);not null" json:"mode"`
	StakeUnits  int     `gorm:"not null;default:1" json:"stake_units"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Parts []MatchParticipant `gorm:"foreignKey:MatchID" json:"parts,omitempty"`
}

type MatchParticipant struct {
	ID      uint    `gorm:"primaryKey" json:"-"`
	MatchID string  `gorm:"type:uuid;index;not null" json:"match_id"`
	UserID  string  `gorm:"type:uuid;index;not null" json:"user_id"`
	Outcome Outcome `gorm:"type:varchar(8);not null" json:"outcome"`
}
