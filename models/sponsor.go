package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sponsor struct {
	Code   string `gorm:"primaryKey" json:"code"`
	Name   string `gorm:"not null" json:"name"`
	Active bool   `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SponsorGame declares a game sponsor-eligible and carries the advertised
// prize for that board.
type SponsorGame struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	SponsorCode string          `gorm:"uniqueIndex:idx_sponsor_game;not null" json:"sponsor_code"`
	GameID      string          `gorm:"uniqueIndex:idx_sponsor_game;not null" json:"game_id"`
	PrizeAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"prize_amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Game Game `gorm:"foreignKey:GameID" json:"game,omitempty"`
}

// UserSponsor attaches a user to a sponsor program.
type UserSponsor struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	UserID      string `gorm:"type:uuid;uniqueIndex:idx_user_sponsor;not null" json:"user_id"`
	SponsorCode string `gorm:"uniqueIndex:idx_user_sponsor;not null" json:"sponsor_code"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// SponsorGameWallet holds pearls, a currency scoped to one sponsor+game
// pair and independent of the global score. The starting balance is applied
// exactly once, on first creation; later touches never reset it. Pearls may
// go negative — no floor is enforced at this layer.
type SponsorGameWallet struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	UserID      string `gorm:"type:uuid;uniqueIndex:idx_wallet_key;not null" json:"user_id"`
	SponsorCode string `gorm:"uniqueIndex:idx_wallet_key;not null" json:"sponsor_code"`
	GameID      string `gorm:"uniqueIndex:idx_wallet_key;not null" json:"game_id"`
	Pearls      int    `gorm:"not null;default:0" json:"pearls"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Game    Game    `gorm:"foreignKey:GameID" json:"game,omitempty"`
	Sponsor Sponsor `gorm:"foreignKey:SponsorCode" json:"sponsor,omitempty"`
}
