package models

import (
	"time"
)

// User owns both point ledgers: PermanentScore is the cross-sponsor ranking
// value (may go negative), CreditPoints is the spendable balance that funds
// room creation, joins and stakes. Both are mutated only inside room and
// settlement transactions.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string `gorm:"not null" json:"display_name"`
	PasswordHash string `gorm:"not null" json:"-"`

	PermanentScore int `gorm:"not null;default:0" json:"permanent_score"`
	CreditPoints   int `gorm:"not null" json:"credit_points"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
