package models

import (
	"time"
)

// Game is an opaque identifier from the engine's point of view. IDs are
// slugs derived from the display name so that non-latin names (the catalog
// is mostly Arabic) stay URL-safe.
type Game struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Category string `json:"category"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
