package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"game-rooms-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Room{},
		&models.RoomPlayer{},
		&models.RoomStake{},
		&models.Sponsor{},
		&models.SponsorGame{},
		&models.UserSponsor{},
		&models.SponsorGameWallet{},
		&models.Match{},
		&models.MatchParticipant{},
		&models.TimelineEvent{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string, credits, score int) {
	t.Helper()
	user := models.User{
		ID:             id,
		Email:          fmt.Sprintf("%s@test.local", id),
		DisplayName:    id,
		PasswordHash:   "x",
		CreditPoints:   credits,
		PermanentScore: score,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedGame(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	if err := db.Create(&models.Game{ID: id, Name: id, Category: "general"}).Error; err != nil {
		t.Fatalf("seed game %s: %v", id, err)
	}
}

func creditsOf(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("load user %s: %v", id, err)
	}
	return user.CreditPoints
}

func scoreOf(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("load user %s: %v", id, err)
	}
	return user.PermanentScore
}

func pearlsOf(t *testing.T, db *gorm.DB, userID, sponsorCode, gameID string) int {
	t.Helper()
	var w models.SponsorGameWallet
	err := db.Where("user_id = ? AND sponsor_code = ? AND game_id = ?", userID, sponsorCode, gameID).
		First(&w).Error
	if err != nil {
		t.Fatalf("load wallet %s/%s/%s: %v", userID, sponsorCode, gameID, err)
	}
	return w.Pearls
}

func countEvents(t *testing.T, db *gorm.DB, kind string) int {
	t.Helper()
	var n int64
	if err := db.Model(&models.TimelineEvent{}).Where("kind = ?", kind).Count(&n).Error; err != nil {
		t.Fatalf("count %s events: %v", kind, err)
	}
	return int(n)
}

func intPtr(n int) *int { return &n }
