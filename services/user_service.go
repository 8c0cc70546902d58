package services

import (
	"errors"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// UserStats aggregates win/loss counts from the match audit trail.
type UserStats struct {
	UserID         string  `json:"userId"`
	GameID         *string `json:"gameId"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	PermanentScore int     `json:"permanentScore"`
	CreditPoints   int     `json:"creditPoints"`
}

func (s *UserService) stats(userID, gameID string) (*UserStats, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	type row struct {
		Outcome string
		Cnt     int
	}
	var rows []row
	var err error
	if gameID != "" {
		err = s.DB.Raw(`
			SELECT mp.outcome AS outcome, COUNT(*) AS cnt
			FROM match_participants mp
			JOIN matches m ON m.id = mp.match_id
			WHERE mp.user_id = ? AND m.game_id = ?
			GROUP BY mp.outcome`, userID, gameID).Scan(&rows).Error
	} else {
		err = s.DB.Raw(`
			SELECT mp.outcome AS outcome, COUNT(*) AS cnt
			FROM match_participants mp
			JOIN matches m ON m.id = mp.match_id
			WHERE mp.user_id = ?
			GROUP BY mp.outcome`, userID).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		UserID:         userID,
		GameID:         strPtr(gameID),
		PermanentScore: user.PermanentScore,
		CreditPoints:   user.CreditPoints,
	}
	for _, r := range rows {
		switch models.Outcome(r.Outcome) {
		case models.OutcomeWin:
			stats.Wins = r.Cnt
		case models.OutcomeLoss:
			stats.Losses = r.Cnt
		}
	}
	return stats, nil
}

// ---- fiber handlers ----

func (s *UserService) GetStats(c *fiber.Ctx) error {
	stats, err := s.stats(c.Params("id"), c.Query("gameId"))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "User stats", stats)
}
