package services

import (
	"errors"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SponsorService struct {
	DB  *gorm.DB
	Cfg EconomyConfig
}

func NewSponsorService(db *gorm.DB, cfg EconomyConfig) *SponsorService {
	return &SponsorService{DB: db, Cfg: cfg}
}

func (s *SponsorService) listSponsors() ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := s.DB.Where("active = ?", true).Order("name ASC").Find(&sponsors).Error
	return sponsors, err
}

func (s *SponsorService) getSponsorWithGames(code string) (*models.Sponsor, []models.SponsorGame, error) {
	var sponsor models.Sponsor
	if err := s.DB.First(&sponsor, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSponsorNotFound
		}
		return nil, nil, err
	}
	var games []models.SponsorGame
	if err := s.DB.Preload("Game").
		Where("sponsor_code = ?", code).
		Order("game_id ASC").
		Find(&games).Error; err != nil {
		return nil, nil, err
	}
	return &sponsor, games, nil
}

// joinSponsor attaches the user to the sponsor and seeds a wallet for every
// sponsored game. Seeding is idempotent: existing wallets keep their pearls.
func (s *SponsorService) joinSponsor(userID, code string) error {
	var sponsor models.Sponsor
	if err := s.DB.First(&sponsor, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSponsorNotFoundOrInactive
		}
		return err
	}
	if !sponsor.Active {
		return ErrSponsorNotFoundOrInactive
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var membership models.UserSponsor
		if err := tx.Where(models.UserSponsor{UserID: userID, SponsorCode: code}).
			FirstOrCreate(&membership).Error; err != nil {
			return err
		}
		var games []models.SponsorGame
		if err := tx.Where("sponsor_code = ?", code).Find(&games).Error; err != nil {
			return err
		}
		for _, g := range games {
			if err := ensureWalletTx(tx, userID, code, g.GameID, s.Cfg.WalletStartPearls); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---- fiber handlers ----

func (s *SponsorService) ListSponsors(c *fiber.Ctx) error {
	sponsors, err := s.listSponsors()
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Sponsors", sponsors)
}

func (s *SponsorService) GetSponsor(c *fiber.Ctx) error {
	sponsor, games, err := s.getSponsorWithGames(c.Params("code"))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Sponsor", fiber.Map{"sponsor": sponsor, "games": games})
}

func (s *SponsorService) JoinSponsor(c *fiber.Ctx) error {
	if err := s.joinSponsor(currentUserID(c), c.Params("code")); err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Joined sponsor", fiber.Map{"ok": true})
}
