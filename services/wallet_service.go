package services

import (
	"errors"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// WalletService owns the pearls ledger: per-(user, sponsor, game) wallets,
// lazily created at a fixed starting balance.
type WalletService struct {
	DB  *gorm.DB
	Cfg EconomyConfig
}

func NewWalletService(db *gorm.DB, cfg EconomyConfig) *WalletService {
	return &WalletService{DB: db, Cfg: cfg}
}

// ensureWalletTx is get-or-create, not get-or-reset: the starting balance is
// applied only when the row is first created.
func ensureWalletTx(tx *gorm.DB, userID, sponsorCode, gameID string, startPearls int) error {
	var w models.SponsorGameWallet
	return tx.Where(models.SponsorGameWallet{UserID: userID, SponsorCode: sponsorCode, GameID: gameID}).
		Attrs(models.SponsorGameWallet{Pearls: startPearls}).
		FirstOrCreate(&w).Error
}

// EnsureWallet validates sponsor/game eligibility, attaches the user to the
// sponsor and returns the wallet, creating it on first touch.
func (s *WalletService) EnsureWallet(userID, sponsorCode, gameID string) (*models.SponsorGameWallet, error) {
	var sponsor models.Sponsor
	if err := s.DB.First(&sponsor, "code = ?", sponsorCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorNotFoundOrInactive
		}
		return nil, err
	}
	if !sponsor.Active {
		return nil, ErrSponsorNotFoundOrInactive
	}
	var n int64
	if err := s.DB.Model(&models.SponsorGame{}).
		Where("sponsor_code = ? AND game_id = ?", sponsorCode, gameID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrGameNotSponsored
	}

	var wallet models.SponsorGameWallet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var membership models.UserSponsor
		if err := tx.Where(models.UserSponsor{UserID: userID, SponsorCode: sponsorCode}).
			FirstOrCreate(&membership).Error; err != nil {
			return err
		}
		return tx.Where(models.SponsorGameWallet{UserID: userID, SponsorCode: sponsorCode, GameID: gameID}).
			Attrs(models.SponsorGameWallet{Pearls: s.Cfg.WalletStartPearls}).
			FirstOrCreate(&wallet).Error
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Adjust applies a signed delta. Negative balances are permitted here;
// callers must not rely on non-negativity.
func (s *WalletService) Adjust(userID, sponsorCode, gameID string, delta int) error {
	return s.DB.Model(&models.SponsorGameWallet{}).
		Where("user_id = ? AND sponsor_code = ? AND game_id = ?", userID, sponsorCode, gameID).
		Update("pearls", gorm.Expr("pearls + ?", delta)).Error
}

// Leaderboard returns wallets for one sponsor+game board ordered by
// descending pearls, bounded by the configured page size.
func (s *WalletService) Leaderboard(sponsorCode, gameID string, limit int) ([]models.SponsorGameWallet, error) {
	if limit <= 0 || limit > s.Cfg.LeaderboardLimit {
		limit = s.Cfg.LeaderboardLimit
	}
	var wallets []models.SponsorGameWallet
	err := s.DB.Preload("User").
		Where("sponsor_code = ? AND game_id = ?", sponsorCode, gameID).
		Order("pearls DESC").Limit(limit).
		Find(&wallets).Error
	return wallets, err
}

func (s *WalletService) UserWallets(userID, sponsorCode string) ([]models.SponsorGameWallet, error) {
	var wallets []models.SponsorGameWallet
	err := s.DB.Preload("Game").
		Where("user_id = ? AND sponsor_code = ?", userID, sponsorCode).
		Order("game_id ASC").
		Find(&wallets).Error
	return wallets, err
}

func (s *WalletService) UserAllWallets(userID string) ([]models.SponsorGameWallet, error) {
	var wallets []models.SponsorGameWallet
	err := s.DB.Preload("Game").Preload("Sponsor").
		Where("user_id = ?", userID).
		Order("sponsor_code ASC, game_id ASC").
		Find(&wallets).Error
	return wallets, err
}

// ---- fiber handlers ----

func (s *WalletService) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", s.Cfg.LeaderboardLimit)
	wallets, err := s.Leaderboard(c.Params("code"), c.Params("gameId"), limit)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Leaderboard", wallets)
}

func (s *WalletService) GetUserWallets(c *fiber.Ctx) error {
	wallets, err := s.UserWallets(currentUserID(c), c.Params("code"))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Wallets", wallets)
}

func (s *WalletService) GetAllUserWallets(c *fiber.Ctx) error {
	wallets, err := s.UserAllWallets(currentUserID(c))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Wallets", wallets)
}

func (s *WalletService) EnsureWalletHandler(c *fiber.Ctx) error {
	wallet, err := s.EnsureWallet(currentUserID(c), c.Params("code"), c.Params("gameId"))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Wallet ready", wallet)
}
