package services

import (
	"errors"
	"log"
	"time"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettlementMode is the tagged settlement strategy. All four policies from
// the economy's history are preserved as independent, testable strategies;
// selection is driven by the caller's fields and the configured default.
type SettlementMode string

const (
	ModeGlobalFixed         SettlementMode = "GLOBAL_FIXED"
	ModeGlobalQuorumGated   SettlementMode = "GLOBAL_QUORUM_GATED"
	ModeStakeRedistribution SettlementMode = "STAKE_REDISTRIBUTION"
	ModeSponsorWallet       SettlementMode = "SPONSOR_WALLET"
)

const (
	minStakeUnits = 1
	maxStakeUnits = 3
)

// SettlementService turns a reported outcome into one atomic mutation of the
// affected ledgers plus one audit match and one timeline event.
type SettlementService struct {
	DB  *gorm.DB
	Cfg EconomyConfig
}

func NewSettlementService(db *gorm.DB, cfg EconomyConfig) *SettlementService {
	return &SettlementService{DB: db, Cfg: cfg}
}

type MatchInput struct {
	RoomCode    string   `json:"roomCode"`
	SponsorCode string   `json:"sponsorCode"`
	GameID      string   `json:"gameId"`
	Winners     []string `json:"winners"`
	Losers      []string `json:"losers"`
	StakeUnits  *int     `json:"stakeUnits"`
}

func clampStakeUnits(v *int) int {
	if v == nil {
		return minStakeUnits
	}
	n := *v
	if n < minStakeUnits {
		return minStakeUnits
	}
	if n > maxStakeUnits {
		return maxStakeUnits
	}
	return n
}

func compactIDs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func dedupIDs(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// CreateMatch validates the reported outcome, selects a settlement mode and
// applies it. Validation happens before any write; the match record, the
// ledger mutations and the timeline event share one transaction, so a failed
// transfer never leaves an orphaned audit row.
func (s *SettlementService) CreateMatch(in MatchInput) (*models.Match, error) {
	if len(in.Winners) == 0 && len(in.Losers) == 0 {
		return nil, ErrEmptyMatch
	}
	// duplicates must not refund a reservation twice or inflate the pool
	winners := dedupIDs(compactIDs(in.Winners))
	losers := dedupIDs(compactIDs(in.Losers))

	// lock window
	var room *models.Room
	if in.RoomCode != "" {
		var r models.Room
		if err := s.DB.First(&r, "code = ?", in.RoomCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoomNotFound
			}
			return nil, err
		}
		if roomLocked(&r, time.Now()) {
			return nil, ErrResultsLocked
		}
		room = &r
	}

	// sponsor eligibility
	if in.SponsorCode != "" {
		var sponsor models.Sponsor
		if err := s.DB.First(&sponsor, "code = ?", in.SponsorCode).Error; err != nil {
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
			Where("sponsor_code = ? AND game_id = ?", in.SponsorCode, in.GameID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrGameNotSponsored
		}
	}

	// participants
	ids := dedupIDs(winners, losers)
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}
	var found int64
	if err := s.DB.Model(&models.User{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return nil, err
	}
	if found != int64(len(ids)) {
		return nil, ErrUserNotFound
	}

	n := clampStakeUnits(in.StakeUnits)
	mode, err := s.selectMode(in.SponsorCode, room)
	if err != nil {
		return nil, err
	}

	// Quorum is evaluated once, from a snapshot read before the transaction.
	// Two settlements racing on the same room may both observe "met"; that
	// stale-but-consistent read is an accepted trade-off of this engine.
	teamOf := map[string]models.TeamSide{}
	quorum := map[models.TeamSide]TeamQuorum{}
	if mode == ModeGlobalQuorumGated && room != nil {
		var players []models.RoomPlayer
		if err := s.DB.Preload("User").Where("room_code = ?", room.Code).Find(&players).Error; err != nil {
			return nil, err
		}
		for _, p := range players {
			teamOf[p.UserID] = p.Team
		}
		quorum = buildTeamQuorum(players)
	}

	match := &models.Match{
		ID:          uuid.NewString(),
		RoomCode:    strPtr(in.RoomCode),
		GameID:      in.GameID,
		SponsorCode: strPtr(in.SponsorCode),
		Mode:        string(mode),
		StakeUnits:  n,
	}
	for _, uid := range winners {
		match.Parts = append(match.Parts, models.MatchParticipant{UserID: uid, Outcome: models.OutcomeWin})
	}
	for _, uid := range losers {
		match.Parts = append(match.Parts, models.MatchParticipant{UserID: uid, Outcome: models.OutcomeLoss})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}

		meta := map[string]any{
			"mode":       string(mode),
			"winners":    winners,
			"losers":     losers,
			"stakeUnits": n,
		}
		if in.SponsorCode != "" {
			meta["sponsorCode"] = in.SponsorCode
		}

		switch mode {
		case ModeSponsorWallet:
			if err := s.settleSponsorWallets(tx, in.SponsorCode, in.GameID, ids, winners, losers, n); err != nil {
				return err
			}
		case ModeGlobalFixed:
			if err := applyScoreDelta(tx, winners, n); err != nil {
				return err
			}
			if err := applyScoreDelta(tx, losers, -n); err != nil {
				return err
			}
		case ModeGlobalQuorumGated:
			if err := applyScoreDelta(tx, losers, -n); err != nil {
				return err
			}
			awarded, skipped := splitByQuorum(winners, teamOf, quorum)
			if err := applyScoreDelta(tx, awarded, n); err != nil {
				return err
			}
			meta["awarded"] = awarded
			meta["quorumSkipped"] = skipped
		case ModeStakeRedistribution:
			dist, err := settleStakes(tx, room.Code, winners, losers)
			if err != nil {
				return err
			}
			meta["distribution"] = dist.Shares
			meta["refunds"] = dist.Refunds
			meta["pool"] = dist.Pool
			if dist.NoTransfer {
				meta["transfer"] = 0
				meta["note"] = dist.Note
			}
		}

		return appendTimeline(tx, models.EventMatchFinished,
			strPtr(in.RoomCode), strPtr(in.GameID), nil, meta)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏁 Match %s settled (%s, N=%d, %d winners / %d losers)",
		match.ID, mode, n, len(winners), len(losers))
	return match, nil
}

// selectMode: sponsor settlements always go to the sponsor wallet; a room
// with live reservations settles by redistribution; everything else uses the
// configured global policy.
func (s *SettlementService) selectMode(sponsorCode string, room *models.Room) (SettlementMode, error) {
	if sponsorCode != "" {
		return ModeSponsorWallet, nil
	}
	if room != nil {
		var stakes int64
		if err := s.DB.Model(&models.RoomStake{}).Where("room_code = ?", room.Code).Count(&stakes).Error; err != nil {
			return "", err
		}
		if stakes > 0 {
			return ModeStakeRedistribution, nil
		}
	}
	if s.Cfg.GlobalPolicy == PolicyFixed {
		return ModeGlobalFixed, nil
	}
	return ModeGlobalQuorumGated, nil
}

func applyScoreDelta(tx *gorm.DB, ids []string, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	return tx.Model(&models.User{}).Where("id IN ?", ids).
		Update("permanent_score", gorm.Expr("permanent_score + ?", delta)).Error
}

// splitByQuorum applies the quorum gate: unassigned winners always score,
// team winners score only when their team currently satisfies quorum.
func splitByQuorum(winners []string, teamOf map[string]models.TeamSide, quorum map[models.TeamSide]TeamQuorum) (awarded, skipped []string) {
	awarded = make([]string, 0, len(winners))
	for _, uid := range winners {
		team := teamOf[uid]
		if team == models.TeamNone || quorum[team].QuorumMet {
			awarded = append(awarded, uid)
			continue
		}
		skipped = append(skipped, uid)
	}
	return awarded, skipped
}

// settleSponsorWallets ensures every participant has a wallet (seeding the
// starting balance only on first creation), then moves N pearls from each
// loser to each winner. Global score and credit stay untouched.
func (s *SettlementService) settleSponsorWallets(tx *gorm.DB, sponsorCode, gameID string, ids, winners, losers []string, n int) error {
	for _, uid := range ids {
		if err := ensureWalletTx(tx, uid, sponsorCode, gameID, s.Cfg.WalletStartPearls); err != nil {
			return err
		}
	}
	if len(losers) > 0 {
		if err := tx.Model(&models.SponsorGameWallet{}).
			Where("sponsor_code = ? AND game_id = ? AND user_id IN ?", sponsorCode, gameID, losers).
			Update("pearls", gorm.Expr("pearls - ?", n)).Error; err != nil {
			return err
		}
	}
	if len(winners) > 0 {
		if err := tx.Model(&models.SponsorGameWallet{}).
			Where("sponsor_code = ? AND game_id = ? AND user_id IN ?", sponsorCode, gameID, winners).
			Update("pearls", gorm.Expr("pearls + ?", n)).Error; err != nil {
			return err
		}
	}
	return nil
}

// ---- fiber handler ----

func (s *SettlementService) CreateMatchHandler(c *fiber.Ctx) error {
	var in MatchInput
	if err := c.BodyParser(&in); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if in.GameID == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "gameId is required")
	}
	match, err := s.CreateMatch(in)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Match recorded", match)
}
