package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Unambiguous alphabet for room codes (no I/O/0/1).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeAttempts = 5

type RoomService struct {
	DB  *gorm.DB
	Cfg EconomyConfig
}

func NewRoomService(db *gorm.DB, cfg EconomyConfig) *RoomService {
	return &RoomService{DB: db, Cfg: cfg}
}

// RoomView is a room snapshot plus the derived fields every read carries.
type RoomView struct {
	models.Room
	Locked       bool                  `json:"locked"`
	RemainingSec int                   `json:"remaining_sec"`
	TeamQuorum   map[string]TeamQuorum `json:"team_quorum"`
}

type StartParams struct {
	TargetWinPoints *int  `json:"targetWinPoints"`
	AllowZeroCredit *bool `json:"allowZeroCredit"`
	TimerSec        *int  `json:"timerSec"`
}

func newRoomCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return string(b)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// ---- core ----

// createRoom charges the host the creation cost, allocates a unique code and
// creates the room with the host as first player, all in one transaction.
// The unique index on rooms.code is authoritative; on a duplicate-key
// conflict the whole transaction is retried with a fresh code.
func (s *RoomService) createRoom(gameID, hostID string) (*RoomView, error) {
	var host models.User
	if err := s.DB.First(&host, "id = ?", hostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if host.CreditPoints < s.Cfg.RoomCreateCost {
		return nil, ErrNotEnoughCredits
	}

	gid := slug.Make(gameID)
	if gid == "" {
		gid = gameID
	}
	game := models.Game{ID: gid}
	if err := s.DB.Where(models.Game{ID: gid}).
		Attrs(models.Game{Name: gameID, Category: "general"}).
		FirstOrCreate(&game).Error; err != nil {
		return nil, err
	}

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code := newRoomCode()
		var taken int64
		if err := s.DB.Model(&models.Room{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			continue
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.User{}).
				Where("id = ? AND credit_points >= ?", hostID, s.Cfg.RoomCreateCost).
				Update("credit_points", gorm.Expr("credit_points - ?", s.Cfg.RoomCreateCost))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotEnoughCredits
			}

			room := models.Room{
				Code:            code,
				GameID:          gid,
				HostUserID:      hostID,
				Status:          models.RoomStatusWaiting,
				AllowZeroCredit: true,
			}
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.RoomPlayer{RoomCode: code, UserID: hostID}).Error; err != nil {
				return err
			}
			return appendTimeline(tx, models.EventRoomCreated, &code, &gid, &hostID,
				map[string]any{"cost": s.Cfg.RoomCreateCost})
		})
		if err == nil {
			log.Printf("🎮 Room %s created by %s (game %s)", code, hostID, gid)
			return s.getByCode(code)
		}
		if isDuplicateKey(err) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not allocate a unique room code after %d attempts", roomCodeAttempts)
}

func (s *RoomService) getByCode(code string) (*RoomView, error) {
	var room models.Room
	err := s.DB.Preload("Players.User").Preload("Stakes").First(&room, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.view(&room), nil
}

func (s *RoomService) view(room *models.Room) *RoomView {
	now := time.Now()
	q := buildTeamQuorum(room.Players)
	return &RoomView{
		Room:         *room,
		Locked:       roomLocked(room, now),
		RemainingSec: remainingSec(room, now),
		TeamQuorum: map[string]TeamQuorum{
			"A": q[models.TeamA],
			"B": q[models.TeamB],
		},
	}
}

// join is idempotent: re-joining is a no-op. The first join charges the join
// cost only when the balance is currently positive, so zero-balance users
// join free instead of going credit-negative.
func (s *RoomService) join(code, userID string) (*RoomView, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var room models.Room
	if err := s.DB.First(&room, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting && room.Status != models.RoomStatusRunning {
		return nil, ErrRoomNotJoinable
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.RoomPlayer
		err := tx.Where("room_code = ? AND user_id = ?", code, userID).First(&existing).Error
		if err == nil {
			return nil // already a member
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		charge := 0
		if user.CreditPoints > 0 {
			charge = s.Cfg.RoomJoinCost
		}
		if charge > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("credit_points", gorm.Expr("credit_points - ?", charge)).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&models.RoomPlayer{RoomCode: code, UserID: userID}).Error; err != nil {
			return err
		}
		return appendTimeline(tx, models.EventRoomJoined, &code, nil, &userID,
			map[string]any{"charged": charge})
	})
	if err != nil {
		return nil, err
	}
	return s.getByCode(code)
}

func (s *RoomService) start(code, hostID string, p StartParams) (*RoomView, error) {
	var room models.Room
	if err := s.DB.First(&room, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.HostUserID != hostID {
		return nil, ErrOnlyHostCanStart
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, ErrAlreadyStarted
	}

	allowZero := true
	if p.AllowZeroCredit != nil {
		allowZero = *p.AllowZeroCredit
	}
	sec := s.Cfg.DefaultTimerSec
	if p.TimerSec != nil {
		sec = *p.TimerSec
	}
	now := time.Now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":            models.RoomStatusRunning,
			"target_win_points": p.TargetWinPoints,
			"allow_zero_credit": allowZero,
			"timer_sec":         sec,
			"started_at":        now,
		}
		if err := tx.Model(&models.Room{}).Where("code = ?", code).Updates(updates).Error; err != nil {
			return err
		}
		return appendTimeline(tx, models.EventRoomStarted, &code, nil, &hostID, map[string]any{
			"targetWinPoints": p.TargetWinPoints,
			"allowZeroCredit": allowZero,
			"timerSec":        sec,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.getByCode(code)
}

// setStake reserves credit against the room's outcome; allowed only before
// start. Replacing an existing stake refunds the old amount and debits the
// new one in the same transaction.
func (s *RoomService) setStake(code, userID string, amount int) (*RoomView, error) {
	if amount < 0 {
		return nil, ErrInvalidStake
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var room models.Room
	if err := s.DB.First(&room, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, ErrStakeOnlyBeforeStart
	}
	if user.CreditPoints < amount {
		return nil, ErrNotEnoughCredits
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := reserveStake(tx, code, userID, amount); err != nil {
			return err
		}
		return appendTimeline(tx, models.EventStakeSet, &code, nil, &userID,
			map[string]any{"amount": amount})
	})
	if err != nil {
		return nil, err
	}
	return s.getByCode(code)
}

func (s *RoomService) setPlayerTeam(code, hostID, playerUserID string, team models.TeamSide) (*RoomView, error) {
	if team != models.TeamA && team != models.TeamB {
		return nil, ErrInvalidTeam
	}
	var room models.Room
	if err := s.DB.First(&room, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.HostUserID != hostID {
		return nil, ErrOnlyHostCanAssignTeams
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, ErrTeamsLockedAfterStart
	}

	var rp models.RoomPlayer
	if err := s.DB.Where("room_code = ? AND user_id = ?", code, playerUserID).First(&rp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotInRoom
		}
		return nil, err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoomPlayer{}).Where("id = ?", rp.ID).
			Update("team", team).Error; err != nil {
			return err
		}
		return appendTimeline(tx, models.EventTeamSet, &code, nil, &playerUserID,
			map[string]any{"team": team})
	})
	if err != nil {
		return nil, err
	}
	return s.getByCode(code)
}

// setTeamLeader clears any existing leader flag for the team before setting
// the new one, keeping the one-leader-per-team invariant.
func (s *RoomService) setTeamLeader(code, hostID string, team models.TeamSide, leaderUserID string) (*RoomView, error) {
	if team != models.TeamA && team != models.TeamB {
		return nil, ErrInvalidTeam
	}
	var room models.Room
	if err := s.DB.First(&room, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.HostUserID != hostID {
		return nil, ErrOnlyHostCanSetLeader
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, ErrTeamsLockedAfterStart
	}

	var rp models.RoomPlayer
	err := s.DB.Where("room_code = ? AND user_id = ?", code, leaderUserID).First(&rp).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || rp.Team != team {
		return nil, ErrLeaderMustBeInTeam
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoomPlayer{}).
			Where("room_code = ? AND team = ?", code, team).
			Update("is_leader", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RoomPlayer{}).Where("id = ?", rp.ID).
			Update("is_leader", true).Error; err != nil {
			return err
		}
		return appendTimeline(tx, models.EventTeamLeaderSet, &code, nil, &leaderUserID,
			map[string]any{"team": team})
	})
	if err != nil {
		return nil, err
	}
	return s.getByCode(code)
}

// ---- fiber handlers ----

func (s *RoomService) CreateRoom(c *fiber.Ctx) error {
	var req struct {
		GameID string `json:"gameId"`
	}
	if err := c.BodyParser(&req); err != nil || req.GameID == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "gameId is required")
	}
	view, err := s.createRoom(req.GameID, currentUserID(c))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Room created 🎮", view)
}

func (s *RoomService) GetRoom(c *fiber.Ctx) error {
	view, err := s.getByCode(c.Params("code"))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Room fetched", view)
}

func (s *RoomService) JoinRoom(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "code is required")
	}
	view, err := s.join(req.Code, currentUserID(c))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Joined room 👌", view)
}

func (s *RoomService) StartRoom(c *fiber.Ctx) error {
	var params StartParams
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&params); err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
		}
	}
	view, err := s.start(c.Params("code"), currentUserID(c), params)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Room started 🚀", view)
}

func (s *RoomService) SetStake(c *fiber.Ctx) error {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	view, err := s.setStake(c.Params("code"), currentUserID(c), req.Amount)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Points set 💰", view)
}

func (s *RoomService) SetPlayerTeam(c *fiber.Ctx) error {
	var req struct {
		PlayerUserID string `json:"playerUserId"`
		Team         string `json:"team"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	view, err := s.setPlayerTeam(c.Params("code"), currentUserID(c), req.PlayerUserID, models.TeamSide(req.Team))
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Team set", view)
}

func (s *RoomService) SetTeamLeader(c *fiber.Ctx) error {
	var req struct {
		Team         string `json:"team"`
		LeaderUserID string `json:"leaderUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	view, err := s.setTeamLeader(c.Params("code"), currentUserID(c), models.TeamSide(req.Team), req.LeaderUserID)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Leader set", view)
}
