package models

import (
	"time"
)

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusRunning RoomStatus = "running"
	RoomStatusClosed  RoomStatus = "closed"
)

type TeamSide string

const (
	TeamNone TeamSide = ""
	TeamA    TeamSide = "A"
	TeamB    TeamSide = "B"
)

// Room is identified by a 6-character human-readable code. The unique index
// on Code is the authoritative uniqueness guarantee; the generator loop in
// the room service is only a best-effort pre-check.
type Room struct {
	Code       string     `gorm:"primaryKey;size:6" json:"code"`
	GameID     string     `gorm:"index;not null" json:"game_id"`
	HostUserID string     `gorm:"type:uuid;not null" json:"host_user_id"`
	Status     RoomStatus `gorm:"type:varchar(16);not null;default:'waiting'" json:"status"`

	TargetWinPoints *int       `json:"target_win_points,omitempty"`
	AllowZeroCredit bool       `gorm:"not null" json:"allow_zero_credit"`
	TimerSec        *int       `json:"timer_sec,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Players []RoomPlayer `gorm:"foreignKey:RoomCode;references:Code" json:"players,omitempty"`
	Stakes  []RoomStake  `gorm:"foreignKey:RoomCode;references:Code" json:"stakes,omitempty"`
}

// RoomPlayer is a membership record. At most one leader per (room, team).
type RoomPlayer struct {
	ID       uint     `gorm:"primaryKey" json:"-"`
	RoomCode string   `gorm:"size:6;uniqueIndex:idx_room_player;not null" json:"room_code"`
	UserID   string   `gorm:"type:uuid;uniqueIndex:idx_room_player;not null" json:"user_id"`
	Team     TeamSide `gorm:"type:varchar(2);default:''" json:"team"`
	IsLeader bool     `gorm:"default:false" json:"is_leader"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// RoomStake reserves credit out of the user's spendable balance until the
// room settles or the stake is replaced. CreditPoints + active stakes is
// conserved across any sequence of stake replacements.
type RoomStake struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	RoomCode string `gorm:"size:6;uniqueIndex:idx_room_stake;not null" json:"room_code"`
	UserID   string `gorm:"type:uuid;uniqueIndex:idx_room_stake;not null" json:"user_id"`
	Amount   int    `gorm:"not null" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
