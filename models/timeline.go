package models

import (
	"time"

	"gorm.io/datatypes"
)

// Timeline event kinds, one per state-changing operation.
const (
	EventRoomCreated   = "ROOM_CREATED"
	EventRoomJoined    = "ROOM_JOINED"
	EventRoomStarted   = "ROOM_STARTED"
	EventRoomClosed    = "ROOM_CLOSED"
	EventStakeSet      = "STAKE_SET"
	EventTeamSet       = "TEAM_SET"
	EventTeamLeaderSet = "TEAM_LEADER_SET"
	EventMatchFinished = "MATCH_FINISHED"
)

// TimelineEvent is the append-only audit trail. The engine only ever writes
// it; nothing in this service reads it back except the archive exporter.
type TimelineEvent struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	Kind     string         `gorm:"type:varchar(32);index;not null" json:"kind"`
	RoomCode *string        `gorm:"size:6;index" json:"room_code,omitempty"`
	GameID   *string        `json:"game_id,omitempty"`
	UserID   *string        `gorm:"type:uuid" json:"user_id,omitempty"`
	Meta     datatypes.JSON `json:"meta,omitempty"`

	Archived bool `gorm:"default:false;index" json:"archived"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
