package services

import (
	"time"

	"game-rooms-system/models"
)

// Derived room state is recomputed on every read from an immutable snapshot
// of room + players; nothing here is cached or persisted.

// TeamQuorum is the eligibility gate for scoring wins: a team's summed
// permanent score must meet or exceed its player count.
type TeamQuorum struct {
	Required  int  `json:"required"`
	Available int  `json:"available"`
	QuorumMet bool `json:"quorumMet"`
}

func roomEndsAt(room *models.Room) *time.Time {
	if room.StartedAt == nil || room.TimerSec == nil || *room.TimerSec == 0 {
		return nil
	}
	end := room.StartedAt.Add(time.Duration(*room.TimerSec) * time.Second)
	return &end
}

// roomLocked reports whether the mandatory play window is still running.
// The boundary is exclusive: at now == startedAt+timerSec the room is open.
func roomLocked(room *models.Room, now time.Time) bool {
	end := roomEndsAt(room)
	return end != nil && now.Before(*end)
}

func remainingSec(room *models.Room, now time.Time) int {
	end := roomEndsAt(room)
	if end == nil {
		return 0
	}
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	// round up so a lock with 0.5s left still reports 1
	return int((left + time.Second - 1) / time.Second)
}

// buildTeamQuorum derives the quorum for both teams from the player roster.
// required = players on the team, available = sum of their permanent scores.
// Players need their User preloaded.
func buildTeamQuorum(players []models.RoomPlayer) map[models.TeamSide]TeamQuorum {
	out := map[models.TeamSide]TeamQuorum{}
	for _, side := range []models.TeamSide{models.TeamA, models.TeamB} {
		q := TeamQuorum{}
		for _, p := range players {
			if p.Team != side {
				continue
			}
			q.Required++
			q.Available += p.User.PermanentScore
		}
		q.QuorumMet = q.Required > 0 && q.Available >= q.Required
		out[side] = q
	}
	return out
}
