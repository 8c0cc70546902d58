package services

import (
	"log"
	"time"

	"game-rooms-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// roomCloseGrace is how long after the countdown ends a running room stays
// open for result submission before being closed.
const roomCloseGrace = time.Hour

// StartRoomCloseScheduler closes running rooms whose play window ended more
// than the grace period ago. Rooms are only marked closed, never deleted.
func (s *RoomService) StartRoomCloseScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var rooms []models.Room
			err := s.DB.Where("status = ? AND started_at IS NOT NULL", models.RoomStatusRunning).
				Find(&rooms).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			now := time.Now()
			for _, r := range rooms {
				end := roomEndsAt(&r)
				if end == nil || now.Sub(*end) < roomCloseGrace {
					continue
				}
				code := r.Code
				err := s.DB.Transaction(func(tx *gorm.DB) error {
					if err := tx.Model(&models.Room{}).Where("code = ?", code).
						Update("status", models.RoomStatusClosed).Error; err != nil {
						return err
					}
					return appendTimeline(tx, models.EventRoomClosed, &code, nil, nil,
						map[string]any{"endedAt": end.UTC()})
				})
				if err != nil {
					log.Printf("[Scheduler] Failed to close room %s: %v", code, err)
				} else {
					log.Printf("✅ Auto-closed room: %s", code)
				}
			}
		}),
	)
}
