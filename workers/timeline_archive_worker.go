package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"gorm.io/gorm"
)

// TimelineArchiver exports old timeline events to object storage in JSON
// batches and marks them archived. It only ever reads the audit trail —
// nothing downstream of it feeds back into the engine.
type TimelineArchiver struct {
	DB        *gorm.DB
	Store     *utils.ObjectStore
	BatchSize int
	MinAge    time.Duration
}

func NewTimelineArchiver(db *gorm.DB, store *utils.ObjectStore) *TimelineArchiver {
	return &TimelineArchiver{
		DB:        db,
		Store:     store,
		BatchSize: 500,
		MinAge:    7 * 24 * time.Hour,
	}
}

// archiveBatch exports at most BatchSize unarchived events older than MinAge.
// Returns how many events it archived.
func (a *TimelineArchiver) archiveBatch(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-a.MinAge)

	var events []models.TimelineEvent
	err := a.DB.Where("archived = ? AND created_at < ?", false, cutoff).
		Order("id ASC").Limit(a.BatchSize).
		Find(&events).Error
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(events)
	if err != nil {
		return 0, err
	}

	key := fmt.Sprintf("timeline/%s/events-%d-%d.json",
		time.Now().UTC().Format("2006-01-02"), events[0].ID, events[len(events)-1].ID)
	if _, err := a.Store.Upload(ctx, key, body, "application/json"); err != nil {
		return 0, err
	}

	ids := make([]uint, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	// flip the flag only after the object landed; re-upload is harmless,
	// a lost batch is not
	if err := a.DB.Model(&models.TimelineEvent{}).Where("id IN ?", ids).
		Update("archived", true).Error; err != nil {
		return 0, err
	}
	return len(events), nil
}

// PollTimeline runs the archiver until the context is cancelled.
func PollTimeline(ctx context.Context, archiver *TimelineArchiver, pollInterval time.Duration) {
	log.Println("Starting timeline archive polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Timeline archive polling stopped.")
			return
		case <-ticker.C:
			n, err := archiver.archiveBatch(ctx)
			if err != nil {
				log.Printf("❌ Error archiving timeline batch: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("📦 Archived %d timeline event(s).", n)
			}
		}
	}
}
