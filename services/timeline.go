package services

import (
	"encoding/json"

	"game-rooms-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// appendTimeline writes one audit event inside the caller's transaction so
// the event commits or rolls back together with the mutation it describes.
func appendTimeline(tx *gorm.DB, kind string, roomCode, gameID, userID *string, meta map[string]any) error {
	ev := models.TimelineEvent{
		Kind:     kind,
		RoomCode: roomCode,
		GameID:   gameID,
		UserID:   userID,
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		ev.Meta = datatypes.JSON(raw)
	}
	return tx.Create(&ev).Error
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
