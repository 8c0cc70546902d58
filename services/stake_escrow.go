package services

import (
	"errors"

	"game-rooms-system/models"

	"gorm.io/gorm"
)

// Stake escrow: per-(room, user) credit reservations held out of the
// spendable balance until the room settles. All helpers run inside the
// caller's transaction — a stake replace or settlement is never observable
// half-applied.

// reserveStake replaces any existing reservation for the user in this room:
// the old amount is refunded to the balance, the new amount debited, and the
// stake row rewritten, as one atomic sequence.
func reserveStake(tx *gorm.DB, roomCode, userID string, amount int) error {
	var old models.RoomStake
	err := tx.Where("room_code = ? AND user_id = ?", roomCode, userID).First(&old).Error
	switch {
	case err == nil:
		res := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("credit_points", gorm.Expr("credit_points + ?", old.Amount))
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&models.RoomStake{}, old.ID).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first stake for this user in this room
	default:
		return err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("credit_points", gorm.Expr("credit_points - ?", amount)).Error; err != nil {
		return err
	}
	return tx.Create(&models.RoomStake{RoomCode: roomCode, UserID: userID, Amount: amount}).Error
}

// stakeSettlement describes what settleStakes did, for the audit record.
type stakeSettlement struct {
	Refunds     map[string]int `json:"refunds"`
	Shares      map[string]int `json:"shares"`
	Pool        int            `json:"pool"`
	NoTransfer  bool           `json:"noTransfer"`
	Note        string         `json:"note,omitempty"`
	TotalStakes int            `json:"totalStakes"`
}

// settleStakes consumes the room's reservations for the given participants:
// each winner's own stake is refunded in full, the losers' stakes are pooled
// and split evenly across winners with the integer remainder going entirely
// to the first winner in input order. Consumed reservations are deleted.
//
// Degenerate outcomes (winners without losers, or losers without winners)
// transfer nothing: every participant's stake is refunded and released so no
// reservation is left in limbo, and the audit meta carries a note.
func settleStakes(tx *gorm.DB, roomCode string, winners, losers []string) (*stakeSettlement, error) {
	var stakes []models.RoomStake
	if err := tx.Where("room_code = ?", roomCode).Find(&stakes).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string]models.RoomStake, len(stakes))
	for _, st := range stakes {
		byUser[st.UserID] = st
	}

	out := &stakeSettlement{Refunds: map[string]int{}, Shares: map[string]int{}}
	for _, st := range stakes {
		out.TotalStakes += st.Amount
	}

	refund := func(userID string) error {
		st, ok := byUser[userID]
		if !ok || st.Amount == 0 {
			if ok {
				return tx.Delete(&models.RoomStake{}, st.ID).Error
			}
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("credit_points", gorm.Expr("credit_points + ?", st.Amount)).Error; err != nil {
			return err
		}
		out.Refunds[userID] = st.Amount
		return tx.Delete(&models.RoomStake{}, st.ID).Error
	}

	if len(winners) == 0 || len(losers) == 0 {
		out.NoTransfer = true
		out.Note = "no transfer because winners or losers are empty"
		for _, uid := range append(append([]string{}, winners...), losers...) {
			if err := refund(uid); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	// winners get their own reservation back
	for _, uid := range winners {
		if err := refund(uid); err != nil {
			return nil, err
		}
	}

	// losers' reservations form the pool
	for _, uid := range losers {
		st, ok := byUser[uid]
		if !ok {
			continue
		}
		out.Pool += st.Amount
		if err := tx.Delete(&models.RoomStake{}, st.ID).Error; err != nil {
			return nil, err
		}
	}

	base := out.Pool / len(winners)
	rem := out.Pool % len(winners)
	for i, uid := range winners {
		share := base
		if i == 0 {
			share += rem
		}
		out.Shares[uid] = share
		if share == 0 {
			continue
		}
		if err := tx.Model(&models.User{}).Where("id = ?", uid).
			Update("credit_points", gorm.Expr("credit_points + ?", share)).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}
