package services

import (
	"testing"

	"game-rooms-system/models"

	"gorm.io/gorm"
)

func seedStake(t *testing.T, db *gorm.DB, roomCode, userID string, amount int) {
	t.Helper()
	if err := db.Create(&models.RoomStake{RoomCode: roomCode, UserID: userID, Amount: amount}).Error; err != nil {
		t.Fatalf("seed stake %s/%s: %v", roomCode, userID, err)
	}
}

func TestSettleStakesRemainderToFirstWinner(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"w1", "w2", "w3", "l1", "l2"} {
		seedUser(t, db, id, 0, 0)
	}
	// losers' stakes pool to 10; w2 never staked
	seedStake(t, db, "ROOM01", "w1", 2)
	seedStake(t, db, "ROOM01", "w3", 1)
	seedStake(t, db, "ROOM01", "l1", 6)
	seedStake(t, db, "ROOM01", "l2", 4)

	var dist *stakeSettlement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		dist, err = settleStakes(tx, "ROOM01", []string{"w1", "w2", "w3"}, []string{"l1", "l2"})
		return err
	})
	if err != nil {
		t.Fatalf("settleStakes: %v", err)
	}

	if dist.Pool != 10 {
		t.Fatalf("pool: got=%d want=10", dist.Pool)
	}
	// 10 / 3 = 3 each, remainder 1 goes entirely to the first winner
	wantShares := map[string]int{"w1": 4, "w2": 3, "w3": 3}
	for uid, want := range wantShares {
		if got := dist.Shares[uid]; got != want {
			t.Fatalf("share of %s: got=%d want=%d", uid, got, want)
		}
	}
	if dist.NoTransfer {
		t.Fatal("regular settlement must transfer")
	}

	// winners get their own reservation back on top of the share
	if got := creditsOf(t, db, "w1"); got != 6 {
		t.Fatalf("w1 credits: got=%d want=6 (2 refund + 4 share)", got)
	}
	if got := creditsOf(t, db, "w2"); got != 3 {
		t.Fatalf("w2 credits: got=%d want=3", got)
	}
	if got := creditsOf(t, db, "w3"); got != 4 {
		t.Fatalf("w3 credits: got=%d want=4 (1 refund + 3 share)", got)
	}
	// losers were debited when they staked; settlement moves their pool, not their balance
	for _, uid := range []string{"l1", "l2"} {
		if got := creditsOf(t, db, uid); got != 0 {
			t.Fatalf("%s credits: got=%d want=0", uid, got)
		}
	}

	var left int64
	if err := db.Model(&models.RoomStake{}).Where("room_code = ?", "ROOM01").Count(&left).Error; err != nil {
		t.Fatalf("count stakes: %v", err)
	}
	if left != 0 {
		t.Fatalf("consumed reservations must be deleted, %d left", left)
	}
}

func TestSettleStakesDegenerateRefundsParticipants(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"w1", "w2", "np"} {
		seedUser(t, db, id, 0, 0)
	}
	seedStake(t, db, "ROOM02", "w1", 2)
	seedStake(t, db, "ROOM02", "np", 7) // staked but not reported in the outcome

	var dist *stakeSettlement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		dist, err = settleStakes(tx, "ROOM02", []string{"w1", "w2"}, nil)
		return err
	})
	if err != nil {
		t.Fatalf("settleStakes: %v", err)
	}

	if !dist.NoTransfer || dist.Note == "" {
		t.Fatalf("degenerate outcome must be a noted no-transfer, got %+v", dist)
	}
	if got := creditsOf(t, db, "w1"); got != 2 {
		t.Fatalf("w1 must be refunded: got=%d want=2", got)
	}
	if got := creditsOf(t, db, "w2"); got != 0 {
		t.Fatalf("w2 never staked, nothing to refund: got=%d want=0", got)
	}
	if got := creditsOf(t, db, "np"); got != 0 {
		t.Fatalf("non-participant must not be touched: got=%d want=0", got)
	}

	var npStakes int64
	if err := db.Model(&models.RoomStake{}).Where("room_code = ? AND user_id = ?", "ROOM02", "np").
		Count(&npStakes).Error; err != nil {
		t.Fatalf("count np stakes: %v", err)
	}
	if npStakes != 1 {
		t.Fatalf("non-participant reservation must survive: got=%d want=1", npStakes)
	}
}

func TestSettleStakesConservation(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		seedUser(t, db, id, 0, 0)
	}
	seedStake(t, db, "ROOM03", "a", 3)
	seedStake(t, db, "ROOM03", "b", 5)
	seedStake(t, db, "ROOM03", "c", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := settleStakes(tx, "ROOM03", []string{"a"}, []string{"b", "c"})
		return err
	})
	if err != nil {
		t.Fatalf("settleStakes: %v", err)
	}

	// every staked point ends up back on some balance
	total := creditsOf(t, db, "a") + creditsOf(t, db, "b") + creditsOf(t, db, "c")
	if total != 9 {
		t.Fatalf("credit conservation: got=%d want=9", total)
	}
	if got := creditsOf(t, db, "a"); got != 9 {
		t.Fatalf("sole winner takes refund + full pool: got=%d want=9", got)
	}
}
