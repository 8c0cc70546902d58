package services

import (
	"errors"
	"testing"

	"game-rooms-system/models"
)

func TestCreateRoomChargesHost(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "host", 5, 0)
	svc := NewRoomService(db, DefaultEconomyConfig())

	view, err := svc.createRoom("Chess", "host")
	if err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	if len(view.Code) != 6 {
		t.Fatalf("room code length: got=%q want 6 chars", view.Code)
	}
	if view.Status != models.RoomStatusWaiting {
		t.Fatalf("new room status: got=%s want=%s", view.Status, models.RoomStatusWaiting)
	}
	if got := creditsOf(t, db, "host"); got != 0 {
		t.Fatalf("host credits after create: got=%d want=0", got)
	}
	if len(view.Players) != 1 || view.Players[0].UserID != "host" {
		t.Fatalf("host must be the first player, got %+v", view.Players)
	}
	if n := countEvents(t, db, models.EventRoomCreated); n != 1 {
		t.Fatalf("ROOM_CREATED events: got=%d want=1", n)
	}

	seedUser(t, db, "poor", 4, 0)
	if _, err := svc.createRoom("Chess", "poor"); !errors.Is(err, ErrNotEnoughCredits) {
		t.Fatalf("createRoom with 4 credits: got=%v want=%v", err, ErrNotEnoughCredits)
	}
	if got := creditsOf(t, db, "poor"); got != 4 {
		t.Fatalf("rejected host must keep credits: got=%d want=4", got)
	}
}

func TestJoinIsIdempotentAndChargesOnce(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "host", 5, 0)
	seedUser(t, db, "u1", 3, 0)
	seedUser(t, db, "u2", 0, 0)
	svc := NewRoomService(db, DefaultEconomyConfig())

	view, err := svc.createRoom("chess", "host")
	if err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	code := view.Code

	if _, err := svc.join(code, "u1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := svc.join(code, "u1"); err != nil {
		t.Fatalf("re-join must be a no-op: %v", err)
	}
	if got := creditsOf(t, db, "u1"); got != 2 {
		t.Fatalf("u1 credits after double join: got=%d want=2", got)
	}

	// a broke user joins free instead of going negative
	if _, err := svc.join(code, "u2"); err != nil {
		t.Fatalf("zero-credit join: %v", err)
	}
	if got := creditsOf(t, db, "u2"); got != 0 {
		t.Fatalf("u2 credits after free join: got=%d want=0", got)
	}

	final, err := svc.getByCode(code)
	if err != nil {
		t.Fatalf("getByCode: %v", err)
	}
	if len(final.Players) != 3 {
		t.Fatalf("player count: got=%d want=3", len(final.Players))
	}

	if _, err := svc.join("ZZZZZZ", "u1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("join unknown room: got=%v want=%v", err, ErrRoomNotFound)
	}
	if _, err := svc.join(code, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("join as unknown user: got=%v want=%v", err, ErrUserNotFound)
	}
}

func TestSetStakeReplaceConservesCredit(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "host", 5, 0)
	seedUser(t, db, "s", 10, 0)
	svc := NewRoomService(db, DefaultEconomyConfig())

	view, err := svc.createRoom("chess", "host")
	if err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	code := view.Code
	if _, err := svc.join(code, "s"); err != nil {
		t.Fatalf("join: %v", err)
	}
	// s paid the join cost, 9 spendable from here on

	if _, err := svc.setStake(code, "s", 3); err != nil {
		t.Fatalf("setStake 3: %v", err)
	}
	if got := creditsOf(t, db, "s"); got != 6 {
		t.Fatalf("credits after stake 3: got=%d want=6", got)
	}

	// replacing refunds the old amount first
	if _, err := svc.setStake(code, "s", 5); err != nil {
		t.Fatalf("setStake 5: %v", err)
	}
	if got := creditsOf(t, db, "s"); got != 4 {
		t.Fatalf("credits after replace with 5: got=%d want=4", got)
	}

	var stakes []models.RoomStake
	if err := db.Where("room_code = ? AND user_id = ?", code, "s").Find(&stakes).Error; err != nil {
		t.Fatalf("load stakes: %v", err)
	}
	if len(stakes) != 1 || stakes[0].Amount != 5 {
		t.Fatalf("stake rows: got=%+v want one row of 5", stakes)
	}
	if got := creditsOf(t, db, "s") + stakes[0].Amount; got != 9 {
		t.Fatalf("credit + stake must be conserved: got=%d want=9", got)
	}

	if _, err := svc.setStake(code, "s", -1); !errors.Is(err, ErrInvalidStake) {
		t.Fatalf("negative stake: got=%v want=%v", err, ErrInvalidStake)
	}
	if _, err := svc.setStake(code, "s", 100); !errors.Is(err, ErrNotEnoughCredits) {
		t.Fatalf("stake above balance: got=%v want=%v", err, ErrNotEnoughCredits)
	}

	zero := 0
	if _, err := svc.start(code, "host", StartParams{TimerSec: &zero}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.setStake(code, "s", 2); !errors.Is(err, ErrStakeOnlyBeforeStart) {
		t.Fatalf("stake after start: got=%v want=%v", err, ErrStakeOnlyBeforeStart)
	}
}

func TestStartRoom(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "host", 5, 0)
	seedUser(t, db, "other", 5, 0)
	svc := NewRoomService(db, DefaultEconomyConfig())

	view, err := svc.createRoom("chess", "host")
	if err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	code := view.Code

	if _, err := svc.start(code, "other", StartParams{}); !errors.Is(err, ErrOnlyHostCanStart) {
		t.Fatalf("non-host start: got=%v want=%v", err, ErrOnlyHostCanStart)
	}

	started, err := svc.start(code, "host", StartParams{TargetWinPoints: intPtr(21)})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != models.RoomStatusRunning {
		t.Fatalf("status after start: got=%s want=%s", started.Status, models.RoomStatusRunning)
	}
	if started.TimerSec == nil || *started.TimerSec != 600 {
		t.Fatalf("default timer: got=%v want=600", started.TimerSec)
	}
	if started.TargetWinPoints == nil || *started.TargetWinPoints != 21 {
		t.Fatalf("targetWinPoints: got=%v want=21", started.TargetWinPoints)
	}
	if !started.Locked {
		t.Fatal("room with a running timer must report locked")
	}
	if started.RemainingSec <= 0 || started.RemainingSec > 600 {
		t.Fatalf("remaining_sec out of range: got=%d", started.RemainingSec)
	}

	if _, err := svc.start(code, "host", StartParams{}); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("double start: got=%v want=%v", err, ErrAlreadyStarted)
	}

	// timerSec=0 starts without a lock window
	seedUser(t, db, "host2", 5, 0)
	view2, err := svc.createRoom("chess", "host2")
	if err != nil {
		t.Fatalf("createRoom 2: %v", err)
	}
	zero := 0
	started2, err := svc.start(view2.Code, "host2", StartParams{TimerSec: &zero})
	if err != nil {
		t.Fatalf("start with timerSec=0: %v", err)
	}
	if started2.Locked {
		t.Fatal("timerSec=0 must not lock the room")
	}
}

func TestTeamAssignmentAndLeader(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "host", 5, 0)
	seedUser(t, db, "u1", 5, 0)
	seedUser(t, db, "u2", 5, 0)
	svc := NewRoomService(db, DefaultEconomyConfig())

	view, err := svc.createRoom("chess", "host")
	if err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	code := view.Code
	for _, uid := range []string{"u1", "u2"} {
		if _, err := svc.join(code, uid); err != nil {
			t.Fatalf("join %s: %v", uid, err)
		}
	}

	if _, err := svc.setPlayerTeam(code, "u1", "u2", models.TeamA); !errors.Is(err, ErrOnlyHostCanAssignTeams) {
		t.Fatalf("non-host team assign: got=%v want=%v", err, ErrOnlyHostCanAssignTeams)
	}
	if _, err := svc.setPlayerTeam(code, "host", "u1", "C"); !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("invalid team: got=%v want=%v", err, ErrInvalidTeam)
	}
	if _, err := svc.setPlayerTeam(code, "host", "ghost", models.TeamA); !errors.Is(err, ErrPlayerNotInRoom) {
		t.Fatalf("assign non-member: got=%v want=%v", err, ErrPlayerNotInRoom)
	}

	for _, uid := range []string{"u1", "u2"} {
		if _, err := svc.setPlayerTeam(code, "host", uid, models.TeamA); err != nil {
			t.Fatalf("assign %s to A: %v", uid, err)
		}
	}

	// leader must already be on the team
	if _, err := svc.setTeamLeader(code, "host", models.TeamB, "u1"); !errors.Is(err, ErrLeaderMustBeInTeam) {
		t.Fatalf("leader from wrong team: got=%v want=%v", err, ErrLeaderMustBeInTeam)
	}

	if _, err := svc.setTeamLeader(code, "host", models.TeamA, "u1"); err != nil {
		t.Fatalf("set leader u1: %v", err)
	}
	if _, err := svc.setTeamLeader(code, "host", models.TeamA, "u2"); err != nil {
		t.Fatalf("move leader to u2: %v", err)
	}

	var leaders []models.RoomPlayer
	if err := db.Where("room_code = ? AND team = ? AND is_leader = ?", code, models.TeamA, true).
		Find(&leaders).Error; err != nil {
		t.Fatalf("load leaders: %v", err)
	}
	if len(leaders) != 1 || leaders[0].UserID != "u2" {
		t.Fatalf("exactly one leader expected (u2), got %+v", leaders)
	}

	zero := 0
	if _, err := svc.start(code, "host", StartParams{TimerSec: &zero}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.setPlayerTeam(code, "host", "u1", models.TeamB); !errors.Is(err, ErrTeamsLockedAfterStart) {
		t.Fatalf("team change after start: got=%v want=%v", err, ErrTeamsLockedAfterStart)
	}
}
