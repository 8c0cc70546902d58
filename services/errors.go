package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Business-rule rejections surfaced verbatim to the caller. These are not
// retryable; only storage-level transaction failures are.
var (
	ErrEmptyMatch                = errors.New("EMPTY_MATCH")
	ErrNoParticipants            = errors.New("NO_PARTICIPANTS")
	ErrUserNotFound              = errors.New("USER_NOT_FOUND")
	ErrRoomNotFound              = errors.New("ROOM_NOT_FOUND")
	ErrResultsLocked             = errors.New("RESULTS_LOCKED_UNTIL_TIMER_ENDS")
	ErrSponsorNotFoundOrInactive = errors.New("SPONSOR_NOT_FOUND_OR_INACTIVE")
	ErrSponsorNotFound           = errors.New("SPONSOR_NOT_FOUND")
	ErrGameNotSponsored          = errors.New("GAME_NOT_SPONSORED")
	ErrNotEnoughCredits          = errors.New("NOT_ENOUGH_CREDITS")
	ErrRoomNotJoinable           = errors.New("ROOM_NOT_JOINABLE")
	ErrOnlyHostCanStart          = errors.New("ONLY_HOST_CAN_START")
	ErrOnlyHostCanAssignTeams    = errors.New("ONLY_HOST_CAN_ASSIGN_TEAMS")
	ErrOnlyHostCanSetLeader      = errors.New("ONLY_HOST_CAN_SET_LEADER")
	ErrAlreadyStarted            = errors.New("ALREADY_STARTED")
	ErrInvalidStake              = errors.New("INVALID_STAKE")
	ErrStakeOnlyBeforeStart      = errors.New("STAKE_ONLY_BEFORE_START")
	ErrTeamsLockedAfterStart     = errors.New("TEAMS_LOCKED_AFTER_START")
	ErrPlayerNotInRoom           = errors.New("PLAYER_NOT_IN_ROOM")
	ErrLeaderMustBeInTeam        = errors.New("LEADER_MUST_BE_IN_TEAM")
	ErrInvalidTeam               = errors.New("INVALID_TEAM")

	ErrEmailExists        = errors.New("EMAIL_EXISTS")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
)

// httpStatus maps a business error to the response status used by the
// handler methods. Unknown errors are treated as internal.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrSponsorNotFound),
		errors.Is(err, ErrSponsorNotFoundOrInactive),
		errors.Is(err, ErrPlayerNotInRoom):
		return fiber.StatusNotFound
	case errors.Is(err, ErrResultsLocked),
		errors.Is(err, ErrOnlyHostCanStart),
		errors.Is(err, ErrOnlyHostCanAssignTeams),
		errors.Is(err, ErrOnlyHostCanSetLeader):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrEmptyMatch),
		errors.Is(err, ErrNoParticipants),
		errors.Is(err, ErrGameNotSponsored),
		errors.Is(err, ErrNotEnoughCredits),
		errors.Is(err, ErrRoomNotJoinable),
		errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrInvalidStake),
		errors.Is(err, ErrStakeOnlyBeforeStart),
		errors.Is(err, ErrTeamsLockedAfterStart),
		errors.Is(err, ErrLeaderMustBeInTeam),
		errors.Is(err, ErrInvalidTeam),
		errors.Is(err, ErrEmailExists):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
