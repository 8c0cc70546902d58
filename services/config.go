package services

import (
	"os"
	"strconv"
)

// GlobalPolicy selects which global-mode arithmetic a non-sponsor,
// non-staked settlement uses. Both policies are kept as independent
// strategies; the integrator picks the default via GLOBAL_POLICY.
type GlobalPolicy string

const (
	PolicyFixed       GlobalPolicy = "fixed"
	PolicyQuorumGated GlobalPolicy = "quorum"
)

// EconomyConfig carries every point-economy constant so the engine stays
// unit-testable with alternate economies. Values are injected at
// construction, never read from globals.
type EconomyConfig struct {
	RoomCreateCost    int
	RoomJoinCost      int
	WalletStartPearls int
	DefaultTimerSec   int
	LeaderboardLimit  int
	GlobalPolicy      GlobalPolicy
}

func DefaultEconomyConfig() EconomyConfig {
	return EconomyConfig{
		RoomCreateCost:    5,
		RoomJoinCost:      1,
		WalletStartPearls: 5,
		DefaultTimerSec:   600,
		LeaderboardLimit:  100,
		GlobalPolicy:      PolicyQuorumGated,
	}
}

// LoadEconomyConfig reads overrides from the environment on top of the
// defaults. Invalid numbers fall back silently to the default value.
func LoadEconomyConfig() EconomyConfig {
	cfg := DefaultEconomyConfig()
	cfg.RoomCreateCost = envInt("ROOM_CREATE_COST", cfg.RoomCreateCost)
	cfg.RoomJoinCost = envInt("ROOM_JOIN_COST", cfg.RoomJoinCost)
	cfg.WalletStartPearls = envInt("WALLET_START_PEARLS", cfg.WalletStartPearls)
	cfg.DefaultTimerSec = envInt("DEFAULT_TIMER_SEC", cfg.DefaultTimerSec)
	cfg.LeaderboardLimit = envInt("LEADERBOARD_LIMIT", cfg.LeaderboardLimit)
	if p := os.Getenv("GLOBAL_POLICY"); p == string(PolicyFixed) {
		cfg.GlobalPolicy = PolicyFixed
	}
	return cfg
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
