package config

import (
	"time"

	"github.com/r0zar/streakwatch/internal/infra/cache"
)

// AppConfig represents the top-level configuration. One engine instance is
// built per ledger partition; cross-partition state never shares cache keys.
type AppConfig struct {
	Server    ServerConfig      `yaml:"server"`
	Partition string            `yaml:"partition"` // e.g. "mainnet", "testnet"
	Logging   LoggingConfig     `yaml:"logging"`
	Redis     cache.RedisConfig `yaml:"redis"`
	Indexer   IndexerConfig     `yaml:"indexer"`
	Sync      SyncConfig        `yaml:"sync"`
	Incentive IncentiveConfig   `yaml:"incentive"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// IndexerConfig holds settings for the remote event-log indexer.
type IndexerConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Block height lookups are cached for HeightTTL. When the endpoint is
	// unreachable the height is estimated from the highest cached event block
	// plus HeightSafetyMargin, and StaticHeight is the last-resort default.
	HeightTTL          time.Duration `yaml:"height_ttl"`
	HeightSafetyMargin uint64        `yaml:"height_safety_margin"`
	StaticHeight       uint64        `yaml:"static_height"`
}

// SyncConfig holds settings for the incremental event-log sync.
type SyncConfig struct {
	PageSize        int           `yaml:"page_size"`
	MaxCallsPerSync int           `yaml:"max_calls_per_sync"` // latency bound, not a protocol requirement
	EventTTL        time.Duration `yaml:"event_ttl"`
	StateTTL        time.Duration `yaml:"state_ttl"`
}

// RewardTier maps a minimum streak length to a fixed reward amount.
type RewardTier struct {
	MinStreak int    `yaml:"min_streak"`
	Amount    uint64 `yaml:"amount"`
}

// IncentiveConfig holds the program parameters: the block-time model, claim
// cooldown, streak tolerance, analytics cache TTLs and reward tiers.
type IncentiveConfig struct {
	BlocksPerDay       uint64        `yaml:"blocks_per_day"`
	SecondsPerBlock    uint64        `yaml:"seconds_per_block"`
	CooldownBlocks     uint64        `yaml:"cooldown_blocks"`
	GapToleranceBlocks uint64        `yaml:"gap_tolerance_blocks"`
	UserTTL            time.Duration `yaml:"user_ttl"`
	GlobalTTL          time.Duration `yaml:"global_ttl"`
	FallbackDailyRate  float64       `yaml:"fallback_daily_rate"`
	RewardTiers        []RewardTier  `yaml:"reward_tiers"`
}

// RewardForStreak returns the reward amount unlocked at the given streak
// length. Tiers are matched highest threshold first.
func (c IncentiveConfig) RewardForStreak(streak int) uint64 {
	var best RewardTier
	for _, tier := range c.RewardTiers {
		if streak >= tier.MinStreak && tier.MinStreak >= best.MinStreak {
			best = tier
		}
	}
	return best.Amount
}
