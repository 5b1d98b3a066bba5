package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no backing
// file, useful for tests and embedded use.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Partition == "" {
		cfg.Partition = "mainnet"
	}

	if cfg.Indexer.RequestTimeout == 0 {
		cfg.Indexer.RequestTimeout = 10 * time.Second
	}
	if cfg.Indexer.HeightTTL == 0 {
		cfg.Indexer.HeightTTL = time.Minute
	}
	if cfg.Indexer.HeightSafetyMargin == 0 {
		cfg.Indexer.HeightSafetyMargin = 10
	}
	if cfg.Indexer.StaticHeight == 0 {
		cfg.Indexer.StaticHeight = 150_000
	}

	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 50
	}
	if cfg.Sync.MaxCallsPerSync == 0 {
		cfg.Sync.MaxCallsPerSync = 20
	}
	if cfg.Sync.EventTTL == 0 {
		cfg.Sync.EventTTL = 5 * time.Minute
	}
	if cfg.Sync.StateTTL == 0 {
		cfg.Sync.StateTTL = 24 * time.Hour
	}

	if cfg.Incentive.BlocksPerDay == 0 {
		cfg.Incentive.BlocksPerDay = 17_280
	}
	if cfg.Incentive.SecondsPerBlock == 0 {
		cfg.Incentive.SecondsPerBlock = 5
	}
	if cfg.Incentive.CooldownBlocks == 0 {
		cfg.Incentive.CooldownBlocks = 17_280
	}
	if cfg.Incentive.GapToleranceBlocks == 0 {
		cfg.Incentive.GapToleranceBlocks = 25_920
	}
	if cfg.Incentive.UserTTL == 0 {
		cfg.Incentive.UserTTL = time.Minute
	}
	if cfg.Incentive.GlobalTTL == 0 {
		cfg.Incentive.GlobalTTL = 2 * time.Minute
	}
	if cfg.Incentive.FallbackDailyRate == 0 {
		cfg.Incentive.FallbackDailyRate = 50_000_000
	}
	if len(cfg.Incentive.RewardTiers) == 0 {
		cfg.Incentive.RewardTiers = []RewardTier{
			{MinStreak: 0, Amount: 50_000_000},
			{MinStreak: 4, Amount: 75_000_000},
			{MinStreak: 8, Amount: 100_000_000},
			{MinStreak: 15, Amount: 150_000_000},
		}
	}
}
