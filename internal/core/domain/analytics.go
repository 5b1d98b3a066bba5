package domain

// Confidence is a qualitative label attached to an estimated rate, reflecting
// sample size and recency of the data used.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RateMethod names the estimation window a daily rate was derived from.
type RateMethod string

const (
	RateMethodRecent7Day  RateMethod = "recent_7day"
	RateMethodRecent30Day RateMethod = "recent_30day"
	RateMethodHistorical  RateMethod = "historical_all"
	RateMethodFallback    RateMethod = "fallback_default"
)

// UserAnalytics is the derived per-user view. It is recomputed from event
// history on demand and only ever cached, never persisted as source of truth.
type UserAnalytics struct {
	Address            string  `json:"address"`
	TotalClaims        int     `json:"total_claims"`
	TotalClaimed       uint64  `json:"total_claimed"`
	CurrentStreak      int     `json:"current_streak"`
	MaxStreak          int     `json:"max_streak"`
	LastClaimBlock     uint64  `json:"last_claim_block"`
	LastClaimTimestamp int64   `json:"last_claim_timestamp,omitempty"` // epoch ms, estimated from block delta
	CanClaimNow        bool    `json:"can_claim_now"`
	NextClaimTime      int64   `json:"next_claim_time,omitempty"` // epoch ms, 0 when claimable now
	StreakMilestones   []Event `json:"streak_milestones"`
	ClaimHistory       []Event `json:"claim_history"`
}

// GlobalAnalytics is the derived program-wide view.
type GlobalAnalytics struct {
	TotalUsers          int        `json:"total_users"`
	TotalClaims         int        `json:"total_claims"`
	TotalClaimed        uint64     `json:"total_claimed"`
	TotalDeposited      uint64     `json:"total_deposited"`
	AverageStreak       float64    `json:"average_streak"`
	LongestStreak       int        `json:"longest_streak"`
	DailyClaimCount     int        `json:"daily_claim_count"`
	WeeklyClaimCount    int        `json:"weekly_claim_count"`
	CalculatedDailyRate float64    `json:"calculated_daily_rate"`
	DailyRateMethod     RateMethod `json:"daily_rate_method"`
	DataConfidence      Confidence `json:"data_confidence"`
	RatePeriodDays      int        `json:"rate_period_days"`
	LastUpdated         int64      `json:"last_updated"` // epoch ms
}
