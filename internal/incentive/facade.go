// Package incentive is the thin client the rest of the system talks to:
// claim eligibility, reward tiers and the cache-invalidation hooks the write
// path must call after state-changing actions. It performs no network I/O of
// its own beyond what the aggregator needs.
package incentive

import (
	"context"
	"time"

	"github.com/r0zar/streakwatch/internal/analytics"
	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Engine answers incentive questions for one ledger partition. Construct one
// per partition instead of sharing hidden global state.
type Engine struct {
	agg *analytics.Aggregator
	cfg config.IncentiveConfig
}

// ClaimStatus bundles the answers a claim UI needs in one round trip.
type ClaimStatus struct {
	Address            string            `json:"address"`
	CanClaim           bool              `json:"can_claim"`
	TimeUntilNextClaim int64             `json:"time_until_next_claim_ms"`
	CurrentStreak      int               `json:"current_streak"`
	NextReward         uint64            `json:"next_reward"`
	DailyRate          float64           `json:"daily_rate"`
	RateConfidence     domain.Confidence `json:"rate_confidence"`
}

// New creates an engine over the given aggregator.
func New(agg *analytics.Aggregator, cfg config.IncentiveConfig) *Engine {
	return &Engine{agg: agg, cfg: cfg}
}

// CanClaim reports whether the user may claim right now. A user with no
// claim history is always eligible.
func (e *Engine) CanClaim(ctx context.Context, address string) (bool, error) {
	ua, err := e.agg.GetUserAnalytics(ctx, address)
	if err != nil {
		return false, err
	}
	if ua == nil {
		return true, nil
	}
	return ua.CanClaimNow, nil
}

// TimeUntilNextClaim returns how long until the user's cooldown lapses,
// zero when the user can claim immediately.
func (e *Engine) TimeUntilNextClaim(ctx context.Context, address string) (time.Duration, error) {
	ua, err := e.agg.GetUserAnalytics(ctx, address)
	if err != nil {
		return 0, err
	}
	if ua == nil || ua.CanClaimNow {
		return 0, nil
	}
	wait := time.Until(time.UnixMilli(ua.NextClaimTime))
	if wait < 0 {
		return 0, nil
	}
	return wait, nil
}

// RewardForStreak returns the fixed reward amount unlocked at the given
// streak length.
func (e *Engine) RewardForStreak(streak int) uint64 {
	return e.cfg.RewardForStreak(streak)
}

// NextReward returns the amount the user's next successful claim would pay,
// assuming the claim extends the current streak.
func (e *Engine) NextReward(ctx context.Context, address string) (uint64, error) {
	ua, err := e.agg.GetUserAnalytics(ctx, address)
	if err != nil {
		return 0, err
	}
	nextStreak := 1
	if ua != nil {
		nextStreak = ua.CurrentStreak + 1
	}
	return e.cfg.RewardForStreak(nextStreak), nil
}

// ClaimStatus fans out the independent reads a claim screen needs: the
// user's eligibility and the global rate estimate. The queries are read-only
// and order-independent, so they run concurrently.
func (e *Engine) ClaimStatus(ctx context.Context, address string) (*ClaimStatus, error) {
	var (
		ua *domain.UserAnalytics
		ga *domain.GlobalAnalytics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ua, err = e.agg.GetUserAnalytics(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		ga, err = e.agg.GetGlobalAnalytics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := &ClaimStatus{
		Address:        address,
		CanClaim:       true,
		NextReward:     e.cfg.RewardForStreak(1),
		DailyRate:      ga.CalculatedDailyRate,
		RateConfidence: ga.DataConfidence,
	}
	if ua != nil {
		status.CanClaim = ua.CanClaimNow
		status.CurrentStreak = ua.CurrentStreak
		status.NextReward = e.cfg.RewardForStreak(ua.CurrentStreak + 1)
		if !ua.CanClaimNow {
			if wait := ua.NextClaimTime - time.Now().UnixMilli(); wait > 0 {
				status.TimeUntilNextClaim = wait
			}
		}
	}
	return status, nil
}

// InvalidateAnalytics drops all derived analytics. The write path must call
// this right after any successful state-changing action.
func (e *Engine) InvalidateAnalytics(ctx context.Context) {
	e.agg.Invalidate(ctx)
}

// ClearUserData drops one user's cached analytics.
func (e *Engine) ClearUserData(ctx context.Context, address string) error {
	return e.agg.ClearUser(ctx, address)
}
