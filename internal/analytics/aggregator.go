package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
)

// EventSource supplies the synchronized event history.
type EventSource interface {
	CachedEvents(ctx context.Context) ([]domain.Event, bool)
	Sync(ctx context.Context, forceFull bool) []domain.Event
}

// HeightSource supplies the current ledger block height.
type HeightSource interface {
	CurrentBlockHeight(ctx context.Context) uint64
}

// Aggregator combines decoded events, streak results and rate estimates into
// per-user and global analytics views. Both views carry their own short-TTL
// cache entries layered over the raw event cache: they are cheap to recompute
// but still benefit from skipping the work on every refresh.
type Aggregator struct {
	events  EventSource
	heights HeightSource
	store   cache.Store
	keys    cache.Keys
	cfg     config.IncentiveConfig

	now func() time.Time
}

// NewAggregator wires an aggregator over the given sources.
func NewAggregator(
	events EventSource,
	heights HeightSource,
	store cache.Store,
	keys cache.Keys,
	cfg config.IncentiveConfig,
) *Aggregator {
	return &Aggregator{
		events:  events,
		heights: heights,
		store:   store,
		keys:    keys,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetUserAnalytics returns the derived view for one user, or nil when the
// user has never claimed, so callers can tell "never participated" apart
// from "fully cooled down". A malformed address is caller misuse and is the
// only error this method surfaces.
func (a *Aggregator) GetUserAnalytics(ctx context.Context, address string) (*domain.UserAnalytics, error) {
	if err := domain.ValidatePrincipal(address); err != nil {
		return nil, fmt.Errorf("user analytics for %q: %w", address, err)
	}

	if ua, ok := cache.GetJSON[domain.UserAnalytics](ctx, a.store, a.keys.UserAnalytics(address)); ok {
		return &ua, nil
	}

	events := a.syncedEvents(ctx)

	var claims, milestones []domain.Event
	for _, e := range events {
		switch {
		case e.IsClaim() && e.User == address:
			claims = append(claims, e)
		case e.Type == domain.EventTypeMilestone && e.User == address:
			milestones = append(milestones, e)
		}
	}
	if len(claims) == 0 {
		return nil, nil
	}

	streaks := Streaks(claims, a.cfg.GapToleranceBlocks)

	var totalClaimed uint64
	var lastClaimBlock uint64
	for _, c := range claims {
		totalClaimed += c.Amount
		if c.Block > lastClaimBlock {
			lastClaimBlock = c.Block
		}
	}

	tip := a.heights.CurrentBlockHeight(ctx)
	now := a.now()

	ua := domain.UserAnalytics{
		Address:          address,
		TotalClaims:      len(claims),
		TotalClaimed:     totalClaimed,
		CurrentStreak:    streaks.CurrentStreak,
		MaxStreak:        streaks.MaxStreak,
		LastClaimBlock:   lastClaimBlock,
		StreakMilestones: milestones,
		ClaimHistory:     claims,
	}

	if tip >= lastClaimBlock {
		elapsed := time.Duration((tip-lastClaimBlock)*a.cfg.SecondsPerBlock) * time.Second
		ua.LastClaimTimestamp = now.Add(-elapsed).UnixMilli()
	}

	eligibleAt := lastClaimBlock + a.cfg.CooldownBlocks
	if tip >= eligibleAt {
		ua.CanClaimNow = true
	} else {
		wait := time.Duration((eligibleAt-tip)*a.cfg.SecondsPerBlock) * time.Second
		ua.NextClaimTime = now.Add(wait).UnixMilli()
	}

	cache.SetJSON(ctx, a.store, a.keys.UserAnalytics(address), ua, a.cfg.UserTTL)
	return &ua, nil
}

// GetGlobalAnalytics returns the derived program-wide view.
func (a *Aggregator) GetGlobalAnalytics(ctx context.Context) (*domain.GlobalAnalytics, error) {
	if ga, ok := cache.GetJSON[domain.GlobalAnalytics](ctx, a.store, a.keys.GlobalAnalytics()); ok {
		return &ga, nil
	}

	events := a.syncedEvents(ctx)
	tip := a.heights.CurrentBlockHeight(ctx)

	var (
		claims        []domain.Event
		claimsByUser  = make(map[string][]domain.Event)
		participants  = make(map[string]struct{})
		totalClaimed  uint64
		totalDeposits uint64
	)
	for _, e := range events {
		switch e.Type {
		case domain.EventTypeClaim:
			claims = append(claims, e)
			claimsByUser[e.User] = append(claimsByUser[e.User], e)
			participants[e.User] = struct{}{}
			totalClaimed += e.Amount
		case domain.EventTypeDeposit:
			participants[e.Depositor] = struct{}{}
			totalDeposits += e.Amount
		}
	}

	var streakSum, longest int
	for _, userClaims := range claimsByUser {
		streaks := Streaks(userClaims, a.cfg.GapToleranceBlocks)
		streakSum += streaks.CurrentStreak
		if streaks.MaxStreak > longest {
			longest = streaks.MaxStreak
		}
	}

	var averageStreak float64
	if len(claimsByUser) > 0 {
		averageStreak = float64(streakSum) / float64(len(claimsByUser))
	}

	rate := EstimateDailyRate(claims, tip, RateConfig{
		BlocksPerDay:      a.cfg.BlocksPerDay,
		FallbackDailyRate: a.cfg.FallbackDailyRate,
	})

	ga := domain.GlobalAnalytics{
		TotalUsers:          len(participants),
		TotalClaims:         len(claims),
		TotalClaimed:        totalClaimed,
		TotalDeposited:      totalDeposits,
		AverageStreak:       averageStreak,
		LongestStreak:       longest,
		DailyClaimCount:     len(claimsSince(claims, tip, a.cfg.BlocksPerDay)),
		WeeklyClaimCount:    len(claimsSince(claims, tip, 7*a.cfg.BlocksPerDay)),
		CalculatedDailyRate: rate.DailyRate,
		DailyRateMethod:     rate.Method,
		DataConfidence:      rate.Confidence,
		RatePeriodDays:      rate.PeriodDays,
		LastUpdated:         a.now().UnixMilli(),
	}

	cache.SetJSON(ctx, a.store, a.keys.GlobalAnalytics(), ga, a.cfg.GlobalTTL)
	return &ga, nil
}

// Invalidate drops every derived analytics entry plus the sync progress so
// the next read re-syncs and recomputes. Called by the external write path
// right after a successful state-changing action; this is a best-effort
// refresh, not a consistency guarantee, since ledger confirmation latency is
// variable.
func (a *Aggregator) Invalidate(ctx context.Context) {
	a.store.RemoveByPrefix(ctx, a.keys.UserAnalyticsPrefix())
	a.store.RemoveByPrefix(ctx, a.keys.GlobalAnalytics())
	a.store.RemoveByPrefix(ctx, a.keys.BlockHeight())
	a.store.RemoveByPrefix(ctx, a.keys.SyncState())
}

// ClearUser drops one user's cached analytics view.
func (a *Aggregator) ClearUser(ctx context.Context, address string) error {
	if err := domain.ValidatePrincipal(address); err != nil {
		return fmt.Errorf("clear user data for %q: %w", address, err)
	}
	a.store.RemoveByPrefix(ctx, a.keys.UserAnalytics(address))
	return nil
}

// syncedEvents triggers a sync pass, forcing a full refresh when the event
// cache is cold.
func (a *Aggregator) syncedEvents(ctx context.Context) []domain.Event {
	cached, ok := a.events.CachedEvents(ctx)
	return a.events.Sync(ctx, !ok || len(cached) == 0)
}
