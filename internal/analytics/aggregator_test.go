package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
)

const (
	userA     = "SP1AAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	userB     = "SP2BBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	depositor = "ST3CCCCCCCCCCCCCCCCCCCCCCCCCCCCC"
)

type fakeEvents struct {
	events     []domain.Event
	cached     bool
	syncCalls  int
	forcedFull bool
}

func (f *fakeEvents) CachedEvents(ctx context.Context) ([]domain.Event, bool) {
	if f.cached {
		return f.events, true
	}
	return nil, false
}

func (f *fakeEvents) Sync(ctx context.Context, forceFull bool) []domain.Event {
	f.syncCalls++
	if forceFull {
		f.forcedFull = true
	}
	return f.events
}

type fakeHeights struct{ height uint64 }

func (f *fakeHeights) CurrentBlockHeight(ctx context.Context) uint64 { return f.height }

func incentiveCfg() config.IncentiveConfig {
	return config.IncentiveConfig{
		BlocksPerDay:       17_280,
		SecondsPerBlock:    5,
		CooldownBlocks:     17_280,
		GapToleranceBlocks: 25_920,
		UserTTL:            time.Minute,
		GlobalTTL:          2 * time.Minute,
		FallbackDailyRate:  50_000_000,
		RewardTiers: []config.RewardTier{
			{MinStreak: 0, Amount: 50_000_000},
			{MinStreak: 4, Amount: 75_000_000},
		},
	}
}

func newTestAggregator(events *fakeEvents, tip uint64) (*Aggregator, cache.Store) {
	store := cache.NewMemoryStore()
	agg := NewAggregator(events, &fakeHeights{height: tip}, store, cache.NewKeys("testnet"), incentiveCfg())
	return agg, store
}

func claim(user string, block uint64, amount uint64) domain.Event {
	return domain.Event{
		Type:   domain.EventTypeClaim,
		TxID:   fmt.Sprintf("0x%s-%d", user[:4], block),
		Block:  block,
		User:   user,
		Amount: amount,
	}
}

func TestGetUserAnalytics_InvalidAddress(t *testing.T) {
	agg, _ := newTestAggregator(&fakeEvents{cached: true}, 1000)

	_, err := agg.GetUserAnalytics(context.Background(), "not-an-address")
	if !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestGetUserAnalytics_NoClaimsIsNil(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{
		{Type: domain.EventTypeDeposit, TxID: "0xd", Block: 500, Depositor: userA, Amount: 1},
	}}
	agg, _ := newTestAggregator(events, 1000)

	ua, err := agg.GetUserAnalytics(context.Background(), userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua != nil {
		t.Errorf("expected nil for a user without claims, got %+v", ua)
	}
}

func TestGetUserAnalytics_CooldownActive(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, _ := newTestAggregator(events, 1000)

	base := time.Now()
	agg.now = func() time.Time { return base }

	ua, err := agg.GetUserAnalytics(context.Background(), userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua == nil {
		t.Fatal("expected analytics for a claiming user")
	}
	if ua.CanClaimNow {
		t.Error("expected cooldown to block the claim")
	}

	// The claim landed at the tip, so the estimated claim time is now and the
	// next window opens a full cooldown later.
	if ua.LastClaimTimestamp != base.UnixMilli() {
		t.Errorf("expected last claim at base, got %d", ua.LastClaimTimestamp)
	}
	wantNext := base.Add(17_280 * 5 * time.Second).UnixMilli()
	if ua.NextClaimTime != wantNext {
		t.Errorf("expected next claim at %d, got %d", wantNext, ua.NextClaimTime)
	}
}

func TestGetUserAnalytics_EligibleAfterCooldown(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, _ := newTestAggregator(events, 1000+17_280)

	ua, err := agg.GetUserAnalytics(context.Background(), userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ua.CanClaimNow {
		t.Error("expected claim eligibility at the cooldown boundary")
	}
	if ua.NextClaimTime != 0 {
		t.Errorf("expected zero next claim time, got %d", ua.NextClaimTime)
	}
}

func TestGetUserAnalytics_FiltersToAddress(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{
		claim(userA, 1000, 50_000_000),
		claim(userA, 18_000, 75_000_000),
		claim(userB, 2000, 50_000_000),
		{Type: domain.EventTypeMilestone, TxID: "0xm", Block: 18_000, User: userA, Streak: 2, Tier: 1},
	}}
	agg, _ := newTestAggregator(events, 40_000)

	ua, err := agg.GetUserAnalytics(context.Background(), userA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua.TotalClaims != 2 || ua.TotalClaimed != 125_000_000 {
		t.Errorf("expected 2 claims totalling 125M, got %+v", ua)
	}
	if ua.CurrentStreak != 2 || ua.MaxStreak != 2 {
		t.Errorf("expected streak {2,2}, got %+v", ua)
	}
	if ua.LastClaimBlock != 18_000 {
		t.Errorf("expected last claim block 18000, got %d", ua.LastClaimBlock)
	}
	if len(ua.StreakMilestones) != 1 {
		t.Errorf("expected 1 milestone, got %d", len(ua.StreakMilestones))
	}
}

func TestGetUserAnalytics_ServedFromCache(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, _ := newTestAggregator(events, 1000)
	ctx := context.Background()

	if _, err := agg.GetUserAnalytics(ctx, userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := events.syncCalls

	if _, err := agg.GetUserAnalytics(ctx, userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events.syncCalls != calls {
		t.Errorf("expected the second read to hit the analytics cache, got %d extra syncs", events.syncCalls-calls)
	}
}

func TestAggregator_ColdEventCacheForcesFullSync(t *testing.T) {
	events := &fakeEvents{cached: false, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, _ := newTestAggregator(events, 1000)

	if _, err := agg.GetUserAnalytics(context.Background(), userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !events.forcedFull {
		t.Error("expected a full refresh when the event cache is cold")
	}
}

func TestGetGlobalAnalytics(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{
		claim(userA, 1000, 50_000_000),
		claim(userA, 18_000, 50_000_000),
		claim(userB, 2000, 75_000_000),
		{Type: domain.EventTypeDeposit, TxID: "0xd", Block: 600, Depositor: depositor, Amount: 100_000_000},
	}}
	agg, _ := newTestAggregator(events, 20_000)

	ga, err := agg.GetGlobalAnalytics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ga.TotalUsers != 3 {
		t.Errorf("expected 3 participants, got %d", ga.TotalUsers)
	}
	if ga.TotalClaims != 3 || ga.TotalClaimed != 175_000_000 {
		t.Errorf("unexpected claim totals: %+v", ga)
	}
	if ga.TotalDeposited != 100_000_000 {
		t.Errorf("expected 100M deposited, got %d", ga.TotalDeposited)
	}
	// userA holds a 2-streak, userB a 1-streak.
	if ga.LongestStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", ga.LongestStreak)
	}
	if ga.AverageStreak != 1.5 {
		t.Errorf("expected average streak 1.5, got %f", ga.AverageStreak)
	}
	if ga.DailyClaimCount != 1 {
		t.Errorf("expected 1 claim in the last period, got %d", ga.DailyClaimCount)
	}
	if ga.WeeklyClaimCount != 3 {
		t.Errorf("expected 3 claims in the last 7 periods, got %d", ga.WeeklyClaimCount)
	}
	if ga.DailyRateMethod != domain.RateMethodRecent7Day {
		t.Errorf("expected recent_7day rate, got %s", ga.DailyRateMethod)
	}
	if ga.LastUpdated == 0 {
		t.Error("expected a last-updated timestamp")
	}
}

func TestInvalidate_DropsDerivedViews(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, store := newTestAggregator(events, 1000)
	ctx := context.Background()

	if _, err := agg.GetUserAnalytics(ctx, userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := agg.GetGlobalAnalytics(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg.Invalidate(ctx)

	keys := cache.NewKeys("testnet")
	if _, ok := store.Get(ctx, keys.UserAnalytics(userA)); ok {
		t.Error("expected user analytics to be dropped")
	}
	if _, ok := store.Get(ctx, keys.GlobalAnalytics()); ok {
		t.Error("expected global analytics to be dropped")
	}
}

func TestClearUser(t *testing.T) {
	events := &fakeEvents{cached: true, events: []domain.Event{claim(userA, 1000, 50_000_000)}}
	agg, store := newTestAggregator(events, 1000)
	ctx := context.Background()

	if _, err := agg.GetUserAnalytics(ctx, userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.ClearUser(ctx, userA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.Get(ctx, cache.NewKeys("testnet").UserAnalytics(userA)); ok {
		t.Error("expected the user's cached view to be dropped")
	}

	if err := agg.ClearUser(ctx, "bogus"); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for a bogus address, got %v", err)
	}
}
