package ingest

import (
	"context"
	"sort"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
	"github.com/r0zar/streakwatch/internal/infra/indexer"
	"github.com/r0zar/streakwatch/internal/metrics"
)

// Fetcher is the slice of the indexer client the syncer needs.
type Fetcher interface {
	FetchRawEvents(ctx context.Context, limit, offset int) ([]indexer.RawEvent, error)
}

// Syncer drives the incremental event-log sync: paginated fetch, decode,
// idempotent merge and cache persistence. The loop is strictly sequential
// because each page fetch depends on the offset the previous iteration
// produced.
type Syncer struct {
	fetcher Fetcher
	store   cache.Store
	keys    cache.Keys
	tracker *Tracker
	cfg     config.SyncConfig
}

// NewSyncer wires a syncer over the given fetcher and cache store.
func NewSyncer(fetcher Fetcher, store cache.Store, keys cache.Keys, cfg config.SyncConfig) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		store:   store,
		keys:    keys,
		tracker: NewTracker(store, keys, cfg.StateTTL, cfg.EventTTL),
		cfg:     cfg,
	}
}

// Tracker exposes the sync state tracker, e.g. for status reporting.
func (s *Syncer) Tracker() *Tracker {
	return s.tracker
}

// CachedEvents returns the merged decoded event list from the cache. The
// second return reports whether a cache entry existed at all, so callers can
// distinguish "no events yet" from "cache cold".
func (s *Syncer) CachedEvents(ctx context.Context) ([]domain.Event, bool) {
	return cache.GetJSON[[]domain.Event](ctx, s.store, s.keys.ParsedEvents())
}

// Sync brings the cached event list up to date and returns it.
//
// One invocation fetches at most cfg.MaxCallsPerSync pages so a single call
// has bounded latency; an incomplete pass persists its offset and resumes on
// the next invocation. A page shorter than the requested size means the log
// head was reached and the pass is fully synced. A fetch failure ends the
// pass early without claiming completeness; the resync happens on the next
// natural call rather than in a retry loop here.
//
// forceFull discards cached events and progress and re-reads from offset 0.
func (s *Syncer) Sync(ctx context.Context, forceFull bool) []domain.Event {
	start := time.Now()
	runID := uuid.NewString()

	state := s.tracker.Load(ctx)
	var events []domain.Event

	if forceFull {
		state = domain.SyncState{}
	} else {
		events, _ = s.CachedEvents(ctx)
		if !s.tracker.ShouldContinueSync(state) {
			return events
		}
	}

	slog.Debug("sync started",
		"run_id", runID, "offset", state.LastOffset, "force_full", forceFull)

	// Dedupe against everything already accumulated: a resumed sync may
	// legitimately re-read pages when the log reorders within a short window.
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		seen[e.Key()] = struct{}{}
	}

	var (
		newEvents   []domain.Event
		offset      = state.LastOffset
		apiCalls    int
		fullySynced bool
	)

	for apiCalls < s.cfg.MaxCallsPerSync {
		page, err := s.fetcher.FetchRawEvents(ctx, s.cfg.PageSize, offset)
		apiCalls++
		if err != nil {
			// Not fully synced: an unreadable page is "try later".
			slog.Warn("sync pass ended on fetch failure",
				"run_id", runID, "offset", offset, "error", err)
			break
		}
		if len(page) == 0 {
			fullySynced = true
			break
		}

		for _, raw := range page {
			event, ok := ParseEvent(raw)
			if !ok {
				continue
			}
			if _, dup := seen[event.Key()]; dup {
				continue
			}
			seen[event.Key()] = struct{}{}
			newEvents = append(newEvents, event)
		}

		offset += s.cfg.PageSize
		if len(page) < s.cfg.PageSize {
			fullySynced = true
			break
		}
	}

	events = append(events, newEvents...)

	// Newest first; events sharing a block keep decode order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Block > events[j].Block
	})

	cache.SetJSON(ctx, s.store, s.keys.ParsedEvents(), events, s.cfg.EventTTL)
	state = s.tracker.Update(state, newEvents, apiCalls, offset, fullySynced)
	s.tracker.Save(ctx, state)

	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if fullySynced {
		metrics.FullySynced.Set(1)
	} else {
		metrics.FullySynced.Set(0)
	}

	slog.Info("sync finished",
		"run_id", runID,
		"new_events", len(newEvents),
		"total_events", len(events),
		"api_calls", apiCalls,
		"fully_synced", fullySynced)

	return events
}
