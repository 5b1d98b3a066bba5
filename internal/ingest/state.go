package ingest

import (
	"context"
	"time"

	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
)

// Tracker owns the persisted sync progress record. It is the single writer
// of the sync_state cache entry; everything else only reads the snapshot it
// hands out.
type Tracker struct {
	store    cache.Store
	keys     cache.Keys
	stateTTL time.Duration
	eventTTL time.Duration

	now func() time.Time
}

// NewTracker creates a tracker persisting through the given store.
func NewTracker(store cache.Store, keys cache.Keys, stateTTL, eventTTL time.Duration) *Tracker {
	return &Tracker{
		store:    store,
		keys:     keys,
		stateTTL: stateTTL,
		eventTTL: eventTTL,
		now:      time.Now,
	}
}

// Load returns the persisted sync state, or a zero state when none exists.
func (t *Tracker) Load(ctx context.Context) domain.SyncState {
	state, _ := cache.GetJSON[domain.SyncState](ctx, t.store, t.keys.SyncState())
	return state
}

// Save persists the sync state.
func (t *Tracker) Save(ctx context.Context, state domain.SyncState) {
	cache.SetJSON(ctx, t.store, t.keys.SyncState(), state, t.stateTTL)
}

// ShouldContinueSync reports whether a sync pass is warranted: either the
// event cache has aged past its TTL, or the previous pass never reached the
// head of the log.
func (t *Tracker) ShouldContinueSync(state domain.SyncState) bool {
	if !state.IsFullySynced {
		return true
	}
	age := t.now().UnixMilli() - state.LastSyncTimestamp
	return age > t.eventTTL.Milliseconds()
}

// Update folds the result of one sync pass into the state. LastProcessedBlock
// only ever moves forward, call and event totals accumulate across passes,
// and the pagination offset resets once the log head has been reached.
func (t *Tracker) Update(
	state domain.SyncState,
	newEvents []domain.Event,
	apiCalls, offset int,
	fullySynced bool,
) domain.SyncState {
	for _, e := range newEvents {
		if e.Block > state.LastProcessedBlock {
			state.LastProcessedBlock = e.Block
			state.LastProcessedTxID = e.TxID
		}
	}

	state.TotalEventsParsed += len(newEvents)
	state.TotalAPICallsMade += apiCalls
	state.LastSyncTimestamp = t.now().UnixMilli()
	state.IsFullySynced = fullySynced
	if fullySynced {
		state.LastOffset = 0
	} else {
		state.LastOffset = offset
	}
	return state
}
