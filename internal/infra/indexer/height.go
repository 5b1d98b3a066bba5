package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
	"github.com/r0zar/streakwatch/internal/metrics"
)

// CurrentBlockHeight returns the latest ledger block height.
//
// Resolution order, best source first:
//  1. the cached height (short TTL, ~60s)
//  2. the indexer's block endpoint
//  3. the highest block among already-cached events plus a safety margin
//  4. a static plausible default
//
// The ordering matters: every cooldown and streak computation uses the
// result as "now" on the block axis, so a degraded answer must still be a
// plausible recent height rather than zero.
func (c *Client) CurrentBlockHeight(ctx context.Context) uint64 {
	if height, ok := cache.GetJSON[uint64](ctx, c.store, c.keys.BlockHeight()); ok {
		return height
	}

	if height, err := c.fetchBlockHeight(ctx); err == nil {
		metrics.IndexerCallsTotal.WithLabelValues("block", "ok").Inc()
		metrics.ChainHeight.Set(float64(height))
		cache.SetJSON(ctx, c.store, c.keys.BlockHeight(), height, c.cfg.HeightTTL)
		return height
	} else {
		metrics.IndexerCallsTotal.WithLabelValues("block", "error").Inc()
		slog.Warn("failed to fetch block height, estimating from cached events", "error", err)
	}

	if height, ok := c.estimateFromCachedEvents(ctx); ok {
		return height
	}

	slog.Warn("no cached events to estimate height from, using static default",
		"height", c.cfg.StaticHeight)
	return c.cfg.StaticHeight
}

func (c *Client) fetchBlockHeight(ctx context.Context) (uint64, error) {
	body, err := c.get(ctx, c.baseURL+"/block?limit=1")
	if err != nil {
		return 0, err
	}

	var envelope blocksEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("failed to decode block response: %w", err)
	}
	if len(envelope.Results) == 0 {
		return 0, fmt.Errorf("block response carried no results")
	}
	return envelope.Results[0].Height, nil
}

// estimateFromCachedEvents derives a height from the newest event already in
// the cache. The safety margin accounts for blocks mined since that event.
func (c *Client) estimateFromCachedEvents(ctx context.Context) (uint64, bool) {
	events, ok := cache.GetJSON[[]domain.Event](ctx, c.store, c.keys.ParsedEvents())
	if !ok || len(events) == 0 {
		return 0, false
	}

	var highest uint64
	for _, e := range events {
		if e.Block > highest {
			highest = e.Block
		}
	}
	return highest + c.cfg.HeightSafetyMargin, true
}
