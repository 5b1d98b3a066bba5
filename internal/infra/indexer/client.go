// Package indexer provides the read-only HTTP client for the remote ledger
// indexer: the paginated event-log endpoint and the current block height.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/infra/cache"
	"github.com/r0zar/streakwatch/internal/metrics"
)

// RawEvent is one undecoded record from the event log. Payload stays opaque
// until the decoder inspects it; records with unknown shapes are dropped
// downstream, never here.
type RawEvent struct {
	TxID        string          `json:"tx_id"`
	EventType   string          `json:"event_type"`
	BlockHeight uint64          `json:"block_height"`
	Payload     json.RawMessage `json:"payload"`
}

type eventsEnvelope struct {
	Results []RawEvent `json:"results"`
	Total   int        `json:"total"`
}

type blocksEnvelope struct {
	Results []struct {
		Height uint64 `json:"height"`
	} `json:"results"`
}

// Client issues HTTP reads against the indexer. The events endpoint surfaces
// failures so callers can tell an unreadable page from a genuinely empty one;
// the height endpoint degrades through a fallback chain instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      cache.Store
	keys       cache.Keys
	cfg        config.IndexerConfig
}

// NewClient creates an indexer client sharing the engine's cache store.
func NewClient(cfg config.IndexerConfig, store cache.Store, keys cache.Keys) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		store: store,
		keys:  keys,
		cfg:   cfg,
	}
}

// FetchRawEvents reads one page of the event log. A returned error means the
// page could not be read and the caller should resume later; an empty slice
// with a nil error means the log genuinely has no records at this offset.
func (c *Client) FetchRawEvents(ctx context.Context, limit, offset int) ([]RawEvent, error) {
	url := fmt.Sprintf("%s/events?limit=%d&offset=%d", c.baseURL, limit, offset)

	body, err := c.get(ctx, url)
	if err != nil {
		metrics.IndexerCallsTotal.WithLabelValues("events", "error").Inc()
		slog.Warn("failed to fetch event page", "offset", offset, "error", err)
		return nil, err
	}
	metrics.IndexerCallsTotal.WithLabelValues("events", "ok").Inc()

	var envelope eventsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		slog.Warn("failed to decode event page", "offset", offset, "error", err)
		return nil, fmt.Errorf("failed to decode event page: %w", err)
	}
	return envelope.Results, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
