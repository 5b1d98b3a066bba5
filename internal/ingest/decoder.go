// Package ingest turns the remote event log into the cached, deduplicated
// domain event history every analytics view is derived from.
package ingest

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/indexer"
	"github.com/r0zar/streakwatch/internal/metrics"
)

// rawEventType is the record-level shape the decoder accepts. Anything else
// on the log (token transfers, deploys) is not a program event.
const rawEventType = "contract_event"

// ParseEvent decodes one raw record into a typed domain event.
//
// Decoding is two-stage: the opaque payload is first decoded into a generic
// structured value, then the "event" discriminant selects the variant and
// typed sub-fields are extracted, defaulting to zero or empty when absent.
// Any failure drops the record with a warning; a single malformed record must
// never abort a batch, so ok=false is the only error signal.
func ParseEvent(raw indexer.RawEvent) (event domain.Event, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic while decoding event, dropping record", "tx_id", raw.TxID, "panic", r)
			metrics.EventsDroppedTotal.Inc()
			event, ok = domain.Event{}, false
		}
	}()

	if raw.EventType != rawEventType || len(raw.Payload) == 0 {
		metrics.EventsDroppedTotal.Inc()
		return domain.Event{}, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw.Payload, &payload); err != nil {
		slog.Warn("dropping undecodable event payload", "tx_id", raw.TxID, "error", err)
		metrics.EventsDroppedTotal.Inc()
		return domain.Event{}, false
	}

	block := uintField(payload, "block")
	if block == 0 {
		block = raw.BlockHeight
	}

	switch stringField(payload, "event") {
	case "claim":
		event = domain.Event{
			Type:        domain.EventTypeClaim,
			TxID:        raw.TxID,
			Block:       block,
			User:        stringField(payload, "user"),
			Amount:      uintField(payload, "amount"),
			Streak:      intField(payload, "streak"),
			TotalClaims: intField(payload, "total-claims"),
		}
	case "deposit":
		event = domain.Event{
			Type:      domain.EventTypeDeposit,
			TxID:      raw.TxID,
			Block:     block,
			Depositor: stringField(payload, "depositor"),
			Amount:    uintField(payload, "amount"),
		}
	case "milestone":
		event = domain.Event{
			Type:   domain.EventTypeMilestone,
			TxID:   raw.TxID,
			Block:  block,
			User:   stringField(payload, "user"),
			Streak: intField(payload, "streak"),
			Tier:   intField(payload, "tier"),
		}
	default:
		slog.Debug("dropping event with unknown discriminant", "tx_id", raw.TxID)
		metrics.EventsDroppedTotal.Inc()
		return domain.Event{}, false
	}

	metrics.EventsParsedTotal.WithLabelValues(string(event.Type)).Inc()
	return event, true
}

// stringField extracts a string, defaulting to "" when absent or mistyped.
func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// uintField extracts a non-negative integer. JSON numbers arrive as float64;
// string-encoded amounts are tolerated because the contract emits uints that
// some indexer versions serialize as strings.
func uintField(m map[string]interface{}, key string) uint64 {
	switch v := m[key].(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func intField(m map[string]interface{}, key string) int {
	return int(uintField(m, key))
}
