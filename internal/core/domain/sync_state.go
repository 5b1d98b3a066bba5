package domain

// SyncState records how much of the remote event log has been consumed.
//
// LastProcessedBlock is monotonically non-decreasing across successful syncs.
// LastOffset resets to 0 once IsFullySynced is true so the next full pass
// starts from the head of the log.
type SyncState struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	LastSyncTimestamp  int64  `json:"last_sync_timestamp"` // epoch ms
	TotalEventsParsed  int    `json:"total_events_parsed"`
	LastProcessedTxID  string `json:"last_processed_tx_id"`
	TotalAPICallsMade  int    `json:"total_api_calls_made"`
	IsFullySynced      bool   `json:"is_fully_synced"`
	LastOffset         int    `json:"last_offset"`
}
