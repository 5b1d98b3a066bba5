package cache

import "fmt"

// Category is a logical cache namespace.
type Category string

const (
	CategorySyncState       Category = "sync_state"
	CategoryParsedEvents    Category = "parsed_events"
	CategoryUserAnalytics   Category = "user_analytics"
	CategoryGlobalAnalytics Category = "global_analytics"
	CategoryBlockHeight     Category = "block_height"
)

// Keys builds namespaced cache keys. Every key embeds the ledger partition so
// production and staging state cannot bleed into each other, and categories
// keep the key space auditable instead of relying on ad-hoc concatenation.
type Keys struct {
	Partition string
}

// NewKeys creates a key builder for one ledger partition.
func NewKeys(partition string) Keys {
	return Keys{Partition: partition}
}

func (k Keys) build(cat Category) string {
	return fmt.Sprintf("streakwatch:%s:%s", k.Partition, cat)
}

// SyncState returns the key holding the sync progress record.
func (k Keys) SyncState() string { return k.build(CategorySyncState) }

// ParsedEvents returns the key holding the merged decoded event list.
func (k Keys) ParsedEvents() string { return k.build(CategoryParsedEvents) }

// GlobalAnalytics returns the key holding the global analytics view.
func (k Keys) GlobalAnalytics() string { return k.build(CategoryGlobalAnalytics) }

// BlockHeight returns the key holding the cached chain tip.
func (k Keys) BlockHeight() string { return k.build(CategoryBlockHeight) }

// UserAnalytics returns the key holding one user's analytics view.
func (k Keys) UserAnalytics(address string) string {
	return fmt.Sprintf("%s:%s", k.build(CategoryUserAnalytics), address)
}

// UserAnalyticsPrefix returns the prefix covering all user analytics entries.
func (k Keys) UserAnalyticsPrefix() string {
	return k.build(CategoryUserAnalytics) + ":"
}

// PartitionPrefix returns the prefix covering every key of this partition.
func (k Keys) PartitionPrefix() string {
	return fmt.Sprintf("streakwatch:%s:", k.Partition)
}
