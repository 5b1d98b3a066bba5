package domain

import "fmt"

// EventType discriminates the known domain event variants.
type EventType string

const (
	EventTypeClaim     EventType = "claim"
	EventTypeDeposit   EventType = "deposit"
	EventTypeMilestone EventType = "milestone"
)

// Event is one immutable fact recorded by the incentive contract.
//
// The struct is a tagged union: Type selects which fields are meaningful.
//
//	claim:     User, Amount, Streak, TotalClaims, Block, TxID
//	deposit:   Depositor, Amount, Block, TxID
//	milestone: User, Streak, Tier, Block, TxID
//
// Unused fields stay at their zero value. Events are never mutated after
// decoding.
type Event struct {
	Type        EventType `json:"type"`
	TxID        string    `json:"tx_id"`
	Block       uint64    `json:"block"`
	User        string    `json:"user,omitempty"`
	Depositor   string    `json:"depositor,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	Streak      int       `json:"streak,omitempty"`
	TotalClaims int       `json:"total_claims,omitempty"`
	Tier        int       `json:"tier,omitempty"`
}

// Key identifies an event for duplicate detection. A resumed sync may re-read
// pages it already consumed, so merges dedupe on (tx id, block).
func (e Event) Key() string {
	return fmt.Sprintf("%s:%d", e.TxID, e.Block)
}

// IsClaim reports whether the event is a claim.
func (e Event) IsClaim() bool { return e.Type == EventTypeClaim }
