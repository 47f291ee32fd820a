package audit

import "time"

// Entry is an immutable journal record of an economic side effect.
//
// Invariants:
// - Entries are never updated or deleted.
// - Amounts are advisory. The backend ledger is the source of truth.
type Entry struct {
	ID   string    `json:"id"`
	Type EntryType `json:"type"`

	// EventID links back to the notification that produced the entry.
	EventID   string `json:"event_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`

	// Amount is signed: coins deducted are negative, coins bought and XP
	// earned are positive.
	Amount int64 `json:"amount"`

	Message string `json:"message,omitempty"`
	// Metadata is optional JSON with the full payload.
	Metadata string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EntryType string

const (
	EntryCoinsDeducted EntryType = "coins_deducted"
	EntryCallEnded     EntryType = "call_ended"
	EntryLevelUp       EntryType = "level_up"
	EntryOfferApplied  EntryType = "offer_applied"
	EntryAdminAction   EntryType = "admin_action"
)
