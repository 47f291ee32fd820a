package calls

import (
	"time"

	"social-calling/internal/pricing"
)

// Session is the single in-call state owned by Manager.
//
// Invariants:
// - At most one active session per Manager.
// - CostPerMinute is fixed when the session starts and never re-priced,
//   even if the call crosses the day/night boundary.
// - The zero value is the idle session.
type Session struct {
	ID        string           `json:"id,omitempty"`
	Active    bool             `json:"active"`
	Minimized bool             `json:"minimized"`
	Type      pricing.CallType `json:"type,omitempty"`

	ElapsedSeconds int   `json:"elapsed_seconds"`
	CostPerMinute  int64 `json:"cost_per_minute"`

	StartedAt time.Time          `json:"started_at,omitempty"`
	Callee    pricing.CalleeMeta `json:"callee"`
	Window    pricing.Window     `json:"window,omitempty"`
	Free      bool               `json:"free"`
	Star      bool               `json:"star"`

	// BilledMinutes counts completed minute boundaries.
	BilledMinutes int `json:"billed_minutes"`
	// AdvisoryCoins is the sum of COINS_DEDUCTED amounts announced so far.
	AdvisoryCoins int64 `json:"advisory_coins"`
}

// StartRequest carries everything the pricing engine needs for one call.
type StartRequest struct {
	Caller pricing.Gender
	Type   pricing.CallType
	Callee pricing.CalleeMeta
}

func variant(s Session) string {
	switch {
	case s.Free:
		return "free"
	case s.Star:
		return "star"
	default:
		return string(s.Window)
	}
}
