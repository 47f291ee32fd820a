package notify

import (
	"encoding/json"
	"time"
)

// Kind identifies the payload carried by an Event.
type Kind string

const (
	KindCallStarted     Kind = "CALL_STARTED"
	KindCallEnded       Kind = "CALL_ENDED"
	KindCoinsDeducted   Kind = "COINS_DEDUCTED"
	KindLevelUp         Kind = "LEVEL_UP"
	KindOfferApplied    Kind = "OFFER_APPLIED"
	KindEngagementNudge Kind = "ENGAGEMENT_NUDGE"
)

// Level is the toast style the UI should use. Text and localisation are the UI's job.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelMessage Level = "message"
	LevelError   Level = "error"
)

// Payload is implemented only by the typed payloads in this package.
type Payload interface {
	Kind() Kind
	level() Level
}

// CallStarted distinguishes the free variant from the rate-disclosed one via Free.
type CallStarted struct {
	SessionID     string `json:"session_id"`
	CallType      string `json:"call_type"`
	Free          bool   `json:"free"`
	CostPerMinute int64  `json:"cost_per_minute"`
	Window        string `json:"window"`
	RateLabel     string `json:"rate_label,omitempty"`
	Star          bool   `json:"star"`
}

func (CallStarted) Kind() Kind { return KindCallStarted }
func (CallStarted) level() Level { return LevelSuccess }

// MessageKey is the localisation key the source client used for this variant.
func (p CallStarted) MessageKey() string {
	if p.Free {
		return "CALL_STARTED_FREE"
	}
	return "CALL_STARTED_RATE"
}

type CallEnded struct {
	SessionID       string `json:"session_id"`
	CallType        string `json:"call_type"`
	DurationSeconds int    `json:"duration_seconds"`
	BilledMinutes   int    `json:"billed_minutes"`
	AdvisoryCoins   int64  `json:"advisory_coins"`
}

func (CallEnded) Kind() Kind { return KindCallEnded }
func (CallEnded) level() Level { return LevelInfo }

// CoinsDeducted is advisory: the wallet backend performs the real debit.
type CoinsDeducted struct {
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	Minute    int    `json:"minute"`
}

func (CoinsDeducted) Kind() Kind { return KindCoinsDeducted }
func (CoinsDeducted) level() Level { return LevelMessage }

type LevelUp struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	XP   int64 `json:"xp"`
}

func (LevelUp) Kind() Kind { return KindLevelUp }
func (LevelUp) level() Level { return LevelSuccess }

type OfferApplied struct {
	OfferID    string `json:"offer_id"`
	Coins      int64  `json:"coins"`
	PriceMinor int64  `json:"price_minor"`
	Remaining  int64  `json:"remaining"`
}

func (OfferApplied) Kind() Kind { return KindOfferApplied }
func (OfferApplied) level() Level { return LevelSuccess }

type EngagementNudge struct {
	Slot       string `json:"slot"`
	MessageKey string `json:"message_key"`
}

func (EngagementNudge) Kind() Kind { return KindEngagementNudge }
func (EngagementNudge) level() Level { return LevelInfo }

// Event is the envelope delivered to sinks.
type Event struct {
	ID      string
	At      time.Time
	Level   Level
	Payload Payload
}

func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

type wireEvent struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Level   Level     `json:"level"`
	Kind    Kind      `json:"kind"`
	Payload Payload   `json:"payload"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{ID: e.ID, At: e.At, Level: e.Level, Kind: e.Kind(), Payload: e.Payload})
}
