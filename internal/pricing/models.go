package pricing

import "strings"

// Amounts are whole coins per minute. Calls are billed per started minute
// boundary by the session clock; this package only prices.

type CallType string

const (
	CallTypeVoice CallType = "voice"
	CallTypeVideo CallType = "video"
	CallTypeLive  CallType = "live"
)

func (t CallType) Valid() bool {
	switch t {
	case CallTypeVoice, CallTypeVideo, CallTypeLive:
		return true
	default:
		return false
	}
}

// ParseCallType accepts the UI spellings; "audio" is the backend's name for voice.
func ParseCallType(s string) (CallType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voice", "audio":
		return CallTypeVoice, true
	case "video":
		return CallTypeVideo, true
	case "live":
		return CallTypeLive, true
	default:
		return "", false
	}
}

type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderOther   Gender = "O"
)

// ParseGender never fails: anything unrecognised is GenderUnknown.
func ParseGender(s string) Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		return GenderMale
	case "F", "FEMALE":
		return GenderFemale
	case "O", "OTHER":
		return GenderOther
	default:
		return GenderUnknown
	}
}

// CalleeMeta is what the target-user collaborator knows about the callee.
// Zero value means unknown; Level 0 is treated as unknown.
type CalleeMeta struct {
	Gender Gender `json:"gender,omitempty"`
	Level  int    `json:"level,omitempty"`
}

type Window string

const (
	WindowDay   Window = "day"
	WindowNight Window = "night"
)

// Label is the rate disclosure shown with a paid call start.
func (w Window) Label() string {
	if w == WindowNight {
		return "Night Rates (9 PM - 3 AM)"
	}
	return "Day Rates"
}

// Tariff is one row of the published rate card.
type Tariff struct {
	Type          CallType `json:"type"`
	Window        Window   `json:"window"`
	Star          bool     `json:"star"`
	CostPerMinute int64    `json:"cost_per_minute"`
}

// Quote is the priced outcome of one call-start request.
type Quote struct {
	Type   CallType `json:"type"`
	Window Window   `json:"window"`

	// Star is true when the star-window override replaced the base rate.
	Star bool `json:"star"`
	// Free is true when the caller is female; CostPerMinute is then 0.
	Free bool `json:"free"`

	// ListCostPerMinute is the rate before the free-for-women rule.
	ListCostPerMinute int64 `json:"list_cost_per_minute"`
	CostPerMinute     int64 `json:"cost_per_minute"`
}
