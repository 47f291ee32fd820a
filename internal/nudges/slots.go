// Package nudges emits one engagement reminder per local day per time slot.
package nudges

import (
	"fmt"
	"time"
)

type Slot string

const (
	SlotBreakfast    Slot = "breakfast"
	SlotMorning      Slot = "morning"
	SlotLunch        Slot = "lunch"
	SlotEvening      Slot = "evening"
	SlotDinner       Slot = "dinner"
	SlotNightWaiting Slot = "night_waiting"
	SlotNightConnect Slot = "night_connect"
)

// slotOrder is the match order; the first window containing the hour wins.
var slotOrder = []Slot{
	SlotBreakfast,
	SlotMorning,
	SlotLunch,
	SlotEvening,
	SlotDinner,
	SlotNightWaiting,
	SlotNightConnect,
}

var messageKeys = map[Slot]string{
	SlotBreakfast:    "MEAL_REMINDER_BREAKFAST",
	SlotMorning:      "GOOD_MORNING_FRIENDS_WAITING",
	SlotLunch:        "MEAL_REMINDER_LUNCH",
	SlotEvening:      "GOOD_EVENING_RELAX",
	SlotDinner:       "MEAL_REMINDER_DINNER",
	SlotNightWaiting: "NIGHT_LONELY_FRIENDS_WAITING",
	SlotNightConnect: "NIGHT_LONELY_CONNECT_FRIENDS",
}

func (s Slot) MessageKey() string { return messageKeys[s] }

func (s Slot) Valid() bool {
	_, ok := messageKeys[s]
	return ok
}

// Window is [Start, End) in local hours. Start > End wraps midnight.
type Window struct {
	Start int `toml:"start" json:"start"`
	End   int `toml:"end" json:"end"`
}

func (w Window) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

func (w Window) validate() error {
	if w.Start < 0 || w.Start > 24 || w.End < 0 || w.End > 24 {
		return fmt.Errorf("nudges: window hours must be within 0..24, got %d-%d", w.Start, w.End)
	}
	return nil
}

type Windows map[Slot]Window

func DefaultWindows() Windows {
	return Windows{
		SlotBreakfast:    {6, 9},
		SlotMorning:      {9, 12},
		SlotLunch:        {12, 14},
		SlotEvening:      {17, 20},
		SlotDinner:       {20, 22},
		SlotNightWaiting: {22, 24},
		SlotNightConnect: {0, 4},
	}
}

// Merge returns the defaults with overrides applied. Unknown slots and
// out-of-range hours are rejected.
func Merge(overrides map[string]Window) (Windows, error) {
	out := DefaultWindows()
	for name, w := range overrides {
		s := Slot(name)
		if !s.Valid() {
			return nil, fmt.Errorf("nudges: unknown slot %q", name)
		}
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[s] = w
	}
	return out, nil
}

// SlotAt returns the slot for now's local hour, if any.
func (ws Windows) SlotAt(now time.Time) (Slot, bool) {
	h := now.Hour()
	for _, s := range slotOrder {
		if w, ok := ws[s]; ok && w.Contains(h) {
			return s, true
		}
	}
	return "", false
}
