package config

import (
	"fmt"
	"os"

	"social-calling/internal/nudges"
	"social-calling/internal/offers"

	"github.com/BurntSushi/toml"
)

// Overrides is the optional TOML file for tuning product windows without a
// rebuild. Absent keys keep the built-in defaults.
//
//	[nudges.lunch]
//	start = 13
//	end = 15
//
//	[offer]
//	daily_limit = 3
type Overrides struct {
	Nudges map[string]nudges.Window `toml:"nudges"`
	Offer  OfferOverrides           `toml:"offer"`
}

type OfferOverrides struct {
	DailyLimit *int64 `toml:"daily_limit,omitempty"`
	StartHour  *int   `toml:"start_hour,omitempty"`
	EndHour    *int   `toml:"end_hour,omitempty"`
}

// LoadOverrides reads path. An empty path or a missing file yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	var o Overrides
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return o, fmt.Errorf("reading overrides: %w", err)
	}
	if err := toml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parsing overrides: %w", err)
	}
	return o, nil
}

// NudgeWindows merges the file's windows over the defaults.
func (o Overrides) NudgeWindows() (nudges.Windows, error) {
	return nudges.Merge(o.Nudges)
}

// OfferPolicy applies the file's offer settings over the defaults.
func (o Overrides) OfferPolicy() (offers.Policy, error) {
	p := offers.DefaultPolicy()
	if o.Offer.DailyLimit != nil {
		p.DailyLimit = *o.Offer.DailyLimit
	}
	if o.Offer.StartHour != nil {
		p.StartHour = *o.Offer.StartHour
	}
	if o.Offer.EndHour != nil {
		p.EndHour = *o.Offer.EndHour
	}
	if p.DailyLimit < 0 {
		return offers.Policy{}, fmt.Errorf("offer.daily_limit must not be negative, got %d", p.DailyLimit)
	}
	if p.StartHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour {
		return offers.Policy{}, fmt.Errorf("offer window must satisfy 0 <= start_hour < end_hour <= 24, got %d-%d", p.StartHour, p.EndHour)
	}
	return p, nil
}
