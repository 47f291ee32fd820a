package pricing

import "time"

// Service prices calls.
//
// Contract:
// - Pure calculation; no I/O and no error cases.
// - Rules apply in order: base day/night rate, star override, free-for-women.
// - Unknown gender or level falls back to the base rate.
type Service struct {
	clock func() time.Time
}

func NewService() *Service {
	return &Service{clock: time.Now}
}

// NewServiceWithClock is used by tests and by callers that pin a timezone.
func NewServiceWithClock(clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{clock: clock}
}

const (
	nightStartHour = 21
	nightEndHour   = 3

	starMinLevel = 7
)

var (
	dayRates = map[CallType]int64{
		CallTypeVoice: 10,
		CallTypeVideo: 30,
		CallTypeLive:  60,
	}
	nightRates = map[CallType]int64{
		CallTypeVoice: 30,
		CallTypeVideo: 60,
		CallTypeLive:  100,
	}
	starRates = map[CallType]int64{
		CallTypeVoice: 60,
		CallTypeVideo: 90,
		CallTypeLive:  120,
	}
)

// IsNightWindow reports whether now falls in [21:00, 03:00) local to now's location.
// The range wraps midnight, so it is two half-open checks rather than one.
func IsNightWindow(now time.Time) bool {
	h := now.Hour()
	return h >= nightStartHour || h < nightEndHour
}

func WindowAt(now time.Time) Window {
	if IsNightWindow(now) {
		return WindowNight
	}
	return WindowDay
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.clock() }

// Quote prices a call. A zero now uses the service clock.
func (s *Service) Quote(caller Gender, callee CalleeMeta, t CallType, now time.Time) Quote {
	if now.IsZero() {
		now = s.clock()
	}
	return QuoteAt(caller, callee, t, now)
}

// QuoteAt is the clock-free form of Service.Quote.
func QuoteAt(caller Gender, callee CalleeMeta, t CallType, now time.Time) Quote {
	w := WindowAt(now)
	q := Quote{Type: t, Window: w}

	rates := dayRates
	if w == WindowNight {
		rates = nightRates
	}
	q.ListCostPerMinute = rates[t]

	if isStarCallee(callee) && w == WindowNight {
		if r, ok := starRates[t]; ok {
			q.ListCostPerMinute = r
			q.Star = true
		}
	}

	q.CostPerMinute = q.ListCostPerMinute
	if caller == GenderFemale {
		q.Free = true
		q.CostPerMinute = 0
	}
	return q
}

// ComputeCallCost returns the per-minute coin cost fixed for a whole session.
func ComputeCallCost(caller Gender, callee CalleeMeta, t CallType, now time.Time) int64 {
	return QuoteAt(caller, callee, t, now).CostPerMinute
}

func isStarCallee(m CalleeMeta) bool {
	return m.Gender == GenderFemale && m.Level >= starMinLevel
}

// Tariffs returns the rate card: base day, base night, and star rows per type.
func Tariffs() []Tariff {
	types := []CallType{CallTypeVoice, CallTypeVideo, CallTypeLive}
	out := make([]Tariff, 0, len(types)*3)
	for _, t := range types {
		out = append(out,
			Tariff{Type: t, Window: WindowDay, CostPerMinute: dayRates[t]},
			Tariff{Type: t, Window: WindowNight, CostPerMinute: nightRates[t]},
			Tariff{Type: t, Window: WindowNight, Star: true, CostPerMinute: starRates[t]},
		)
	}
	return out
}
