package audit

import (
	"context"
	"encoding/json"

	"social-calling/internal/notify"
)

// Sink journals the economic notifications and ignores the rest.
type Sink struct {
	svc *Service
}

func NewSink(svc *Service) *Sink { return &Sink{svc: svc} }

func (s *Sink) Publish(ctx context.Context, ev notify.Event) error {
	e, ok := entryFor(ev)
	if !ok {
		return nil
	}
	if b, err := json.Marshal(ev.Payload); err == nil {
		e.Metadata = string(b)
	}
	return s.svc.Append(ctx, e)
}

func entryFor(ev notify.Event) (Entry, bool) {
	e := Entry{EventID: ev.ID, CreatedAt: ev.At}
	switch p := ev.Payload.(type) {
	case notify.CoinsDeducted:
		e.Type = EntryCoinsDeducted
		e.SessionID = p.SessionID
		e.Amount = -p.Amount
		e.Message = "advisory call deduction"
	case notify.CallEnded:
		e.Type = EntryCallEnded
		e.SessionID = p.SessionID
		e.Amount = -p.AdvisoryCoins
		e.Message = "call ended"
	case notify.LevelUp:
		e.Type = EntryLevelUp
		e.Amount = p.XP
		e.Message = "level up"
	case notify.OfferApplied:
		e.Type = EntryOfferApplied
		e.Amount = p.Coins
		e.Message = "offer applied"
	default:
		return Entry{}, false
	}
	return e, true
}
