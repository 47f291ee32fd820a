package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the journal. Append-only:
// there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Service records the journal. Callers treat it as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var (
	ErrInvalidEntry      = errors.New("audit: invalid entry")
	ErrRepoNotConfigured = errors.New("audit: repository not configured")
)

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return ErrRepoNotConfigured
	}
	if e.Type == "" {
		return ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.repo == nil {
		return nil, ErrRepoNotConfigured
	}
	return s.repo.Recent(ctx, limit)
}

// LogAdminAction records a privileged read or change.
func (s *Service) LogAdminAction(ctx context.Context, actorID, message, metadata string) error {
	return s.Append(ctx, Entry{
		Type:     EntryAdminAction,
		ActorID:  actorID,
		Message:  message,
		Metadata: metadata,
	})
}
