package leaderboard

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"social-calling/internal/backend"
)

// MemorySource is a fixed board for tests and local development.
type MemorySource struct {
	mu      sync.Mutex
	Entries []Entry
}

func NewMemorySource(entries ...Entry) *MemorySource {
	return &MemorySource{Entries: entries}
}

func (m *MemorySource) ListEntries(context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

// BackendSource reads /gamification/leaderboard/. The backend reports XP,
// which is used as league points.
type BackendSource struct {
	api *backend.Client
}

func NewBackendSource(api *backend.Client) *BackendSource { return &BackendSource{api: api} }

type backendEntry struct {
	User struct {
		ID          int64  `json:"id"`
		PhoneNumber string `json:"phone_number"`
	} `json:"user"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	XP int64 `json:"xp"`
}

type backendPage struct {
	Results []backendEntry `json:"results"`
}

func (b *BackendSource) ListEntries(ctx context.Context) ([]Entry, error) {
	var page backendPage
	if err := b.api.Do(ctx, http.MethodGet, "/gamification/leaderboard/", nil, &page); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(page.Results))
	for _, r := range page.Results {
		name := r.Profile.Name
		if name == "" {
			name = r.User.PhoneNumber
		}
		out = append(out, Entry{ID: strconv.FormatInt(r.User.ID, 10), Name: name, Points: r.XP})
	}
	return out, nil
}
