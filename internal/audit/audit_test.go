package audit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"social-calling/internal/notify"
	"social-calling/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AppendRequiresType(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	assert.ErrorIs(t, svc.Append(context.Background(), Entry{}), ErrInvalidEntry)
	assert.ErrorIs(t, NewService(nil).Append(context.Background(), Entry{Type: EntryLevelUp}), ErrRepoNotConfigured)
}

func TestService_FillsIDAndTime(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	require.NoError(t, svc.LogAdminAction(context.Background(), "admin-1", "journal read", "{}"))
	got, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, now, got[0].CreatedAt)
	assert.Equal(t, EntryAdminAction, got[0].Type)
}

func TestMemoryRepo_RecentNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(ctx, Entry{ID: id, Type: EntryLevelUp}))
	}
	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestSink_JournalsEconomicEventsOnly(t *testing.T) {
	repo := NewMemoryRepo()
	sink := NewSink(NewService(repo))
	em := notify.NewEmitter(nil, sink)
	ctx := context.Background()

	em.Emit(ctx, notify.CallStarted{SessionID: "s1"})
	em.Emit(ctx, notify.CoinsDeducted{SessionID: "s1", Amount: 30, Minute: 1})
	em.Emit(ctx, notify.LevelUp{From: 1, To: 2, XP: 100})
	em.Emit(ctx, notify.EngagementNudge{Slot: "lunch"})

	got, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EntryLevelUp, got[0].Type)
	assert.Equal(t, EntryCoinsDeducted, got[1].Type)
	assert.Equal(t, int64(-30), got[1].Amount)
	assert.Equal(t, "s1", got[1].SessionID)
	assert.Contains(t, got[1].Metadata, `"amount":30`)
}

func TestSQLRepo_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepo(db, store.DialectPostgres)
	ctx := context.Background()
	at := time.UnixMilli(1760000000000).UTC()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_journal`) + `.*\$9\)`).
		WithArgs("id-1", "coins_deducted", "ev", "s1", "", int64(-30), "m", "{}", at.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Append(ctx, Entry{
		ID: "id-1", Type: EntryCoinsDeducted, EventID: "ev", SessionID: "s1",
		Amount: -30, Message: "m", Metadata: "{}", CreatedAt: at,
	}))

	rows := sqlmock.NewRows([]string{"id", "type", "event_id", "session_id", "actor_id", "amount", "message", "metadata", "created_at"}).
		AddRow("id-1", "coins_deducted", "ev", "s1", "", int64(-30), "m", "{}", at.UnixMilli())
	mock.ExpectQuery(`(?s)SELECT id, type .* FROM audit_journal ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(rows)

	got, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, EntryCoinsDeducted, got[0].Type)
	assert.Equal(t, at, got[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
