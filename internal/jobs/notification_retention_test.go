package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeletesOnlyOldReadNotifications(t *testing.T) {
	store, cleanup, err := storage.NewTestStorage()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()

	user, err := store.Queries.CreateUser(ctx, db.CreateUserParams{
		ID:    ulid.Make().String(),
		Email: "kim@example.com",
	})
	require.NoError(t, err)

	oldRead, err := store.Queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID: ulid.Make().String(), UserID: user.ID, Kind: "voicemail", Title: "old read", Body: "b",
	})
	require.NoError(t, err)
	require.NoError(t, store.Queries.MarkNotificationRead(ctx, oldRead.ID))

	oldUnread, err := store.Queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID: ulid.Make().String(), UserID: user.ID, Kind: "voicemail", Title: "old unread", Body: "b",
	})
	require.NoError(t, err)

	// Backdate both rows past the retention window.
	for _, id := range []string{oldRead.ID, oldUnread.ID} {
		_, err := store.DB().ExecContext(ctx,
			`UPDATE notifications SET created_at = ? WHERE id = ?`,
			time.Now().Add(-60*24*time.Hour), id)
		require.NoError(t, err)
	}

	recent, err := store.Queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID: ulid.Make().String(), UserID: user.ID, Kind: "voicemail", Title: "recent read", Body: "b",
	})
	require.NoError(t, err)
	require.NoError(t, store.Queries.MarkNotificationRead(ctx, recent.ID))

	job := NewNotificationRetention(store, 30*24*time.Hour)
	job.sweep(ctx)

	items, err := store.Queries.ListNotificationsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	titles := []string{items[0].Title, items[1].Title}
	assert.Contains(t, titles, "old unread")
	assert.Contains(t, titles, "recent read")
	assert.NotContains(t, titles, "old read")
}
