package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/latoulicious/Reactor/pkg/reactor"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestActivityLog(t *testing.T) (*ActivityLog, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	log, err := OpenActivityLog(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		log.Close()
	}
	return log, cleanup
}

func TestOpenActivityLog_InvalidPath(t *testing.T) {
	log, err := OpenActivityLog("", nil)

	assert.ErrorIs(t, err, ErrInvalidDatabasePath)
	assert.Nil(t, log)
}

func TestNewActivityLog_NilDatabase(t *testing.T) {
	log, err := NewActivityLog(nil, nil)

	assert.ErrorIs(t, err, ErrDatabaseNotConnected)
	assert.Nil(t, log)
}

func TestActivityLog_StoreAndRecent(t *testing.T) {
	log, cleanup := setupTestActivityLog(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first := reactor.Activity{
		ID: "a1", Operation: reactor.OpScanPast, GuildID: "g", ChannelID: "c", UserID: "u",
		Applied: 4, Status: "Reacted with 👍 to 4 messages (4 reactions)", At: now.Add(-time.Minute),
	}
	second := reactor.Activity{
		ID: "a2", Operation: reactor.OpUndo, ChannelID: "c", Removed: 4, At: now,
	}

	require.NoError(t, log.Store(ctx, first))
	log.Observe(ctx, second)

	recent, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a2", recent[0].ID)
	assert.Equal(t, "a1", recent[1].ID)
	assert.Equal(t, 4, recent[1].Applied)
	assert.Equal(t, first.Status, recent[1].Status)
	assert.True(t, first.At.Equal(recent[1].At))
}

func TestActivityLog_StoreRejectsMissingID(t *testing.T) {
	log, cleanup := setupTestActivityLog(t)
	defer cleanup()

	err := log.Store(context.Background(), reactor.Activity{Operation: reactor.OpUndo})

	assert.ErrorIs(t, err, ErrInvalidActivity)
}

func TestActivityLog_Stats(t *testing.T) {
	log, cleanup := setupTestActivityLog(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, log.Store(ctx, reactor.Activity{ID: "1", Operation: reactor.OpLive, Applied: 2}))
	require.NoError(t, log.Store(ctx, reactor.Activity{ID: "2", Operation: reactor.OpLive, Applied: 1, Failed: 1}))
	require.NoError(t, log.Store(ctx, reactor.Activity{ID: "3", Operation: reactor.OpBulkRemove, Removed: 5}))

	stats, err := log.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, OperationStats{Count: 2, Applied: 3, Failed: 1}, stats[reactor.OpLive])
	assert.Equal(t, OperationStats{Count: 1, Removed: 5}, stats[reactor.OpBulkRemove])
}

func TestActivityLog_CleanOlderThan(t *testing.T) {
	log, cleanup := setupTestActivityLog(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, log.Store(ctx, reactor.Activity{ID: "old", Operation: reactor.OpLive, At: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, log.Store(ctx, reactor.Activity{ID: "new", Operation: reactor.OpLive, At: time.Now()}))

	n, err := log.CleanOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	recent, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].ID)

	_, err = log.CleanOlderThan(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidRetention)
}

func TestNewActivityLog_ExistingConnection(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = NewActivityLog(db, nil)
	require.NoError(t, err)

	// schema creation is idempotent
	log, err := NewActivityLog(db, nil)
	require.NoError(t, err)
	assert.NoError(t, log.Store(context.Background(), reactor.Activity{ID: "x", Operation: reactor.OpUndo}))
}
