package database

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskdesk/internal/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func messages(entries []map[string]any) []any {
	msgs := make([]any, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e["message"])
	}
	return msgs
}

func TestConnect_LogsQueriesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)

	db, err := Connect(sqliteConfig(), log)
	require.NoError(t, err)
	t.Cleanup(func() {
		Close(db)
	})
	require.NoError(t, Migrate(db, zerolog.Nop()))
	buf.Reset()

	var user models.User
	err = db.First(&user, 1).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)

	entries := logEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "gorm", entries[0]["component"])
	assert.Equal(t, "query failed", entries[0]["message"])
	assert.Contains(t, entries[0]["sql"], "missing_table")
}

func TestGormLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), gormlogger.Warn)
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT 1", 1 }

	l.Info(ctx, "hidden %d", 1)
	l.Warn(ctx, "shown %d", 2)
	l.Trace(ctx, time.Now(), query, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	l.Trace(ctx, time.Now(), query, errors.New("boom"))

	assert.Equal(t, []any{"shown 2", "slow query", "query failed"}, messages(logEntries(t, &buf)))

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), query, errors.New("boom"))
	silent.Error(ctx, "nope")
	assert.Empty(t, buf.String())

	verbose := l.LogMode(gormlogger.Info)
	verbose.Trace(ctx, time.Now(), query, nil)
	assert.Equal(t, []any{"query"}, messages(logEntries(t, &buf)))
}
