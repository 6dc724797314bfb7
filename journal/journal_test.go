package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	j, err := Dial(sqlstore.DriverSqlite, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	ctx := context.Background()

	n, err := j.Run(ctx, "update-daily", "--code=sh.600000", func(ctx context.Context) (int, error) {
		return 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	errFetch := errors.New("fetch failed")
	n, err = j.Run(ctx, "update-hourly", "", func(ctx context.Context) (int, error) {
		return 3, errFetch
	})
	assert.ErrorIs(t, err, errFetch)
	assert.Equal(t, 3, n)

	ls, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ls, 2)

	assert.Equal(t, "update-hourly", ls[0].Command)
	assert.Equal(t, StatusFailed, ls[0].Status)
	assert.Equal(t, "fetch failed", ls[0].Error)
	assert.Equal(t, 3, ls[0].Count)

	assert.Equal(t, "update-daily", ls[1].Command)
	assert.Equal(t, StatusSuccess, ls[1].Status)
	assert.Equal(t, 10, ls[1].Count)
	assert.Len(t, ls[1].RunID, 36)
	assert.NotZero(t, ls[1].EndedAt)
}

func TestJournal_Nil(t *testing.T) {
	var j *Journal
	n, err := j.Run(context.Background(), "init", "", func(ctx context.Context) (int, error) { return 1, nil })
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, j.Close())
}

func TestJournal_RecordFailed(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "awatcher.log")
	closeLog, err := logger.Init(config.Logging{Level: "info", FilePath: logFile, RotationMB: 1})
	require.NoError(t, err)

	j, err := Dial(sqlstore.DriverSqlite, filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.db.Close())

	//记录失败不影响执行结果
	called := false
	n, err := j.Run(context.Background(), "update-daily", "", func(ctx context.Context) (int, error) {
		called = true
		return 5, nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 5, n)
	require.NoError(t, closeLog())

	bs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(bs), "记录运行[update-daily]失败")
}
