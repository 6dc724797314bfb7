package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDate("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDate("20240102")
	assert.Error(t, err)
}

func TestOpenRepo(t *testing.T) {
	cfg := &config.Config{Store: config.Store{
		Driver: sqlstore.DriverSqlite,
		DSN:    filepath.Join(t.TempDir(), "stock.db"),
	}}
	repo, closeRepo, err := openRepo(context.Background(), cfg)
	require.NoError(t, err)
	defer closeRepo()
	assert.IsType(t, &sqlstore.Store{}, repo)
	require.NoError(t, repo.SetupIndexes(context.Background()))
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, v := range rootCmd.Commands() {
		names[v.Name()] = true
	}
	for _, name := range []string{"init", "update-stock-list", "update-daily", "update-hourly", "update-adjust-factor", "latest-date", "history", "schedule"} {
		assert.True(t, names[name], name)
	}

	c, _, err := rootCmd.Find([]string{"update-daily"})
	require.NoError(t, err)
	for _, flag := range []string{"code", "start-date", "end-date", "continue-on-error"} {
		assert.NotNil(t, c.Flags().Lookup(flag), flag)
	}
}
