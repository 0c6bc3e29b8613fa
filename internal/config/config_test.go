package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("EDITOR_SESSION_TTL_MINUTES", "")
	t.Setenv("EDITOR_SWEEP_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "pt-BR", cfg.Roster.Locale)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 2*time.Hour, cfg.Editor.SessionTTL())
	assert.Equal(t, "@every 1m", cfg.Editor.SweepSchedule)
}

func TestEditorConfigSessionTTL(t *testing.T) {
	assert.Zero(t, EditorConfig{}.SessionTTL())
	assert.Equal(t, 15*time.Minute, EditorConfig{SessionTTLMinutes: 15}.SessionTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/board.db")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/board.db", cfg.Store.SQLitePath)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Postgres.RunMigrations)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "firestore")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_DB", "x")
	_, err = Load()
	assert.Error(t, err)
}
