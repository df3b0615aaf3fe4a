package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithSQLite(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "test.db")
	t.Setenv("REDIS_APPROVAL_TTL_SECONDS", "90")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageSQLite, cfg.Storage.Driver)
	require.Equal(t, "test.db", cfg.Storage.SQLitePath)
	require.Equal(t, 90*time.Second, cfg.Redis.ApprovalTTL())
	require.False(t, cfg.Seed.Enabled)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", StorageSQLite)
	t.Setenv("REDIS_DB", "first")

	_, err := Load()
	require.ErrorContains(t, err, "REDIS_DB")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "postgres without dsn",
			cfg:     Config{Storage: StorageConfig{Driver: StoragePostgres}},
			wantErr: "POSTGRES_DSN",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Storage: StorageConfig{Driver: "mysql"}},
			wantErr: "unknown STORAGE_DRIVER",
		},
		{
			name: "seed without password",
			cfg: Config{
				Storage: StorageConfig{Driver: StorageSQLite, SQLitePath: "x.db"},
				Seed:    SeedConfig{Enabled: true},
			},
			wantErr: "SEED_ADMIN_PASSWORD",
		},
		{
			name: "postgres with dsn",
			cfg: Config{
				Storage:  StorageConfig{Driver: StoragePostgres},
				Postgres: PostgresConfig{DSN: "postgres://localhost/schedule"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	require.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	require.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
}
