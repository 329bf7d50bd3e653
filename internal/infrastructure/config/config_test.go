package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envGuard snapshots the given variables, clears them and restores them at cleanup
func envGuard(t *testing.T, keys ...string) func() {
	t.Helper()
	original := make(map[string]string, len(keys))
	for _, k := range keys {
		original[k] = os.Getenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
	return func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	clearEnv := envGuard(t,
		"LEDGER_APP_NAME",
		"LEDGER_APP_ENV",
		"LEDGER_APP_PORT",
		"LEDGER_DATABASE_DRIVER",
		"LEDGER_DATABASE_PATH",
		"LEDGER_DATABASE_HOST",
		"LEDGER_DATABASE_PORT",
		"LEDGER_DATABASE_USER",
		"LEDGER_DATABASE_PASSWORD",
		"LEDGER_DATABASE_DBNAME",
		"LEDGER_DATABASE_SSLMODE",
		"LEDGER_DATABASE_MAX_OPEN_CONNS",
		"LEDGER_DATABASE_MAX_IDLE_CONNS",
		"LEDGER_LEDGER_DEFAULT_CURRENCY",
		"LEDGER_TELEMETRY_SAMPLING_RATIO",
		"LEDGER_REDIS_ENABLED",
		"LEDGER_REDIS_HOST",
		"LEDGER_REDIS_PORT",
		"LEDGER_HTTP_IDEMPOTENCY_TTL",
		"LEDGER_PROFILING_ENABLED",
		"LEDGER_PROFILING_SERVER_ADDRESS",
	)

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ledger-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "USD", cfg.Ledger.DefaultCurrency)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 24*time.Hour, cfg.HTTP.IdempotencyTTL)
		assert.False(t, cfg.Profiling.Enabled)
		assert.Equal(t, "ledger-backend", cfg.Profiling.ApplicationName)
		assert.Contains(t, cfg.Profiling.ProfileTypes, "cpu")
	})

	t.Run("loads redis settings", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_REDIS_ENABLED", "true")
		os.Setenv("LEDGER_REDIS_HOST", "cache.local")
		os.Setenv("LEDGER_REDIS_PORT", "6380")
		os.Setenv("LEDGER_HTTP_IDEMPOTENCY_TTL", "1h")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache.local:6380", cfg.Redis.Addr())
		assert.Equal(t, time.Hour, cfg.HTTP.IdempotencyTTL)
	})

	t.Run("rejects sub-second idempotency ttl", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_HTTP_IDEMPOTENCY_TTL", "500ms")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency_ttl")
	})

	t.Run("profiling requires a server address", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profiling.server_address")

		os.Setenv("LEDGER_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Profiling.Enabled)
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_NAME", "test-app")
		os.Setenv("LEDGER_APP_ENV", "testing")
		os.Setenv("LEDGER_APP_PORT", "9000")
		os.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		os.Setenv("LEDGER_DATABASE_PORT", "5433")
		os.Setenv("LEDGER_DATABASE_USER", "testuser")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "testpass")
		os.Setenv("LEDGER_DATABASE_DBNAME", "testdb")
		os.Setenv("LEDGER_DATABASE_SSLMODE", "require")
		os.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("LEDGER_LEDGER_DEFAULT_CURRENCY", "KES")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "KES", cfg.Ledger.DefaultCurrency)
	})

	t.Run("sqlite driver pins a single connection", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_DATABASE_DRIVER", "sqlite")
		os.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "50")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Database.IsSQLite())
		assert.Equal(t, "ledger.db", cfg.Database.Path)
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
		assert.Equal(t, 1, cfg.Database.MaxIdleConns)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	clearEnv := envGuard(t,
		"LEDGER_APP_ENV",
		"LEDGER_DATABASE_DRIVER",
		"LEDGER_DATABASE_PASSWORD",
		"LEDGER_DATABASE_SSLMODE",
		"LEDGER_TELEMETRY_DB_LOG_FULL_SQL",
		"LEDGER_SWAGGER_ENABLED",
		"LEDGER_SWAGGER_ALLOWED_IPS",
	)

	setValidProductionBase := func() {
		os.Setenv("LEDGER_APP_ENV", "production")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "secure-password")
		os.Setenv("LEDGER_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_ENV", "production")
		os.Setenv("LEDGER_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("rejects an open swagger endpoint in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("LEDGER_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled or restricted")
	})

	t.Run("allows swagger restricted by IP in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("LEDGER_SWAGGER_ENABLED", "true")
		os.Setenv("LEDGER_SWAGGER_ALLOWED_IPS", "10.0.0.0/8")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
		assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Swagger.AllowedIPs)
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("LEDGER_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("LEDGER_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in production")
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("LEDGER_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/ledger.db"}
		assert.Equal(t, "/tmp/ledger.db", cfg.DSN())
	})
}
