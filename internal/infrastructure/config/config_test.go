package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"ROSTERLY_APP_NAME":                os.Getenv("ROSTERLY_APP_NAME"),
		"ROSTERLY_APP_ENV":                 os.Getenv("ROSTERLY_APP_ENV"),
		"ROSTERLY_APP_PORT":                os.Getenv("ROSTERLY_APP_PORT"),
		"ROSTERLY_DATABASE_HOST":           os.Getenv("ROSTERLY_DATABASE_HOST"),
		"ROSTERLY_DATABASE_PORT":           os.Getenv("ROSTERLY_DATABASE_PORT"),
		"ROSTERLY_DATABASE_USER":           os.Getenv("ROSTERLY_DATABASE_USER"),
		"ROSTERLY_DATABASE_PASSWORD":       os.Getenv("ROSTERLY_DATABASE_PASSWORD"),
		"ROSTERLY_DATABASE_DBNAME":         os.Getenv("ROSTERLY_DATABASE_DBNAME"),
		"ROSTERLY_DATABASE_SSLMODE":        os.Getenv("ROSTERLY_DATABASE_SSLMODE"),
		"ROSTERLY_DATABASE_MAX_OPEN_CONNS": os.Getenv("ROSTERLY_DATABASE_MAX_OPEN_CONNS"),
		"ROSTERLY_DATABASE_MAX_IDLE_CONNS": os.Getenv("ROSTERLY_DATABASE_MAX_IDLE_CONNS"),
		"ROSTERLY_IMPORT_MAX_FILE_SIZE":    os.Getenv("ROSTERLY_IMPORT_MAX_FILE_SIZE"),
		"ROSTERLY_IMPORT_MAX_ERRORS":       os.Getenv("ROSTERLY_IMPORT_MAX_ERRORS"),
		"ROSTERLY_IMPORT_PREVIEW_ROWS":     os.Getenv("ROSTERLY_IMPORT_PREVIEW_ROWS"),
		"ROSTERLY_EXPORT_MAX_ROWS":         os.Getenv("ROSTERLY_EXPORT_MAX_ROWS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "rosterly-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "rosterly", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, int64(50<<20), cfg.Import.MaxFileSize)
		assert.Equal(t, 100, cfg.Import.MaxErrors)
		assert.Equal(t, 10, cfg.Import.PreviewRows)
		assert.Equal(t, 20, cfg.Import.HistorySize)
		assert.Equal(t, 100000, cfg.Export.MaxRows)
		assert.Equal(t, "Work Schedule", cfg.Export.CalendarName)
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_APP_NAME", "test-app")
		os.Setenv("ROSTERLY_APP_PORT", "9000")
		os.Setenv("ROSTERLY_DATABASE_HOST", "testdb.local")
		os.Setenv("ROSTERLY_DATABASE_PORT", "5433")
		os.Setenv("ROSTERLY_IMPORT_MAX_ERRORS", "250")
		os.Setenv("ROSTERLY_IMPORT_PREVIEW_ROWS", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 250, cfg.Import.MaxErrors)
		assert.Equal(t, 5, cfg.Import.PreviewRows)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("ROSTERLY_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects raising the upload ceiling past 50MB", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_IMPORT_MAX_FILE_SIZE", "104857600")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_file_size")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"ROSTERLY_APP_ENV":           os.Getenv("ROSTERLY_APP_ENV"),
		"ROSTERLY_DATABASE_PASSWORD": os.Getenv("ROSTERLY_DATABASE_PASSWORD"),
		"ROSTERLY_DATABASE_SSLMODE":  os.Getenv("ROSTERLY_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_APP_ENV", "production")
		os.Setenv("ROSTERLY_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_APP_ENV", "production")
		os.Setenv("ROSTERLY_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ROSTERLY_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("ROSTERLY_APP_ENV", "production")
		os.Setenv("ROSTERLY_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ROSTERLY_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
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

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
