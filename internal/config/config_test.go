package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/homebound/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBOUND_ENV", "local")
	t.Setenv("HOMEBOUND_REQUEST_TIMEOUT", "3s")
	t.Setenv("HOMEBOUND_TRANSIT_PROVIDER", "odsay")
	t.Setenv("HOMEBOUND_TRANSIT_KEY", "testAPIKey")
	t.Setenv("HOMEBOUND_STORE_TYPE", "postgres")
	t.Setenv("HOMEBOUND_DB_HOST", "testHost")
	t.Setenv("HOMEBOUND_DB_PORT", "12345")
	t.Setenv("HOMEBOUND_DB_USER", "admin")
	t.Setenv("HOMEBOUND_DB_PASSWORD", "adminpass")
	t.Setenv("HOMEBOUND_DB_NAME", "testName")
	t.Setenv("HOMEBOUND_REDIS_DB", "2")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "odsay", cfg.Transit.Provider)
	assert.Equal(t, "testAPIKey", cfg.Transit.Key)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, "routeserver", cfg.Transit.Provider)
	assert.Empty(t, cfg.Transit.URL)
	assert.Equal(t, 1400, cfg.Transit.DefaultFare)
	assert.Equal(t, "kakao", cfg.Taxi.Provider)
	assert.Equal(t, "kakao", cfg.Geocoder.Provider)
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "./data", cfg.Store.Path)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.SentryDSN)
}

func TestMustLoad_FromFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	filet.File(t, filepath.Join(dir, "homebound.yaml"), `
env: development
port: 9090
transit:
  provider: google
  key: yaml-key
geocoder:
  provider: nominatim
  url: http://nominatim.internal
sentry:
  dsn: https://public@sentry.example.com/1
`)
	t.Chdir(dir)
	t.Setenv("HOMEBOUND_TRANSIT_KEY", "env-key")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "google", cfg.Transit.Provider)
	assert.Equal(t, "env-key", cfg.Transit.Key, "environment overrides the file")
	assert.Equal(t, "nominatim", cfg.Geocoder.Provider)
	assert.Equal(t, "http://nominatim.internal", cfg.Geocoder.URL)
	assert.Equal(t, "https://public@sentry.example.com/1", cfg.SentryDSN)
}

func TestMustLoad_FromDotEnv(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	filet.File(t, filepath.Join(dir, ".env"), "HOMEBOUND_TAXI_URL=http://taxi.from.dotenv\nHOMEBOUND_TAXI_KEY=dotenv-key\n")
	t.Chdir(dir)
	t.Setenv("HOMEBOUND_TAXI_KEY", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("HOMEBOUND_TAXI_URL") })

	cfg := config.MustLoad()

	assert.Equal(t, "http://taxi.from.dotenv", cfg.Taxi.URL)
	assert.Equal(t, "from-env", cfg.Taxi.Key, ".env does not override the environment")
}

func TestMustLoad_InvalidFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	filet.File(t, filepath.Join(dir, "homebound.yaml"), "port: [unterminated")
	t.Chdir(dir)

	assert.PanicsWithValue(t, "failed to read configuration file", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RequestTimeoutError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBOUND_REQUEST_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse request timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBOUND_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBOUND_RATE_LIMIT", "error_value")

	assert.PanicsWithValue(t, "failed to parse rate limit from configuration, must be an integer types", func() {
		config.MustLoad()
	})
}

func TestMustLoad_DefaultFareError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEBOUND_TRANSIT_DEFAULT_FARE", "free")

	assert.PanicsWithValue(t,
		"failed to parse default transit fare from configuration, must be an integer types",
		func() {
			config.MustLoad()
		})
}
