package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from variables set in the developer's shell.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"GOLF_API_URL", "GOLF_API_KEY", "GOLF_API_RPS", "STORE_DRIVER", "STORE_DIR",
		"DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SEARCH_CACHE_TTL",
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "MAP_SETTLE_DELAY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.golfcourseapi.com", cfg.GolfAPI.URL)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, geo.DefaultRegion, cfg.Map.DefaultRegion)
	assert.Equal(t, 600*time.Millisecond, cfg.Map.SettleDelay)
	assert.Equal(t, 1.15, cfg.Map.FitPadding)
	assert.Equal(t, 0.6, cfg.Map.ZoomMultiplier)
	assert.Equal(t, 10*time.Second, cfg.Map.LocationTimeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "holemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
golf_api:
  key: from-file
  rps: 2
store:
  driver: memory
redis:
  addr: localhost:6379
map:
  settle_delay: 250ms
  default_region:
    latitude: 51.5
    longitude: -0.12
    latitude_delta: 0.01
    longitude_delta: 0.01
`), 0o644))

	t.Setenv("GOLF_API_KEY", "from-env")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEARCH_CACHE_TTL", "5m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GolfAPI.Key)
	assert.Equal(t, 2.0, cfg.GolfAPI.RPS)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Map.SettleDelay)
	assert.Equal(t, 51.5, cfg.Map.DefaultRegion.Latitude)
	assert.Equal(t, 0.01, cfg.Map.DefaultRegion.LongitudeDelta)
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("GOLF_API_KEY=dotenv-key\nSTORE_DRIVER=memory\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("GOLF_API_KEY")
		os.Unsetenv("STORE_DRIVER")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.GolfAPI.Key)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "firestore"}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}},
		{"bad rps", map[string]string{"GOLF_API_RPS": "fast"}},
		{"bad duration", map[string]string{"MAP_SETTLE_DELAY": "soon"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store: [1, 2"), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestValidateMapTunables(t *testing.T) {
	cfg := Default()
	cfg.Map.FitPadding = 0
	cfg.Map.ZoomMultiplier = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fit_padding")
	assert.Contains(t, err.Error(), "zoom_multiplier")
}
