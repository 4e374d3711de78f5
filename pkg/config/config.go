// Package config loads settings from an optional YAML file, a .env file and the
// environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/logging"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	GolfAPI struct {
		URL string  `yaml:"url"`
		Key string  `yaml:"key"`
		RPS float64 `yaml:"rps"`
	} `yaml:"golf_api"`
	Store struct {
		Driver      string `yaml:"driver"`
		Dir         string `yaml:"dir"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	SearchCacheTTL time.Duration  `yaml:"search_cache_ttl"`
	HTTPAddr       string         `yaml:"http_addr"`
	Log            logging.Config `yaml:"log"`
	Map            MapConfig      `yaml:"map"`
}

// MapConfig holds camera and location tunables.
type MapConfig struct {
	DefaultRegion   models.CameraRegion `yaml:"default_region"`
	SettleDelay     time.Duration       `yaml:"settle_delay"`
	FitPadding      float64             `yaml:"fit_padding"`
	ZoomMultiplier  float64             `yaml:"zoom_multiplier"`
	LocationTimeout time.Duration       `yaml:"location_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.GolfAPI.URL = "https://api.golfcourseapi.com"
	c.GolfAPI.RPS = 5
	c.Store.Driver = store.DriverFile
	c.Store.Dir = "holes"
	c.SearchCacheTTL = time.Hour
	c.HTTPAddr = ":8080"
	c.Log.Level = "info"
	c.Map = MapConfig{
		DefaultRegion:   geo.DefaultRegion,
		SettleDelay:     600 * time.Millisecond,
		FitPadding:      geo.DefaultFitPadding,
		ZoomMultiplier:  geo.DefaultZoomMultiplier,
		LocationTimeout: 10 * time.Second,
	}
	return c
}

// Load applies the YAML file at path (skipped when path is empty or missing), then .env,
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: parse %s: %w", models.ErrValidation, path, err)
			}
		}
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("GOLF_API_URL", &c.GolfAPI.URL)
	str("GOLF_API_KEY", &c.GolfAPI.Key)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DIR", &c.Store.Dir)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("GOLF_API_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: GOLF_API_RPS: %w", models.ErrValidation, err)
		}
		c.GolfAPI.RPS = f
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		// unparsable values fall back to db 0
		if n, _ := strconv.Atoi(v); n >= 0 {
			c.Redis.DB = n
		}
	}
	for key, dst := range map[string]*time.Duration{
		"SEARCH_CACHE_TTL": &c.SearchCacheTTL,
		"MAP_SETTLE_DELAY": &c.Map.SettleDelay,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", models.ErrValidation, key, err)
		}
		*dst = d
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverFile, store.DriverPostgres:
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.Driver == store.DriverPostgres && strings.TrimSpace(c.Store.DatabaseURL) == "" {
		problems = append(problems, "postgres store needs DATABASE_URL")
	}
	if c.Store.Driver == store.DriverFile && strings.TrimSpace(c.Store.Dir) == "" {
		problems = append(problems, "file store needs STORE_DIR")
	}
	if c.Map.FitPadding <= 0 {
		problems = append(problems, "map.fit_padding must be positive")
	}
	if c.Map.ZoomMultiplier <= 0 {
		problems = append(problems, "map.zoom_multiplier must be positive")
	}
	if c.Map.SettleDelay < 0 {
		problems = append(problems, "map.settle_delay must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// StoreOptions converts the store section for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{Driver: c.Store.Driver, Dir: c.Store.Dir, DSN: c.Store.DatabaseURL}
}
