package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1F47E/golf-hole-mapper/pkg/config"
	"github.com/1F47E/golf-hole-mapper/pkg/golfapi"
	"github.com/1F47E/golf-hole-mapper/pkg/logging"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/spf13/cobra"
)

var (
	configFile string
	indexFile  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "holemap",
	Short: "Map golf hole geometry and browse courses",
	Long: `holemap searches the golf course API, records tee, green, fairway and hazard
geometry for a hole and stores it per course, hole by hole.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "holemap.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&indexFile, "index", "i", "pins.gob", "Pin index file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(searchCmd, teesCmd, holesCmd, mapCmd, showCmd, geojsonCmd, nearbyCmd, pinsCmd, reindexCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// env is what every command needs: settings and a logger.
type env struct {
	cfg config.Config
	log *slog.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return &env{cfg: cfg, log: logging.New(cfg.Log)}, nil
}

func (e *env) searchClient() (*golfapi.Client, func()) {
	opts := []golfapi.Option{
		golfapi.WithRateLimit(e.cfg.GolfAPI.RPS),
		golfapi.WithLogger(e.log),
	}
	cleanup := func() {}
	if rc := golfapi.OpenRedis(e.cfg.Redis.Addr, e.cfg.Redis.Password, e.cfg.Redis.DB); rc != nil {
		cache := golfapi.NewRedisCache(rc)
		opts = append(opts, golfapi.WithCache(cache, e.cfg.SearchCacheTTL))
		cleanup = func() { cache.Close() }
	}
	return golfapi.NewClient(e.cfg.GolfAPI.URL, e.cfg.GolfAPI.Key, opts...), cleanup
}

func (e *env) openStore(ctx context.Context) (store.DocumentStore, error) {
	s, err := store.Open(ctx, e.cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", e.cfg.Store.Driver, err)
	}
	e.log.Debug("store_opened", "driver", e.cfg.Store.Driver)
	return s, nil
}
