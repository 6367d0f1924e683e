package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/internal/api"
	"github.com/poissonlab/fiberlat/pkg/cache"
	"github.com/poissonlab/fiberlat/pkg/config"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
	"github.com/poissonlab/fiberlat/pkg/session"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server receives a stop signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command: run the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fiberlat HTTP API",
		Long: `Run the fiberlat HTTP API.

The cache and session store backends come from the config file. Without one
the server uses the file cache and an in-memory session store.

Examples:
  fiberlat serve
  fiberlat serve --addr :9090
  fiberlat serve --config fiberlat.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	cc, err := c.serveCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	store, closeStore, err := c.serveStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := pipeline.NewRunner(cc, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(store, runner, c.Logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveCache builds the cache backend selected by the config.
func (c *CLI) serveCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	}
}

// serveStore builds the session store selected by the config. The returned
// func releases any connection the store holds.
func (c *CLI) serveStore(ctx context.Context, cfg config.StoreConfig) (session.Store, func(), error) {
	switch cfg.Backend {
	case "file":
		store, err := session.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "mongo":
		store, err := session.NewMongoStore(ctx, session.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}
