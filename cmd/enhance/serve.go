package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/enhance/internal/cache"
	"github.com/vango-dev/enhance/internal/config"
	"github.com/vango-dev/enhance/internal/dev"
	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/internal/logging"
	"github.com/vango-dev/enhance/internal/telemetry"
	"github.com/vango-dev/enhance/pkg/host"
	"github.com/vango-dev/enhance/pkg/middleware"
)

type serveOptions struct {
	configPath string
	host       string
	port       int
	dev        bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project's pages",
		Long: `Serve the pages directory with every custom element expanded.

Components are compiled from the components directory and, when
configured, an S3 bucket. Pages are read from disk on every request.
A page next to a <name>.state.yaml or <name>.state.json file receives
that file as initial state.

With --dev, component and page changes are picked up while the server
runs and connected browsers reload automatically.

Examples:
  enhance serve
  enhance serve --port=8080
  enhance serve --dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to enhance.json (default ./enhance.json)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from enhance.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from enhance.json)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Enable hot reload and detailed errors")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.dev {
		cfg.Server.Dev = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	reg, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	renderer := newRenderer(reg, cfg)

	store, err := cache.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(promRegistry))

	var cacheStore middleware.CacheStore
	if store != nil {
		cacheStore = store
	}
	processor := middleware.Chain(renderer,
		middleware.OpenTelemetry(),
		metrics.Middleware(),
		middleware.Cache(cacheStore,
			middleware.WithCacheTTL(cfg.CacheTTL()),
			middleware.WithCacheLogger(logger),
		),
	)

	var reload *dev.ReloadServer
	if cfg.Server.Dev {
		reload = dev.NewReloadServer()
	}

	server := host.NewServer(host.Options{
		Processor: processor,
		PagesDir:  cfg.PagesPath(),
		StaticDir: cfg.StaticPath(),
		Lang:      cfg.Render.Lang,
		Title:     cfg.Render.Title,
		Dev:       cfg.Server.Dev,
		Reload:    reload,
		Gatherer:  promRegistry,
		Logger:    logger,
	})

	printBanner()
	success("%d components loaded", reg.Len())
	info("Listening on http://%s", cfg.Address())
	if cfg.Server.Dev {
		info("Hot reload enabled")
	}
	fmt.Println()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Run(ctx, cfg.Address()); err != nil {
			return errors.New("E401").Wrap(err)
		}
		return nil
	})

	if cfg.Server.Dev {
		reloader := &dev.Reloader{
			Rebuild: func(ctx context.Context) error {
				next, err := buildRegistry(ctx, cfg)
				if err != nil {
					return err
				}
				renderer.SetRegistry(next)
				if store != nil {
					if err := store.Flush(ctx); err != nil {
						logger.Warn("cache flush failed", "error", err)
					}
				}
				return nil
			},
			Clients: reload,
			Logger:  logger,
		}
		g.Go(func() error {
			return dev.Watch(ctx, dev.WatcherConfig{
				Paths:    watchPaths(cfg),
				Ignore:   dev.DefaultIgnore,
				Debounce: 100 * time.Millisecond,
			}, reloader)
		})
	}

	return g.Wait()
}

// watchPaths returns the project directories that exist.
func watchPaths(cfg *config.Config) []string {
	var paths []string
	for _, p := range []string{cfg.ComponentsPath(), cfg.PagesPath(), cfg.StaticPath()} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}
	return paths
}
