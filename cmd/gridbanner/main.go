package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gridbanner/gridbanner/internal/api"
	"github.com/gridbanner/gridbanner/internal/config"
	"github.com/gridbanner/gridbanner/internal/dedup"
	"github.com/gridbanner/gridbanner/internal/fetch"
	"github.com/gridbanner/gridbanner/internal/poller"
	"github.com/gridbanner/gridbanner/internal/present"
	"github.com/gridbanner/gridbanner/internal/source"
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/gridbanner/gridbanner/internal/version"
)

// loops bundles the two pollers so a config reload can swap them as a unit.
type loops struct {
	poll *poller.Poller
	sync *poller.SettingsSync
}

func (l *loops) stop() {
	if l == nil {
		return
	}
	l.poll.Stop()
	if l.sync != nil {
		l.sync.Stop()
	}
}

func main() {
	configPath := flag.String("config", "/etc/gridbanner/agent.yaml", "Path to agent configuration")
	logLevel := flag.String("log-level", "", "Override configured log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridbanner: %v\n", err)
		os.Exit(1)
	}

	// Last 1000 log lines are kept for the status API.
	logBuffer := api.NewLogBuffer(1000)
	logger := buildLogger(cfg.Log, *logLevel, logBuffer)

	logger.Info().
		Str("version", version.Full()).
		Str("config", *configPath).
		Msg("starting gridbanner agent")

	registry := prometheus.NewRegistry()
	metrics := poller.NewMetrics(registry)

	store := dedup.NewStore(0)
	coord := present.NewCoordinator(logger)

	// The windowing layer registers a real surface per monitor through the
	// same interface; headless runs still get an observable surface.
	if err := coord.Register(present.NewLogSurface("primary", logger)); err != nil {
		logger.Fatal().Err(err).Msg("registering surface")
	}

	var mu sync.Mutex
	current := startLoops(cfg, store, coord, logger, metrics)

	swap := func(next *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		current.stop()
		cfg = next
		current = startLoops(cfg, store, coord, logger, metrics)
	}

	reload := func() error {
		next, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		swap(next)
		return nil
	}

	watcher, err := config.NewWatcher(*configPath, logger, swap)
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher unavailable, hot reload disabled")
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.Listen, api.Deps{
			PollStats: func() poller.Stats {
				mu.Lock()
				defer mu.Unlock()
				return current.poll.Snapshot()
			},
			Settings: func() *types.GlobalSettings {
				mu.Lock()
				defer mu.Unlock()
				if current.sync == nil {
					return &types.GlobalSettings{}
				}
				return current.sync.Current()
			},
			Current:  coord.Current,
			Surfaces: coord.SurfaceCount,
			Logs:     logBuffer,
			Reload:   reload,
			Gatherer: registry,
		}, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("status API server error")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("shutting down")

	if watcher != nil {
		watcher.Close()
	}
	mu.Lock()
	current.stop()
	mu.Unlock()
	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		apiServer.Stop(ctx)
		cancel()
	}
	logger.Info().Msg("gridbanner agent stopped")
}

// startLoops wires and starts the alert poller and, when configured, the
// settings sync for one config generation.
func startLoops(cfg *config.Config, store *dedup.Store, coord *present.Coordinator,
	logger zerolog.Logger, metrics *poller.Metrics) *loops {

	var auth fetch.TokenProvider
	if cfg.Auth.Enabled {
		auth = fetch.EnvTokenProvider{Var: cfg.Auth.TokenEnv}
	}
	fetcher := fetch.NewFetcher(logger, auth)

	resolver := source.NewResolver(logger, source.StaticDiscoverer(cfg.Source.DiscoveryURLs), nil)
	resolve := poller.ResolverFunc(func(ctx context.Context) *source.Descriptor {
		return resolver.Resolve(ctx, cfg.Source.AlertURL, cfg.Source.AlertFileLocation)
	})

	l := &loops{
		poll: poller.New(
			time.Duration(cfg.Source.AlertPollSeconds)*time.Second,
			fetcher, resolve, cfg.Agent.Sites(),
			store, coord, logger, metrics,
		),
	}
	l.poll.Start()

	if cfg.Settings.URL != "" {
		// Feature toggles are consumed by the windowing layer; here they
		// are only fetched, retained and exposed on the status API.
		l.sync = poller.NewSettingsSync(
			cfg.Settings.URL,
			time.Duration(cfg.Settings.PollSeconds)*time.Second,
			fetcher, logger, metrics, nil,
		)
		l.sync.Start()
	}
	return l
}

func buildLogger(cfg config.LogConfig, override string, buffer io.Writer) zerolog.Logger {
	level := cfg.Level
	if override != "" {
		level = override
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	writers := []io.Writer{os.Stdout, buffer}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	return zerolog.New(io.MultiWriter(writers...)).With().
		Timestamp().
		Str("version", version.Version).
		Logger()
}
