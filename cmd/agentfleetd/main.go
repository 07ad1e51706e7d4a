// Command agentfleetd runs the AgentFleet HTTP service: tenant-scoped
// multi-agent teams assembled on demand from stored configurations, with
// per-instance orchestrator caching and per-session persistent memory.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/agentfleet/cache"
	"github.com/hupe1980/agentfleet/config"
	"github.com/hupe1980/agentfleet/coordinator"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/server"
	"github.com/hupe1980/agentfleet/session"
	"github.com/hupe1980/agentfleet/store"
	"github.com/hupe1980/agentfleet/team"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agentfleetd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stdout,
		Component: "agentfleetd",
	})

	configStore, err := store.NewSQLiteStore(cfg.ConfigDBPath)
	if err != nil {
		return err
	}
	defer configStore.Close()

	conversationStore, err := session.NewSQLiteStore(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer conversationStore.Close()

	factory := team.NewFactory(func(o *team.FactoryOptions) {
		o.Logger = logger.WithComponent("team")
	})

	instanceCache := cache.NewInstanceCache(func(o *cache.Options) {
		o.Logger = logger.WithComponent("cache")
	})

	binder := session.NewBinder(conversationStore, func(o *session.BinderOptions) {
		o.HistoryLimit = cfg.HistoryLimit
		o.Logger = logger.WithComponent("session")
	})

	coord := coordinator.New(configStore, instanceCache, factory, binder, func(o *coordinator.Options) {
		o.Logger = logger.WithComponent("coordinator")
	})

	srv := server.New(coord, func(o *server.Options) {
		o.Addr = cfg.Addr
		o.RateLimitPerMinute = cfg.RateLimitPerMinute
		o.ShutdownTimeout = cfg.ShutdownTimeout
		o.Logger = logger.WithComponent("server")
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown.signal", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
