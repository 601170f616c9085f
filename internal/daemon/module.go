// Package daemon wires the scheduled exporter process.
package daemon

import (
	"context"

	"github.com/stecurtis/imx/internal/bus"
	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/export"
	"github.com/stecurtis/imx/internal/lock"
	"github.com/stecurtis/imx/internal/logging"
	"github.com/stecurtis/imx/internal/msgstore"
	"github.com/stecurtis/imx/internal/paths"
	"github.com/stecurtis/imx/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved startup configuration passed to the fx module.
type Params struct {
	ConfigPath string
	LogPath    string // optional override for testing; empty = default
}

// Module returns the fx module for imxd, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("imxd",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideExporter,
			NewScheduler,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params, logger *zap.Logger) *config.Config {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		logger.Warn("config unreadable, using defaults", zap.Error(err))
	}
	return cfg
}

func provideLogger(p Params) (*zap.Logger, error) {
	logPath := p.LogPath
	if logPath == "" {
		logPath = paths.LogPath()
	}
	return logging.New(logPath)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(cfg *config.Config, logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDataRoot(cfg.DataRoot); err != nil {
		return nil, err
	}
	logger.Info("acquiring run lock", zap.String("data_root", cfg.DataRoot))
	l, err := lock.Acquire(paths.LockPath(cfg.DataRoot))
	if err != nil {
		return nil, err
	}
	logger.Info("run lock acquired")
	return l, nil
}

func provideExporter(cfg *config.Config, b *bus.Bus, logger *zap.Logger) *export.Exporter {
	return export.New(export.Options{
		StorePath:          cfg.StorePath,
		DataRoot:           cfg.DataRoot,
		IncludeAttachments: cfg.IncludeAttachments,
		Scope:              msgstore.Incremental(),
	}, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, sched *Scheduler, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return sched.Start()
		},
		OnStop: func(_ context.Context) error {
			sched.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
