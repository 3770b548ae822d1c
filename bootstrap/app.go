package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/streamkit/component"
	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/scheduler"
	"github.com/kbukum/streamkit/server"
	"github.com/kbukum/streamkit/sse"
)

// App wires the standard streamkit runtime: configuration, logging, a
// pooled scheduler, the SSE hub and the HTTP server, all lifecycle-managed
// through one component registry.
type App struct {
	Cfg        *config.Config
	Components *component.Registry
	Scheduler  *scheduler.Pool
	SSE        *sse.Component
	Server     *server.Server
	Logger     *logger.Logger
	Telemetry  *observability.Telemetry

	serverCfg       server.Config
	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// New loads configuration, initializes the global logger and stream
// tunables, and assembles the runtime components. Nothing is started yet;
// call Run.
func New(opts ...Option) (*App, error) {
	o := resolveOptions(opts)

	cfg, err := config.Load(o.loaderOptions...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Apply()

	app := &App{
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Scheduler:       scheduler.NewPool(cfg.Scheduler),
		SSE:             sse.NewComponent(),
		Logger:          logger.GetGlobalLogger(),
		serverCfg:       o.serverConfig,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout > 0 {
		app.gracefulTimeout = o.gracefulTimeout
	}

	if cfg.Telemetry.Enabled {
		tel, err := observability.Init(context.Background(), cfg.Telemetry.Observability(cfg.Base))
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		app.Telemetry = tel
	}

	app.serverCfg.ApplyDefaults()
	if err := app.serverCfg.Validate(); err != nil {
		return nil, err
	}
	app.Server = server.New(app.serverCfg, app.Logger)
	app.Server.ApplyDefaults(cfg.Base.Name, app.Components.HealthAll)

	for _, c := range []component.Component{
		app.Scheduler,
		app.SSE,
		server.NewComponent(app.Server),
	} {
		if err := app.Components.Register(c); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// OnStart registers a hook that runs after all components are started.
func (a *App) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnStop registers a hook that runs during graceful shutdown before
// components are stopped. Use it to stop stream bridges and cancel
// subscriptions.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// Run starts every component, runs the start hooks, then blocks until the
// context is cancelled or an interrupt signal arrives. Shutdown runs the
// stop hooks and stops components in reverse order within the graceful
// timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		a.shutdown()
		return err
	}

	a.Logger.Info("application started", logger.Fields(
		"service", a.Cfg.Base.Name,
		"addr", a.Server.Addr(),
	))

	<-ctx.Done()
	a.Logger.Info("shutting down")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.WithError(err).Error("stop hook failed")
	}
	err := a.Components.StopAll(ctx)
	if telErr := a.Telemetry.Shutdown(ctx); telErr != nil {
		a.Logger.WithError(telErr).Error("telemetry shutdown failed")
	}
	return err
}
