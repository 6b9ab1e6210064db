package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/optionsmailer/optionsmailer/internal/config"
	"github.com/optionsmailer/optionsmailer/internal/cooldown"
	"github.com/optionsmailer/optionsmailer/internal/dispatch"
	errwrap "github.com/optionsmailer/optionsmailer/internal/errors"
	"github.com/optionsmailer/optionsmailer/internal/loadboard"
	"github.com/optionsmailer/optionsmailer/internal/metrics"
	"github.com/optionsmailer/optionsmailer/internal/notify"
	"github.com/optionsmailer/optionsmailer/internal/observability"
	"github.com/optionsmailer/optionsmailer/internal/scheduler"
	"github.com/optionsmailer/optionsmailer/internal/server"
	"github.com/optionsmailer/optionsmailer/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// buildController wires the dispatch stack from configuration: load board
// client, reporting function, SES mailer, cooldown store, controller.
func buildController(ctx context.Context, cfg *config.Config) (*dispatch.Controller, error) {
	board := loadboard.NewClient(cfg.LoadBoard.URL, cfg.LoadBoard.APIKey)

	fn, err := notify.NewReportFunction(ctx, cfg.AWS.Region, cfg.AWS.LambdaFunction)
	if err != nil {
		return nil, err
	}

	mailer, err := notify.NewSESMailer(ctx, cfg.AWS.Region, cfg.Email.Sender)
	if err != nil {
		return nil, err
	}

	invoker := &notify.Invoker{
		Source:     board,
		Compute:    fn,
		Mailer:     mailer,
		Sender:     cfg.Email.Sender,
		Recipients: cfg.Email.Recipients,
	}

	return &dispatch.Controller{
		Store:    cooldown.NewStore(cfg.DataDir),
		Sender:   invoker,
		OrgID:    cfg.LoadBoard.OrgID,
		Cooldown: cfg.Cooldown.Window,
	}, nil
}

// meteredDispatcher records dispatch metrics for a non-HTTP trigger. The
// HTTP handler does its own accounting with the "http" label.
type meteredDispatcher struct {
	inner   scheduler.Dispatcher
	trigger string
}

func (m meteredDispatcher) RequestSend(ctx context.Context, orgID string) dispatch.Result {
	start := time.Now()
	res := m.inner.RequestSend(ctx, orgID)
	metrics.RecordDispatch(m.trigger, string(res.Outcome), time.Since(start))
	return res
}

// signalHealthChecker implements HealthChecker for signal system
type signalHealthChecker struct{}

func (s signalHealthChecker) CheckHealth(ctx context.Context) error {
	return nil // Signal handlers are registered and ready
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// cooldownDirChecker verifies the cooldown marker directory is writable.
// An unwritable directory means sends would stop being recorded.
type cooldownDirChecker struct {
	dir string
}

func (c cooldownDirChecker) CheckHealth(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errwrap.NewInternalError("cooldown data directory not writable: " + err.Error())
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

The dispatch scheduler starts alongside the server when enabled in
configuration; every tick and every HTTP trigger goes through the same
cooldown gate.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server, stop the scheduler, and
flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration load failed")
		}
		if err := cfg.Validate(); err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration invalid")
		}

		// Initialize server logger
		observability.InitServerLogger(serviceName, cfg.Logging.Level)

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(serviceName, cfg.Metrics.Port); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", serviceName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Duration("cooldown", cfg.Cooldown.Window),
			zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
			zap.Int("metrics_port", cfg.Metrics.Port))

		// Wire the dispatch stack
		ctrl, err := buildController(cmd.Context(), cfg)
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "dispatch stack initialization failed")
		}
		handlers.SetDispatcher(ctrl)

		handlers.SetCooldownProbe(func() (bool, time.Duration) {
			return ctrl.Store.IsAllowed(time.Now().UTC(), cfg.Cooldown.Window)
		})

		var sched *scheduler.Scheduler
		if cfg.Scheduler.Enabled {
			sched = scheduler.New(
				meteredDispatcher{inner: ctrl, trigger: "scheduler"},
				cfg.Scheduler.Interval,
				observability.ServerLogger,
			)
			handlers.SetScheduler(sched)
		} else {
			handlers.SetScheduler(nil)
		}

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("signal_handlers", signalHealthChecker{})
		hm.RegisterChecker("cooldown_store", cooldownDirChecker{dir: cfg.DataDir})
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}

		// Create server
		srv := server.New(cfg.Server.Host, cfg.Server.Port)

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Shutdown HTTP server
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Handler 3: Stop the scheduler (executed first, before the server
		// goes away under an in-flight tick)
		signals.OnShutdown(func(ctx context.Context) error {
			if sched != nil && sched.Stop() {
				metrics.SetSchedulerRunning(false)
				observability.ServerLogger.Info("Scheduler stopped gracefully")
			}
			return nil
		})

		// Register config reload handler (SIGHUP)
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					observability.ServerLogger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				observability.ServerLogger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			observability.ServerLogger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))

			// TODO: Apply reloaded cooldown/scheduler values to the running
			// controller instead of requiring a restart.

			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		// Start the scheduler loop
		if sched != nil && sched.Start() {
			metrics.SetSchedulerRunning(true)
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8000, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
