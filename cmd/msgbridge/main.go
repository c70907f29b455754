package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaybrook/msgbridge/internal/actions"
	"github.com/relaybrook/msgbridge/internal/api"
	"github.com/relaybrook/msgbridge/internal/auth"
	"github.com/relaybrook/msgbridge/internal/automation"
	"github.com/relaybrook/msgbridge/internal/config"
	"github.com/relaybrook/msgbridge/internal/cooldown"
	"github.com/relaybrook/msgbridge/internal/forward"
	"github.com/relaybrook/msgbridge/internal/health"
	"github.com/relaybrook/msgbridge/internal/inbound"
	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
	"github.com/relaybrook/msgbridge/internal/outbound"
	"github.com/relaybrook/msgbridge/internal/sender"
	"github.com/relaybrook/msgbridge/internal/stream"
	"github.com/relaybrook/msgbridge/internal/tracing"
	"github.com/relaybrook/msgbridge/internal/watch"
)

func main() {
	// .env is optional; the OS environment is the source of truth.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.New(cfg.AppName)
	logging.SetDefaultService(cfg.AppName)

	shutdown, err := tracing.InitTracing(ctx, cfg.AppName)
	if err != nil {
		logger.Plain().WithError(err).Fatal("failed to initialize tracing")
	}
	defer shutdown()

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	if cfg.MaxBodyChars > 0 {
		outbound.MaxBodyChars = cfg.MaxBodyChars
	}

	// Outbound queue + single delivery worker
	queue := outbound.NewQueue()
	worker := outbound.NewWorker(queue, buildSender(cfg, logger), logger)
	go worker.Run(ctx)

	// Watcher pipeline
	table := cooldown.NewTable(cfg.Watch.CooldownWindow)
	orch := actions.NewOrchestrator(
		automation.NewScript("decline", cfg.Automation.DeclineScript, cfg.Automation.Timeout),
		automation.NewScript("restart", cfg.Automation.RestartScript, cfg.Automation.Timeout),
		queue,
		cfg.Reply.Recipient,
		cfg.Reply.Template,
		logger,
	)
	watcher := watch.NewWatcher(
		stream.NewCommand(cfg.Watch.StreamCmd),
		cfg.Watch.TriggerKeyword,
		table,
		orch,
		cfg.Watch.RestartBackoff,
		logger,
	)
	go watcher.Run(ctx)

	// Inbound forwarding, only when a monitor and target are configured
	if cfg.Forward.MonitorCmd != "" && cfg.Forward.URL != "" {
		fwd := forward.NewForwarder(cfg.Forward.URL, cfg.Forward.Timeout, logger)
		monitor := inbound.NewMonitor(
			stream.NewCommand(cfg.Forward.MonitorCmd),
			fwd,
			cfg.Forward.RestartBackoff,
			logger,
		)
		go monitor.Run(ctx)
	}

	// HTTP API
	validator := auth.NewValidator(cfg.APIKey, cfg.JWTSecret)
	probes := health.Probes{
		WatcherAlive: watcher.Alive,
		QueueDepth:   queue.Len,
	}
	srv := api.NewServer(queue, logger)
	httpSrv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: srv.Router(validator, probes, reg),
	}
	go func() {
		logger.Plain().WithField("addr", httpSrv.Addr).Info("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Plain().WithError(err).Fatal("HTTP server failed")
		}
	}()

	logger.Plain().Info("msgbridge started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Plain().Info("shutting down")
	cancel()
	_ = httpSrv.Shutdown(context.Background())
	logger.Plain().Info("msgbridge stopped")
}

// buildSender selects the sender implementation from config.
func buildSender(cfg config.Config, logger *logging.Logger) outbound.Sender {
	switch cfg.Sender.Mode {
	case "http":
		return sender.NewHTTP(cfg.Sender.URL, cfg.Sender.Secret, cfg.Sender.Timeout)
	default:
		if cfg.Sender.Mode != "script" {
			logger.Plain().WithField("mode", cfg.Sender.Mode).Warn("unknown sender mode, using script")
		}
		return sender.NewScript(cfg.Sender.Script, cfg.Sender.Timeout)
	}
}
