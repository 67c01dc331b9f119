// alert-worker consumes household activity from the broker and runs the
// budget checks for it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duo-finance/backend/internal/config"
	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/httpclient"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/monitor"
	"github.com/duo-finance/backend/internal/notify"
	"github.com/duo-finance/backend/internal/reporting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// This is set at build time with -ldflags "-X".
var version = "0.0.0"

func main() {
	config.LoadDotenv()
	cfg := config.Load()

	if cfg.LogFormat == "human" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log.Logger = log.With().Str("component", "alert-worker").Logger()

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	if _, err := reporting.Init(cfg.SentryDSN, "worker", version); err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer reporting.Flush()

	if err := models.Connect(cfg.DBPath); err != nil {
		log.Fatal().Msg(err.Error())
	}

	var sender notify.Sender
	if cfg.PushEnabled() {
		sender = notify.NewWebPush(notify.VAPID{
			Subject:    cfg.VAPIDSubject,
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		}, httpclient.New(cfg.PushRetryMax, httpclient.DefaultTimeout))
	} else {
		log.Warn().Msg("Web push is not configured, alerts are recorded but not delivered")
	}

	notifier := notify.New(models.DB, sender, notify.NewCurrency(cfg.CurrencySymbol))
	budgets := monitor.New(models.DB, monitor.NewStore(cfg.AlertDedup, models.DB, cfg.AlertDedupTTL), notifier)

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer client.Close()

	metrics := metricsServer(cfg.WorkerMetricsAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := client.Consume(ctx, budgets.HandleActivity)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Consuming household activity failed")
		}
		cancel()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case <-ctx.Done():
	}

	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown failed")
	}
}

// metricsServer serves the notification and budget check metrics.
func metricsServer(addr string) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(notify.Metrics...)
	registry.MustRegister(monitor.Metrics...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return server
}
