package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/duo-finance/backend/internal/categorize"
	"github.com/duo-finance/backend/internal/config"
	v1 "github.com/duo-finance/backend/internal/controllers/v1"
	"github.com/duo-finance/backend/internal/events"
	"github.com/duo-finance/backend/internal/httpclient"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/monitor"
	"github.com/duo-finance/backend/internal/notify"
	"github.com/duo-finance/backend/internal/reporting"
	"github.com/duo-finance/backend/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadDotenv()
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)
	setupLogging(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	if _, err := reporting.Init(cfg.SentryDSN, cfg.GinMode, router.Version); err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer reporting.Flush()

	// Create data directory
	err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = models.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	dispatcher, closeBroker := newDispatcher(cfg)
	defer closeBroker()

	var ai *categorize.AI
	if cfg.AIEnabled() {
		ai = categorize.NewAI(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, httpclient.New(1, 30*time.Second))
		log.Info().Str("model", cfg.AIModel).Msg("AI categorization enabled")
	}

	v1.Configure(v1.Services{
		Dispatcher: dispatcher,
		AI:         ai,
	})

	r, teardown, err := router.Config(cfg.APIURL)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(r.Group("/"))

	server := &http.Server{
		Addr:              ":8080",
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Let notifications and budget checks of the last requests finish
	dispatcher.Wait()
}

// setupLogging configures the global logger.
//
// If the log format is not set, it defaults to human readable for
// development and JSON for release.
func setupLogging(format string) {
	output := io.Writer(os.Stdout)
	if (format == "" && gin.IsDebugging()) || format == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()
}

// newDispatcher wires the side effects of transaction changes. Budget checks
// are published to the broker when one is configured and run in-process
// otherwise. The returned function closes the broker connection.
func newDispatcher(cfg *config.Config) (*monitor.Dispatcher, func()) {
	var sender notify.Sender
	if cfg.PushEnabled() {
		sender = notify.NewWebPush(notify.VAPID{
			Subject:    cfg.VAPIDSubject,
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		}, httpclient.New(cfg.PushRetryMax, httpclient.DefaultTimeout))
		log.Info().Msg("Web push enabled")
	}

	notifier := notify.New(models.DB, sender, notify.NewCurrency(cfg.CurrencySymbol))
	store := monitor.NewStore(cfg.AlertDedup, models.DB, cfg.AlertDedupTTL)

	dispatcher := &monitor.Dispatcher{
		Notifier: notifier,
		Monitor:  monitor.New(models.DB, store, notifier),
	}

	if cfg.AMQPEnabled() {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		dispatcher.Publisher = client
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("Publishing household activity")

		return dispatcher, func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Closing AMQP connection failed")
			}
		}
	}

	return dispatcher, func() {}
}
