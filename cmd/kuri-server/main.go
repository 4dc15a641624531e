package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jaseempk/kuri-web-sub004/internal/adapters/httpapi"
	"github.com/Jaseempk/kuri-web-sub004/internal/adapters/memorybus"
	"github.com/Jaseempk/kuri-web-sub004/internal/adapters/sqlite"
	"github.com/Jaseempk/kuri-web-sub004/internal/app"
	"github.com/Jaseempk/kuri-web-sub004/internal/buildinfo"
	"github.com/Jaseempk/kuri-web-sub004/internal/config"
	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	def, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	addr := flag.String("addr", def.Addr, "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "Chemin SQLite (ex: kuri.db)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "kuri-server").Logger()
	log.Logger = logger

	logger.Info().Interface("build", buildinfo.Current()).Str("db", *dbPath).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	settingsRepo := sqlite.NewSettingsRepository(db.SQL)
	settingsSvc := app.NewSettingsService(settingsRepo)
	settings, err := settingsSvc.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load settings, using defaults")
		settings = domain.DefaultSettings()
	}

	bus := memorybus.New()
	defer bus.Close()

	publisher := app.NewPublisher(bus)
	relay := app.NewRelay(publisher, settings.DebounceDelay())
	scheduler := app.NewScheduler(logger.With().Str("component", "scheduler").Logger(), relay)
	scheduler.ApplySettings(settings)

	// Plafond partagé des flux SSE, réglable à chaud côté API settings.
	streamLimiter := app.NewDynamicLimiter(settings.MaxEventStreams)

	// Ordre de fermeture : d'abord le scheduler (plus aucun tick), puis
	// le relay (plus aucune livraison différée), puis le scope de
	// publication.
	defer publisher.Close()
	defer relay.Close()
	defer scheduler.Close()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(logger, scheduler, publisher, settingsSvc, bus, streamLimiter, func(updated domain.Settings) {
		relay.SetDelay(updated.DebounceDelay())
		// tickMillis et depositWindowMillis prennent effet à la
		// prochaine capture.
		scheduler.ApplySettings(updated)
	})
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
