package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Jaseempk/kuri-web-sub004/internal/app"
	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/Jaseempk/kuri-web-sub004/internal/ports"
)

type Server struct {
	logger    zerolog.Logger
	scheduler *app.Scheduler
	publisher *app.Publisher
	settings  *app.SettingsService
	bus       ports.EventBus
	// streamLimiter plafonne les flux SSE simultanés ; ajusté à chaud
	// via le handler settings.
	streamLimiter *app.DynamicLimiter
	// onSettingsUpdated est optionnel (ex: re-régler le relay).
	onSettingsUpdated func(domain.Settings)
}

func NewServer(logger zerolog.Logger, scheduler *app.Scheduler, publisher *app.Publisher, settings *app.SettingsService, bus ports.EventBus, streamLimiter *app.DynamicLimiter, onSettingsUpdated func(domain.Settings)) *Server {
	return &Server{
		logger:            logger,
		scheduler:         scheduler,
		publisher:         publisher,
		settings:          settings,
		bus:               bus,
		streamLimiter:     streamLimiter,
		onSettingsUpdated: onSettingsUpdated,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		// Pas de middleware.Timeout sur /events : le flux SSE vit aussi
		// longtemps que le client.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))
			NewCycleHandler(s.scheduler, s.publisher, s.bus).Routes(r)
			if s.settings != nil {
				NewSettingsHandler(s.settings, func(updated domain.Settings) {
					if s.streamLimiter != nil && updated.MaxEventStreams > 0 {
						s.streamLimiter.SetLimit(updated.MaxEventStreams)
					}
					if s.onSettingsUpdated != nil {
						s.onSettingsUpdated(updated)
					}
				}).Routes(r)
			}
		})
	})

	return r
}
