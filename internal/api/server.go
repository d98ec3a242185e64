package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mindwell/portal-gateway/internal/assessment"
	"github.com/mindwell/portal-gateway/internal/backend"
	"github.com/mindwell/portal-gateway/internal/catalog"
	"github.com/mindwell/portal-gateway/internal/chat"
	"github.com/mindwell/portal-gateway/internal/config"
	"github.com/mindwell/portal-gateway/internal/history"
	"github.com/mindwell/portal-gateway/internal/services"
	"github.com/mindwell/portal-gateway/internal/storage"
)

// Deps are the components the HTTP API serves
type Deps struct {
	Attempts    *assessment.Manager
	Questions   assessment.QuestionLoader
	Catalog     *catalog.Cache
	Backend     *backend.Safe
	History     *history.Classifier
	Messages    chat.MessageSource
	Sender      *chat.Sender
	Submissions storage.Repository
	Registry    *services.Registry
}

// Server represents the HTTP API server
type Server struct {
	config ServerOptions
	deps   Deps
	auth   *AuthMiddleware
	router *chi.Mux
	now    func() time.Time
}

// ServerOptions collects the configuration sections the API reads
type ServerOptions struct {
	Server config.ServerConfig
	Chat   config.ChatConfig
}

// NewServer creates a new API server
func NewServer(opts ServerOptions, auth *AuthMiddleware, deps Deps) *Server {
	s := &Server{
		config: opts,
		deps:   deps,
		auth:   auth,
		now:    time.Now,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router wrapped in server-side tracing
func (s *Server) Router() http.Handler {
	return otelhttp.NewHandler(s.router, "portal-gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Authenticate)

		// Streams outlive the request timeout
		r.Get("/chats/{sessionID}/stream", s.handleChatStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/tests", func(r chi.Router) {
				r.Get("/", s.handleListTests)
				r.Route("/{slug}", func(r chi.Router) {
					r.Get("/", s.handleGetTest)
					r.Get("/questions", s.handleGetQuestions)
					r.Post("/book", s.handleBookTest)
				})
			})

			r.Route("/attempts", func(r chi.Router) {
				r.Post("/", s.handleStartAttempt)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetAttempt)
					r.Put("/responses/{questionNumber}", s.handleSelectOption)
					r.Post("/submit", s.handleSubmitAttempt)
				})
			})

			r.Get("/submissions", s.handleListSubmissions)
			r.Get("/submissions/{id}", s.handleGetSubmission)

			r.Route("/experts", func(r chi.Router) {
				r.Get("/", s.handleListExperts)
				r.Get("/{id}", s.handleGetExpert)
				r.Get("/{id}/schedule", s.handleGetExpertSchedule)
			})

			r.Get("/filters", s.handleGetFilters)
			r.With(s.auth.RequireScope("catalog:refresh")).Post("/catalog/refresh", s.handleRefreshCatalog)

			r.Get("/history", s.handleHistory)
			r.Get("/sessions/upcoming", s.handleUpcoming)

			r.Get("/chats/{sessionID}", s.handleGetChat)
			r.Get("/chats/{sessionID}/messages", s.handleGetMessages)
			r.Post("/chats/{sessionID}/messages", s.handleSendMessage)
		})
	})

	s.router = r
}
