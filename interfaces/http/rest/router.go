// Package rest wires the chi router: middleware chain, health endpoints,
// the Prometheus scrape endpoint, and the versioned API routes.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/infrastructure/config"
	"codekata-backend/infrastructure/observability"
	"codekata-backend/interfaces/http/rest/handlers"
	"codekata-backend/interfaces/http/rest/middleware"
	"codekata-backend/pkg/auth"
)

// Router creates and configures the HTTP router.
type Router struct {
	cfg           *config.Config
	taxonomy      services.TaxonomyService
	normalization services.NormalizationService
	pipeline      services.PipelineService
	problems      services.ProblemService
	subscriptions services.SubscriptionService
	validator     *auth.JWTValidator
	collector     *observability.Collector
	logger        *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	taxonomy services.TaxonomyService,
	normalization services.NormalizationService,
	pipeline services.PipelineService,
	problems services.ProblemService,
	subscriptions services.SubscriptionService,
	validator *auth.JWTValidator,
	collector *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		taxonomy:      taxonomy,
		normalization: normalization,
		pipeline:      pipeline,
		problems:      problems,
		subscriptions: subscriptions,
		validator:     validator,
		collector:     collector,
		logger:        logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}
	if rt.cfg.EnableTracing {
		router.Use(observability.TracingMiddleware("codekata-backend"))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.codekata.dev"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api"), rt.logger))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.collector.GetRegistry(), promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))
		r.Use(middleware.RateLimit(rt.cfg.RateLimitPerMinute, rt.logger))
		admin := middleware.RequireAdmin()

		r.Route("/tags", func(r chi.Router) {
			tagHandler := handlers.NewTagHandler(rt.taxonomy, rt.collector, rt.logger)
			r.Get("/", tagHandler.ListTags)
			r.With(admin).Post("/", tagHandler.CreateTag)
			r.Get("/similar", tagHandler.SuggestSimilar)
			r.Get("/hierarchy", tagHandler.GetHierarchy)
			r.With(admin).Post("/relationships", tagHandler.AddRelationship)
			r.With(admin).Post("/relationships/validate", tagHandler.ValidateRelationship)
			r.With(admin).Delete("/relationships", tagHandler.RemoveRelationship)
			r.Get("/{tagID}", tagHandler.GetTag)
			r.With(admin).Put("/{tagID}", tagHandler.UpdateTag)
			r.With(admin).Delete("/{tagID}", tagHandler.DeleteTag)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Use(admin)
			suggestionHandler := handlers.NewSuggestionHandler(rt.normalization, rt.collector, rt.logger)
			r.Get("/", suggestionHandler.ListSuggestions)
			r.Get("/{suggestionID}", suggestionHandler.GetSuggestion)
			r.Post("/{suggestionID}/accept", suggestionHandler.AcceptSuggestion)
			r.Post("/{suggestionID}/reject", suggestionHandler.RejectSuggestion)
		})

		pipelineHandler := handlers.NewPipelineHandler(rt.pipeline, rt.collector, rt.logger)
		r.With(admin).Post("/pipeline/runs", pipelineHandler.TriggerRun)
		r.Get("/operations/{operationID}", pipelineHandler.GetOperation)

		r.Route("/problems", func(r chi.Router) {
			problemHandler := handlers.NewProblemHandler(rt.problems, rt.logger)
			r.Get("/", problemHandler.ListProblems)
			r.With(admin).Post("/", problemHandler.CreateProblem)
			r.Get("/{problemID}", problemHandler.GetProblem)
			r.With(admin).Post("/{problemID}/publish", problemHandler.PublishProblem)
			r.With(admin).Post("/{problemID}/tags", problemHandler.TagProblem)
			r.With(admin).Delete("/{problemID}/tags/{tagID}", problemHandler.UntagProblem)
			r.With(admin).Delete("/{problemID}", problemHandler.DeleteProblem)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			subscriptionHandler := handlers.NewSubscriptionHandler(rt.subscriptions, rt.logger)
			r.Post("/", subscriptionHandler.Subscribe)
			r.With(admin).Get("/", subscriptionHandler.ListSubscriptions)
			r.Get("/{subscriptionID}", subscriptionHandler.GetSubscription)
			r.Put("/{subscriptionID}", subscriptionHandler.UpdateSubscription)
			r.Delete("/{subscriptionID}", subscriptionHandler.CancelSubscription)
		})
	})

	return router
}

// healthCheck handles health check requests.
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. The process is ready as
// soon as the router is serving; store clients are created lazily.
func (rt *Router) readinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
