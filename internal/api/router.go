package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nileops/remit-console/internal/api/handler"
	"github.com/nileops/remit-console/internal/api/middleware"
	"github.com/nileops/remit-console/internal/api/spec"
	"github.com/nileops/remit-console/internal/blob"
	"github.com/nileops/remit-console/internal/config"
	"github.com/nileops/remit-console/internal/idempotency"
	"github.com/nileops/remit-console/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Dependencies are the services and stores the HTTP layer is built on.
type Dependencies struct {
	Clients   *service.ClientService
	Rates     *service.ExchangeRateService
	Transfers *service.TransferService
	Signer    *blob.Signer
	Objects   handler.ObjectReader
	Checks    map[string]handler.Check
}

type Router struct {
	cfg    *config.Config
	logger *zap.Logger
	auth   *middleware.Auth
	idem   *idempotency.Store
	deps   Dependencies
}

func NewRouter(cfg *config.Config, logger *zap.Logger, auth *middleware.Auth, idem *idempotency.Store, deps Dependencies) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{cfg: cfg, logger: logger, auth: auth, idem: idem, deps: deps}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(api.deps.Checks)
	clientHandler := handler.NewClientHandler(api.deps.Clients)
	rateHandler := handler.NewRateHandler(api.deps.Rates)
	transferHandler := handler.NewTransferHandler(api.deps.Transfers, api.cfg.MaxProofFiles, api.cfg.MaxProofBytes)
	proofHandler := handler.NewProofHandler(api.deps.Signer, api.deps.Objects)

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get(blob.ContentRoute, proofHandler.Content)
	})

	r.Group(func(r chi.Router) {
		r.Use(api.auth.Middleware)
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Use(middleware.StaffRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Route("/v1/clients", func(r chi.Router) {
			r.With(middleware.IdempotencyMiddleware(api.idem, 1<<20, api.logger)).Post("/", clientHandler.CreateClient)
			r.Get("/", clientHandler.ListClients)
			r.Get("/{id}", clientHandler.GetClient)
		})

		r.Route("/v1/rates", func(r chi.Router) {
			r.Put("/", rateHandler.UpsertRate)
			r.Get("/", rateHandler.ListRates)
		})

		r.Route("/v1/transfers", func(r chi.Router) {
			r.Post("/quote", transferHandler.QuoteTransfer)
			r.With(middleware.IdempotencyMiddleware(api.idem, transferHandler.MaxRequestBytes(), api.logger)).Post("/", transferHandler.CreateTransfer)
			r.Get("/", transferHandler.ListTransfers)
			r.Get("/{id}", transferHandler.GetTransfer)
			r.Get("/{id}/proofs", transferHandler.ListProofs)
			r.Patch("/{id}/status", transferHandler.UpdateStatus)
		})
	})

	return r
}
