package handler

import (
	"sunnah_sayings/internal/identity"
	"sunnah_sayings/internal/logger"
	"sunnah_sayings/internal/metrics"
	"sunnah_sayings/internal/middleware"
	"sunnah_sayings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the long-lived handles the routes need. They are
// built once at startup and injected here.
type Dependencies struct {
	Users          service.UserService
	Quotes         service.QuoteService
	Verifier       identity.Verifier
	Store          Pinger
	Logger         logger.Logger
	AllowedOrigins []string
	// Metrics is optional; nil records nothing.
	Metrics *metrics.Metrics
	// Gatherer is optional; /metrics is only mounted when set.
	Gatherer prometheus.Gatherer
}

// NewRouter wires middleware, guard chains and routes
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		deps.Metrics.Middleware(),
		middleware.CORS(deps.AllowedOrigins),
	)

	authMW := middleware.VerifyIdentity(deps.Verifier, deps.Logger, deps.Metrics)
	adminMW := middleware.VerifyIdentity(deps.Verifier, deps.Logger, deps.Metrics, middleware.RequireAdmin(deps.Users))

	NewHealthHandler(deps.Store).RegisterHealthRoutes(router)
	NewUserHandler(deps.Users).RegisterUserRoutes(router, authMW)
	NewQuoteHandler(deps.Quotes).RegisterQuoteRoutes(router, authMW, adminMW)

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}
	return router
}
