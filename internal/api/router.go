package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/dentalscribe/submission-api/docs"
	"github.com/dentalscribe/submission-api/internal/api/handler"
	"github.com/dentalscribe/submission-api/internal/api/middleware"
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
	"github.com/dentalscribe/submission-api/internal/infrastructure/blob"
)

// authRateLimit is the sustained requests per second allowed per client IP on
// the unauthenticated auth routes.
const authRateLimit = 10

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth        ports.AuthService
	Submissions ports.SubmissionService
	Mongo       *mongo.Database
	Redis       *redis.Client // optional
	Logger      zerolog.Logger
	// MaxUploadSize is an echo BodyLimit size such as "50M".
	MaxUploadSize string
	// UploadDir is served under /uploads when the local blob driver is used.
	UploadDir   string
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("dental_scribe"))
	if d.MaxUploadSize != "" {
		e.Use(echomiddleware.BodyLimit(d.MaxUploadSize))
	}

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.UploadDir != "" {
		e.Static(blob.URLPrefix, d.UploadDir)
	}

	authMiddleware := middleware.Auth(d.Auth)
	patientOnly := middleware.RequireRole(domain.RolePatient)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(authRateLimit)))
	auth.POST("/login", authHandler.Login, echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(authRateLimit)))
	auth.GET("/me", authHandler.Me, authMiddleware)

	// --- Submission routes ---
	submissionHandler := handler.NewSubmissionHandler(d.Submissions)
	subs := e.Group("/submissions", authMiddleware)
	subs.POST("", submissionHandler.Create, patientOnly)
	subs.GET("/patient", submissionHandler.ListMine, patientOnly)
	subs.GET("/admin", submissionHandler.ListAll, adminOnly)
	subs.GET("/:id", submissionHandler.Get)
	subs.GET("/:id/events", submissionHandler.Events)
	subs.PUT("/:id/review", submissionHandler.Review, adminOnly)

	return e
}
