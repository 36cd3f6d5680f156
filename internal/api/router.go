package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/aitrader/strategy-studio/docs"
	"github.com/aitrader/strategy-studio/internal/api/handler"
	"github.com/aitrader/strategy-studio/internal/api/middleware"
	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
)

// Deps are the collaborators the HTTP surface is built from. Mongo and Redis
// are only used by the readiness probe and may be nil. A nil Metrics registry
// means the default Prometheus registry.
type Deps struct {
	Sessions   ports.SessionService
	Workspaces handler.WorkspaceProvider
	Latest     handler.ArtifactReader
	Clipboard  handler.ClipboardReader
	Mongo      *mongo.Database
	Redis      *redis.Client
	Metrics    *prometheus.Registry
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "studio",
		Registerer: registerer,
	}))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	workspaceHandler := handler.NewWorkspaceHandler(deps.Workspaces, deps.Latest, deps.Clipboard)
	catalogHandler := handler.NewCatalogHandler()
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(readinessChecks(deps.Mongo, deps.Redis))

	// --- Ops routes (no session) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", middleware.Session(deps.Sessions))

	v1.GET("/options", catalogHandler.Options)
	v1.GET("/capabilities", catalogHandler.Capabilities)

	// --- Tier events ---
	sess := v1.Group("/session")
	sess.GET("", sessionHandler.Current)
	sess.POST("/sign-in", sessionHandler.SignIn)
	sess.POST("/register", sessionHandler.Register)
	sess.POST("/guest", sessionHandler.Guest)
	sess.POST("/sign-out", sessionHandler.SignOut)
	sess.POST("/upgrade", sessionHandler.Upgrade)

	// --- Workspace ---
	ws := v1.Group("/workspace")
	ws.GET("/strategy", workspaceHandler.GetStrategy)
	ws.PATCH("/strategy", workspaceHandler.PatchStrategy)
	ws.PUT("/strategy", workspaceHandler.ReplaceStrategy)
	ws.POST("/strategy/reset", workspaceHandler.ResetStrategy)
	ws.GET("/output/:target", workspaceHandler.Render)
	ws.GET("/output/:target/latest", workspaceHandler.Latest)
	ws.POST("/export/:target", workspaceHandler.Export)
	ws.GET("/clipboard", workspaceHandler.Clipboard)
	ws.GET("/messages", workspaceHandler.Messages)
	ws.DELETE("/messages", workspaceHandler.ClearMessages)

	canSave := middleware.RequireCapability(domain.CapSaveDefinition)
	ws.POST("/strategies", workspaceHandler.Save, canSave)
	ws.GET("/strategies", workspaceHandler.ListSaved, canSave)
	ws.POST("/backtest", workspaceHandler.Backtest, middleware.RequireCapability(domain.CapRunBacktest))

	return e
}

func readinessChecks(db *mongo.Database, rdb *redis.Client) map[string]handler.Check {
	checks := make(map[string]handler.Check)
	if db != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			level := zerolog.InfoLevel
			if v.Error != nil {
				level = zerolog.WarnLevel
			}
			log.WithLevel(level).
				Err(v.Error).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
