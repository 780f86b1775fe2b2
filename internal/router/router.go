package router

import (
	"context"

	"github.com/kavro/tidepool/internal/handlers"
	"github.com/kavro/tidepool/internal/middleware"
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/internal/repositories"
	"github.com/kavro/tidepool/internal/services"
	"github.com/kavro/tidepool/pkg/config"
	"github.com/kavro/tidepool/pkg/faults"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SetupMiddleware configures global Echo middleware: panic recovery, CORS,
// a per-IP rate limiter, and zap request logging.
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(rate.Limit(20))))
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	e.HTTPErrorHandler = errorHandler(e, logger)
}

// errorHandler surfaces core faults with their canonical status codes and
// defers everything else to Echo's default handling.
func errorHandler(e *echo.Echo, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		f, ok := faults.As(err)
		if !ok {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if f.Kind == faults.Internal || f.Kind == faults.IssueFailure {
			logger.Error("internal failure", zap.Error(err))
		}

		body := echo.Map{"error": f.Kind, "message": f.Message}
		if f.Kind == faults.RoleDenied {
			body["required_roles"] = f.RequiredRoles
			body["actual_role"] = f.ActualRole
		}
		if !c.Response().Committed {
			if jsonErr := c.JSON(f.HTTPStatus(), body); jsonErr != nil {
				logger.Error("failed to write error response", zap.Error(jsonErr))
			}
		}
	}
}

// SetupRoutes configures all application routes and injects dependencies.
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := db.Postgres.AutoMigrate(&models.Account{}, &models.FollowEdge{}); err != nil {
		return err
	}

	accountRepo := repositories.NewPostgresAccountRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := postRepo.EnsureIndexes(context.Background()); err != nil {
		return err
	}

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer, cfg.JWTAudience)
	gate := services.NewAuthGate(tokenService)
	socialService := services.NewSocialService(followRepo, accountRepo, cfg.OpTimeout, logger)
	postService := services.NewPostService(postRepo, cfg.OpTimeout, logger)
	feedService := services.NewFeedService(postRepo, followRepo, accountRepo, cfg.OpTimeout, logger)

	e.GET("/health", handlers.HealthCheck)

	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(accountRepo, tokenService)
	authHandler.RegisterAuthRoutes(authGroup)

	postHandler := handlers.NewPostHandler(postService)

	// Read-only post routes authenticate opportunistically.
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalAuthenticate(gate))
	postHandler.RegisterPublicPostRoutes(public)

	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(gate, models.RoleUser, models.RoleAdmin))
	postHandler.RegisterPostRoutes(api)

	followHandler := handlers.NewFollowHandler(socialService)
	followHandler.RegisterFollowRoutes(api)

	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api)

	logger.Info("routes configured")
	return nil
}
