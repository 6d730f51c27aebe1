package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/email"
	"github.com/yhsong/finbell/internal/handler"
	"github.com/yhsong/finbell/internal/oauth"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/internal/service"
	"github.com/yhsong/finbell/internal/utils"
	"github.com/yhsong/finbell/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionExpiry.Duration)
	registry := oauth.NewRegistry(cfg.OAuth)
	sender := newSender(cfg, infra.Logger())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.VerificationToken,
		jwtManager,
		sender,
		infra.Logger(),
		cfg.Security.BCryptCost,
	)
	oauthService := service.NewOAuthService(
		registry,
		repos.User,
		repos.OAuthIdentity,
		jwtManager,
		infra.Logger(),
	)
	marketService := service.NewMarketService(repos.Company, repos.Indicator, infra.Redis(), infra.Logger())
	favoriteService := service.NewFavoriteService(repos.Favorite, repos.Company, infra.Logger())
	subscriptionService := service.NewSubscriptionService(
		repos.Subscription,
		repos.NotificationSetting,
		repos.Company,
		repos.Indicator,
		infra.Logger(),
	)

	handlers := routeHandlers{
		auth:         handler.NewAuthHandler(authService),
		oauth:        handler.NewOAuthHandler(oauthService, cfg.OAuth.FrontendBaseURL),
		user:         handler.NewUserHandler(authService),
		market:       handler.NewMarketHandler(marketService),
		favorite:     handler.NewFavoriteHandler(favoriteService),
		subscription: handler.NewSubscriptionHandler(subscriptionService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("finbell"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, handlers, jwtManager, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// newSender picks SMTP delivery when configured and falls back to logging
// codes locally.
func newSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.SMTP.Host == "" {
		return email.NewLogSender(logger)
	}

	sender, err := email.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Warn("SMTP misconfigured, falling back to log sender", zap.Error(err))
		return email.NewLogSender(logger)
	}
	return sender
}

type routeHandlers struct {
	auth         *handler.AuthHandler
	oauth        *handler.OAuthHandler
	user         *handler.UserHandler
	market       *handler.MarketHandler
	favorite     *handler.FavoriteHandler
	subscription *handler.SubscriptionHandler
}

func setupRoutes(
	router *gin.Engine,
	h routeHandlers,
	jwtManager *utils.JWTManager,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	// Browser-facing OAuth redirect flow lives at the root, outside /api/v1.
	oauthFlow := router.Group("/auth/oauth")
	{
		oauthFlow.GET("/:provider", h.oauth.Authorize)
		oauthFlow.GET("/:provider/callback", h.oauth.Callback)
	}

	authRequired := handler.AuthMiddleware(jwtManager)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.auth.Register)
			auth.POST("/verify", h.auth.Verify)
			auth.POST("/password", h.auth.SetPassword)
			auth.POST("/login", h.auth.Login)
			auth.GET("/me", authRequired, h.auth.GetMe)

			auth.GET("/oauth", authRequired, h.oauth.ListIdentities)
			auth.GET("/oauth/:provider/connect", authRequired, h.oauth.ConnectURL)
			auth.DELETE("/oauth/:provider", authRequired, h.oauth.Disconnect)
		}

		api.PATCH("/users/me", authRequired, h.user.UpdateMe)

		api.GET("/companies", h.market.ListCompanies)
		api.GET("/companies/:id", h.market.GetCompany)
		api.GET("/indicators", h.market.ListIndicators)
		api.GET("/indicators/:id", h.market.GetIndicator)

		api.GET("/favorites", authRequired, h.favorite.List)
		api.POST("/favorites", authRequired, h.favorite.Add)
		api.DELETE("/favorites/:companyId", authRequired, h.favorite.Remove)

		api.GET("/subscriptions", authRequired, h.subscription.List)
		api.POST("/subscriptions", authRequired, h.subscription.Subscribe)
		api.DELETE("/subscriptions/:targetType/:targetId", authRequired, h.subscription.Unsubscribe)

		api.GET("/notification-settings", authRequired, h.subscription.GetSettings)
		api.PUT("/notification-settings", authRequired, h.subscription.UpdateSettings)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
