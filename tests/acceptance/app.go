package acceptance

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/handler"
	"github.com/yhsong/finbell/internal/oauth"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/internal/service"
	"github.com/yhsong/finbell/internal/utils"
	"github.com/yhsong/finbell/pkg/database"
	"github.com/yhsong/finbell/pkg/observability"
)

// RecordingSender captures verification codes instead of sending mail, so
// tests can drive the register/verify flow end to end.
type RecordingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{codes: make(map[string]string)}
}

func (s *RecordingSender) SendVerificationCode(_ context.Context, toEmail, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[toEmail] = code
	return nil
}

// CodeFor returns the last code captured for an email.
func (s *RecordingSender) CodeFor(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[email]
	return code, ok
}

// TestApp represents a test application instance
type TestApp struct {
	Config       *config.Config
	Router       *gin.Engine
	Server       *http.Server
	Listener     net.Listener
	BaseURL      string
	Repositories *repository.Repositories
	JWTManager   *utils.JWTManager
	Sender       *RecordingSender
	Logger       *zap.Logger
	Postgres     *database.Postgres
	Redis        *database.Redis
}

// NewTestApp creates a new test application instance
func NewTestApp(postgres *database.Postgres, redis *database.Redis) (*TestApp, error) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "0",
			ReadTimeout:  config.Duration{Duration: 15 * time.Second},
			WriteTimeout: config.Duration{Duration: 15 * time.Second},
		},
		JWT: config.JWTConfig{
			Secret:        "test-secret-key-that-is-at-least-32-characters-long",
			SessionExpiry: config.Duration{Duration: time.Hour},
		},
		OAuth: config.OAuthConfig{
			CallbackBaseURL: "http://localhost:8080",
			FrontendBaseURL: "http://localhost:3000",
		},
		Security: config.SecurityConfig{
			BCryptCost: 4,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Env: "test",
	}

	gin.SetMode(gin.TestMode)

	logger, err := observability.InitLogger("test")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	_, metricsHandler, err := observability.InitTelemetry("finbell-test")
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	repos := repository.NewRepositories(postgres)
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.SessionExpiry.Duration)
	registry := oauth.NewRegistry(cfg.OAuth)
	sender := NewRecordingSender()

	authService := service.NewAuthService(
		repos.User,
		repos.VerificationToken,
		jwtManager,
		sender,
		logger,
		cfg.Security.BCryptCost,
	)
	oauthService := service.NewOAuthService(registry, repos.User, repos.OAuthIdentity, jwtManager, logger)
	marketService := service.NewMarketService(repos.Company, repos.Indicator, redis, logger)
	favoriteService := service.NewFavoriteService(repos.Favorite, repos.Company, logger)
	subscriptionService := service.NewSubscriptionService(
		repos.Subscription,
		repos.NotificationSetting,
		repos.Company,
		repos.Indicator,
		logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(oauthService, cfg.OAuth.FrontendBaseURL)
	userHandler := handler.NewUserHandler(authService)
	marketHandler := handler.NewMarketHandler(marketService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("finbell-test"))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "pass"})
	})

	oauthFlow := router.Group("/auth/oauth")
	{
		oauthFlow.GET("/:provider", oauthHandler.Authorize)
		oauthFlow.GET("/:provider/callback", oauthHandler.Callback)
	}

	authRequired := handler.AuthMiddleware(jwtManager)
	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/verify", authHandler.Verify)
			auth.POST("/password", authHandler.SetPassword)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.GetMe)

			auth.GET("/oauth", authRequired, oauthHandler.ListIdentities)
			auth.GET("/oauth/:provider/connect", authRequired, oauthHandler.ConnectURL)
			auth.DELETE("/oauth/:provider", authRequired, oauthHandler.Disconnect)
		}

		api.PATCH("/users/me", authRequired, userHandler.UpdateMe)

		api.GET("/companies", marketHandler.ListCompanies)
		api.GET("/companies/:id", marketHandler.GetCompany)
		api.GET("/indicators", marketHandler.ListIndicators)
		api.GET("/indicators/:id", marketHandler.GetIndicator)

		api.GET("/favorites", authRequired, favoriteHandler.List)
		api.POST("/favorites", authRequired, favoriteHandler.Add)
		api.DELETE("/favorites/:companyId", authRequired, favoriteHandler.Remove)

		api.GET("/subscriptions", authRequired, subscriptionHandler.List)
		api.POST("/subscriptions", authRequired, subscriptionHandler.Subscribe)
		api.DELETE("/subscriptions/:targetType/:targetId", authRequired, subscriptionHandler.Unsubscribe)

		api.GET("/notification-settings", authRequired, subscriptionHandler.GetSettings)
		api.PUT("/notification-settings", authRequired, subscriptionHandler.UpdateSettings)
	}

	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	addr := listener.Addr().(*net.TCPAddr)
	baseURL := fmt.Sprintf("http://localhost:%d", addr.Port)

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	app := &TestApp{
		Config:       cfg,
		Router:       router,
		Server:       srv,
		Listener:     listener,
		BaseURL:      baseURL,
		Repositories: repos,
		JWTManager:   jwtManager,
		Sender:       sender,
		Logger:       logger,
		Postgres:     postgres,
		Redis:        redis,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start test server", zap.Error(err))
		}
	}()
	time.Sleep(100 * time.Millisecond)

	return app, nil
}

func (app *TestApp) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.Logger != nil {
		app.Logger.Sync()
	}

	return nil
}
