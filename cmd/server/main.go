package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anhtran/folio-api/adapters/event"
	httpAdapter "github.com/anhtran/folio-api/adapters/http"
	"github.com/anhtran/folio-api/adapters/media_storage"
	"github.com/anhtran/folio-api/adapters/persistence"
	authUC "github.com/anhtran/folio-api/internal/application/usecase/auth"
	inboxUC "github.com/anhtran/folio-api/internal/application/usecase/inbox"
	portfolioUC "github.com/anhtran/folio-api/internal/application/usecase/portfolio"
	"github.com/anhtran/folio-api/internal/config"
	"github.com/anhtran/folio-api/pkg/auth"
	"github.com/anhtran/folio-api/pkg/logger"
	"github.com/anhtran/folio-api/pkg/tracing"
)

func main() {
	fmt.Println("Start Folio API Server...")

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "folio-api")
		if err != nil {
			appLogger.Fatal("cannot init tracer", err)
		}
		defer tp.Shutdown(context.Background())
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	portfolioStore := persistence.NewPostgresPortfolioStore(dbPool, appLogger)
	messageRepo := persistence.NewPostgresMessageRepo(dbPool, appLogger)
	inboxNotifier := persistence.NewRedisInboxNotifier(redisClient, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	stateManager := portfolioUC.NewStateManager(portfolioStore, kafkaClient, appLogger)
	editor := portfolioUC.NewEditor(stateManager, appLogger)
	publicCache := portfolioUC.NewPublicCache(redisClient, portfolioStore, appLogger)
	inboxManager := inboxUC.NewInboxManager(messageRepo, inboxNotifier, kafkaClient, appLogger)

	// The singleton document is loaded once per process. A load failure
	// degrades to defaults and is only logged.
	stateManager.Load(context.Background())

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(loginUseCase)
	portfolioHandler := httpAdapter.NewPortfolioHandler(stateManager, editor, publicCache, appLogger)
	inboxHandler := httpAdapter.NewInboxHandler(inboxManager, appLogger)
	uploadHandler := httpAdapter.NewUploadHandler(uploader, appLogger)

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)
	errorMiddleware := httpAdapter.ErrorMiddleware(appLogger)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(errorMiddleware)

	api := router.Group("/api")
	{

		admin := api.Group("/admin")
		{

			adminAuth := admin.Group("/auth")
			adminAuth.POST("/login", authHandler.Login)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(authMiddleware)
			{

				adminPrivate.GET("/health-auth", func(c *gin.Context) {

					userID, ok := httpAdapter.GetOwnerIDFromGinContext(c)
					if !ok {
						c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot get user id from context"})
						return
					}
					c.JSON(http.StatusOK, gin.H{
						"status":   "OK",
						"owner_id": userID,
					})
				})

				adminPrivate.GET("/portfolio", portfolioHandler.GetPortfolio)
				adminPrivate.PATCH("/portfolio", portfolioHandler.PatchPortfolio)
				adminPrivate.PUT("/portfolio/personal-info", portfolioHandler.UpdatePersonalInfo)

				projects := adminPrivate.Group("/portfolio/projects")
				{
					projects.POST("", portfolioHandler.CreateProject)
					projects.PUT("/:id", portfolioHandler.UpdateProject)
					projects.DELETE("/:id", portfolioHandler.DeleteProject)
				}

				education := adminPrivate.Group("/portfolio/education")
				{
					education.POST("", portfolioHandler.CreateEducation)
					education.PUT("/:id", portfolioHandler.UpdateEducation)
					education.DELETE("/:id", portfolioHandler.DeleteEducation)
				}

				skills := adminPrivate.Group("/portfolio/skills")
				{
					skills.POST("", portfolioHandler.AddSkill)
					skills.DELETE("", portfolioHandler.RemoveSkill)
				}

				messages := adminPrivate.Group("/messages")
				{
					messages.GET("", inboxHandler.ListMessages)
					messages.GET("/stream", inboxHandler.StreamMessages)
					messages.POST("/:id/read", inboxHandler.MarkRead)
				}

				adminPrivate.POST("/upload", uploadHandler.Upload)
			}
		}

		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			public.GET("/portfolio", portfolioHandler.GetPublicPortfolio)
			public.POST("/contact", inboxHandler.Contact)
		}
	}

	appLogger.Info("Server running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("Cannot run server", err)
	}
}
