package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mergeed-api/internal/handler"
	"github.com/noah-isme/mergeed-api/internal/middleware"
	"github.com/noah-isme/mergeed-api/internal/repository"
	"github.com/noah-isme/mergeed-api/internal/service"
	"github.com/noah-isme/mergeed-api/pkg/cache"
	"github.com/noah-isme/mergeed-api/pkg/config"
	"github.com/noah-isme/mergeed-api/pkg/database"
	"github.com/noah-isme/mergeed-api/pkg/export"
	"github.com/noah-isme/mergeed-api/pkg/genai"
	"github.com/noah-isme/mergeed-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mergeed-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mergeed-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}
	if cfg.Database.SeedSample {
		if err := database.SeedSampleData(ctx, db); err != nil {
			logr.Sugar().Warnw("failed to seed sample data", "error", err)
		}
	}

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it the stats endpoints hit Postgres on
	// every request.
	var cacheSvc *service.CacheService
	if redisClient, redisErr := cache.NewRedis(cfg.Redis); redisErr != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", redisErr)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
		defer cacheRepo.Close()
	}

	provider := genai.NewClient(cfg.AI)
	if provider.Ready() {
		logr.Sugar().Infow("generative provider configured", "model", cfg.AI.Model)
	} else {
		logr.Sugar().Warnw("generative provider not configured, running in fallback mode")
	}

	teacherRepo := repository.NewTeacherRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	extractionSvc := service.NewExtractionService(provider, metricsSvc, logr)
	strategySvc := service.NewStrategyService(provider, metricsSvc, logr)
	chatSvc := service.NewChatService(extractionSvc, strategySvc, submissionRepo, cacheSvc, nil, logr)
	directorySvc := service.NewTeacherDirectoryService(teacherRepo, submissionRepo, nil, logr)
	approvalSvc := service.NewApprovalService(submissionRepo, cacheSvc, export.NewPDFExporter(), nil, logr)
	trainingSvc := service.NewTrainingService(cfg.Training.Enabled, logr)
	authSvc := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration, nil, logr)

	teacherHandler := handler.NewTeacherHandler(chatSvc, directorySvc, provider, cfg.AI.Model)
	approvalHandler := handler.NewApprovalHandler(approvalSvc)
	trainingHandler := handler.NewTrainingHandler(trainingSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "mergeed-api",
			"status":  "running",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	teachers := r.Group("/teachers")
	{
		teachers.POST("/chat", teacherHandler.Chat)
		teachers.POST("", teacherHandler.Register)
		teachers.GET("", teacherHandler.List)
		teachers.GET("/ai/health", teacherHandler.AIHealth)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.GET("/:id/submissions", teacherHandler.Submissions)
	}

	approvals := r.Group("/approvals")
	{
		approvals.GET("/submissions", approvalHandler.List)
		approvals.GET("/submissions/:id", approvalHandler.Get)
		approvals.POST("/submissions/:id/approve", approvalHandler.Approve)
		approvals.POST("/submissions/:id/reject", approvalHandler.Reject)
		approvals.GET("/submissions/:id/export", approvalHandler.Export)
		approvals.GET("/stats", approvalHandler.Stats)
		approvals.GET("/district-stats", approvalHandler.DistrictStats)
	}

	if trainingSvc.Enabled() {
		training := r.Group("/training")
		{
			training.GET("/modules", trainingHandler.Modules)
			training.POST("/enroll", trainingHandler.Enroll)
			training.GET("/enrollments/:teacher_id", trainingHandler.Enrollments)
		}
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
