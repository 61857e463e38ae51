package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Vokurcak68/Flyer-app-sub000/api/swagger"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/erp"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/handler"
	internalmiddleware "github.com/Vokurcak68/Flyer-app-sub000/internal/middleware"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/notify"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/pdf"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/repository"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/service"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/cache"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/config"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/database"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/jobs"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/logger"
	corsmiddleware "github.com/Vokurcak68/Flyer-app-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/Vokurcak68/Flyer-app-sub000/pkg/middleware/requestid"
)

// @title Flyer API
// @version 1.0.0
// @description Flyer composition, approval, and publishing service
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flyerRepo := repository.NewFlyerRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	erpClient := erp.NewClient(cfg.ERP, logr)
	mailer := notify.NewMailer(cfg.Notify, logr)
	renderer := pdf.NewRenderer(cfg.Flyers.FontDir, logr)

	mailQueue := jobs.NewQueue("reviewer-mail", func(ctx context.Context, job jobs.Job) error {
		mail, ok := job.Payload.(notify.SubmittedMail)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		return mailer.SendFlyerSubmitted(ctx, mail)
	}, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.Retries,
		RetryDelay: cfg.Notify.RetryInterval,
		Logger:     logr,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	metricsSvc := service.NewMetricsService()

	flyerSvc := service.NewFlyerService(flyerRepo, catalogRepo, historyRepo, logr,
		service.WithListingCache(cacheRepo, cfg.Flyers.ActiveCacheTTL),
		service.WithMetrics(metricsSvc))
	lifecycleSvc := service.NewLifecycleService(service.LifecycleDeps{
		Flyers:      flyerRepo,
		Catalog:     catalogRepo,
		Approvals:   approvalRepo,
		Versions:    versionRepo,
		History:     historyRepo,
		Reviewers:   userRepo,
		ERP:         erpClient,
		Renderer:    renderer,
		MailQueue:   mailQueue,
		Cache:       cacheRepo,
		Metrics:     metricsSvc,
		ApprovalURL: cfg.Notify.ApprovalURL,
		Logger:      logr,
	})

	go flyerSvc.RunSweeper(ctx, cfg.Flyers.SweepInterval)

	flyerHandler := handler.NewFlyerHandler(flyerSvc)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(cfg.JWT.Secret))

	composers := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSupplier, models.RoleEndUser)
	reviewers := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleApprover, models.RolePreApprover)

	flyers := api.Group("/flyers")
	{
		flyers.POST("", composers, flyerHandler.Create)
		flyers.GET("", flyerHandler.List)
		flyers.GET("/active", flyerHandler.ListActive)
		flyers.GET("/:id", flyerHandler.Get)
		flyers.PUT("/:id", composers, flyerHandler.Update)
		flyers.DELETE("/:id", composers, flyerHandler.Delete)
		flyers.PUT("/:id/pages/sync", composers, flyerHandler.SyncPages)
		flyers.PUT("/:id/autosave", composers, flyerHandler.Autosave)
		flyers.POST("/:id/pages", composers, flyerHandler.AddPage)
		flyers.DELETE("/:id/pages/:pageID", composers, flyerHandler.RemovePage)
		flyers.POST("/:id/pages/:pageID/products", composers, flyerHandler.AddProduct)
		flyers.DELETE("/:id/slots/:slotID", composers, flyerHandler.RemoveSlot)
		flyers.PUT("/:id/slots/:slotID/position", composers, flyerHandler.SwapPosition)
		flyers.POST("/:id/submit", composers, lifecycleHandler.Submit)
		flyers.POST("/:id/expire", composers, lifecycleHandler.Expire)
		flyers.POST("/:id/approvals/decision", reviewers, lifecycleHandler.Decide)
		flyers.GET("/:id/approvals", lifecycleHandler.Approvals)
		flyers.GET("/:id/versions", lifecycleHandler.Versions)
		flyers.GET("/:id/history", lifecycleHandler.History)
		flyers.GET("/:id/pdf", flyerHandler.DownloadPDF)
	}
	api.GET("/actions", lifecycleHandler.Actions)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
