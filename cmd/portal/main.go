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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/handler"
	"github.com/noah-isme/coaching-portal/internal/repository"
	"github.com/noah-isme/coaching-portal/internal/service"
	"github.com/noah-isme/coaching-portal/internal/web"
	"github.com/noah-isme/coaching-portal/pkg/cache"
	"github.com/noah-isme/coaching-portal/pkg/config"
	"github.com/noah-isme/coaching-portal/pkg/logger"
)

// @title Coaching Portal API
// @version 1.0.0
// @description Session-backed JSON surface of the coaching portal
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

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			if cfg.Session.Store == config.SessionStoreRedis {
				logr.Fatal("redis is required for the session store", zap.Error(err))
			}
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	app, err := newApp(cfg, logr, redisClient)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// app holds every wired handler plus the pieces middleware needs.
type app struct {
	metrics  *service.MetricsService
	sessions *service.SessionService

	public  *handler.PublicHandler
	auth    *handler.AuthHandler
	student *handler.StudentHandler
	admin   *handler.AdminHandler
	leads   *handler.AdminLeadHandler
	api     *handler.APIHandler
	probe   *handler.MetricsHandler
}

func newApp(cfg *config.Config, logr *zap.Logger, redisClient *redis.Client) (*app, error) {
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	var sessionRepo service.SessionRepository = repository.NewMemorySessionRepository()
	if cfg.Session.Store == config.SessionStoreRedis && redisClient != nil {
		sessionRepo = repository.NewRedisSessionRepository(redisClient)
	}
	sessions := service.NewSessionService(sessionRepo, cfg.Session.TTL, cfg.Session.LoginGuardTTL, logr)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	client := repository.NewBackendClient(cfg.Backend, metrics, logr)
	authRepo := repository.NewAuthRepository(client)
	catalogRepo := repository.NewCatalogRepository(client)
	leadRepo := repository.NewLeadRepository(client)
	learningRepo := repository.NewLearningRepository(client)
	supportRepo := repository.NewSupportRepository(client)
	aiRepo := repository.NewAIRepository(client)

	authSvc := service.NewAuthService(authRepo, sessions, cacheSvc, metrics, validate, logr)
	leadSvc := service.NewLeadService(leadRepo, sessions, cacheSvc, metrics, cfg.Outreach, validate, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, learningRepo, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(repository.NewPaymentRepository(client), catalogSvc, sessions, cacheSvc, cfg.Payment.Delay, validate, logr)
	studentSvc := service.NewStudentService(learningRepo, aiRepo, supportRepo, cacheSvc, validate, logr)
	adminSvc := service.NewAdminService(repository.NewStatsRepository(client), authRepo, supportRepo, catalogSvc, cacheSvc, logr)
	marketingSvc := service.NewMarketingService(aiRepo, leadRepo, leadSvc, cacheSvc, metrics, validate, logr)
	commsSvc := service.NewCommunicationService(repository.NewCommunicationRepository(client), cacheSvc, validate, logr)

	views, err := web.NewRenderer(logr)
	if err != nil {
		return nil, err
	}

	return &app{
		metrics:  metrics,
		sessions: sessions,
		public:   handler.NewPublicHandler(catalogSvc, leadSvc, paymentSvc, views),
		auth:     handler.NewAuthHandler(authSvc, views, logr),
		student:  handler.NewStudentHandler(studentSvc, views),
		admin:    handler.NewAdminHandler(adminSvc, catalogSvc, leadSvc, marketingSvc, commsSvc, views),
		leads:    handler.NewAdminLeadHandler(leadSvc, catalogSvc, views),
		api:      handler.NewAPIHandler(authSvc, leadSvc, logr),
		probe:    handler.NewMetricsHandler(metrics),
	}, nil
}
