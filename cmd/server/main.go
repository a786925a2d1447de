package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/siderhub/platform/internal/config"
	"github.com/siderhub/platform/internal/database"
	"github.com/siderhub/platform/internal/evolution"
	"github.com/siderhub/platform/internal/handler"
	"github.com/siderhub/platform/internal/metrics"
	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/queue"
	"github.com/siderhub/platform/internal/repository"
	"github.com/siderhub/platform/internal/router"
	"github.com/siderhub/platform/internal/service"
	"github.com/siderhub/platform/internal/utils"
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env wins

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // Redis backs the cache and rate-limit middleware

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	codec := utils.NewTokenCodec(
		cfg.AccessSecret, cfg.RefreshSecret,
		cfg.TokenIssuer, cfg.TokenAudience,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)
	secrets, err := utils.NewSecretBox(cfg.EncryptionKeyHex)
	if err != nil {
		log.Fatalf("encryption key: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	access := repository.NewAccessRepo(db)
	campaigns := repository.NewCampaignRepo(db)
	configs := repository.NewEvolutionRepo(db)
	banners := repository.NewBannerRepo(db)
	courses := repository.NewCourseRepo(db)
	resources := repository.NewResourceRepo(db)
	comments := repository.NewCommentRepo(db)

	gateway := evolution.NewClient(nil)
	events := queue.NewPublisher()

	authSvc := service.NewAuthService(users, sessions, access, codec)
	campaignSvc := service.NewCampaignService(campaigns, configs, gateway, secrets, events, collector)
	hubSvc := service.NewHubService(banners, courses, campaignSvc, resources, collector)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, collector),
		Hub:        handler.NewHubHandler(hubSvc),
		Hidra:      handler.NewHidraHandler(campaignSvc),
		Academy:    handler.NewAcademyHandler(courses, comments),
		Cybervault: handler.NewCybervaultHandler(resources),
		Admin:      handler.NewAdminHandler(banners, users, comments, cfg.BcryptCost),
	}

	go func() { // Consumer writes scheduled-campaign events to the audit log
		if err := queue.StartCampaignConsumer(); err != nil {
			log.Printf("campaign consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Metrics(collector))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAPI(e, handlers, codec, access, limiter, cache)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
