package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradie-match-server/cache"
	"tradie-match-server/config"
	"tradie-match-server/database"
	"tradie-match-server/events"
	"tradie-match-server/lifecycle"
	"tradie-match-server/logger"
	"tradie-match-server/middleware"
	"tradie-match-server/realtime"
	"tradie-match-server/routes"
	"tradie-match-server/services"
	"tradie-match-server/utils"
	ws "tradie-match-server/websocket"
)

// app is everything the process builds once at startup. Nothing in it is
// global; commands receive it explicitly.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	db     *gorm.DB
	cache  *cache.Redis
	events events.Publisher
	broker *realtime.Broker
	hub    *ws.Hub

	tokens    *services.TokenService
	auth      *services.AuthService
	profiles  *services.ProfileService
	calendar  *services.CalendarService
	jobs      *services.JobService
	adverts   *services.AdvertService
	discovery *services.DiscoveryService
	chat      *services.ChatService
	reports   *services.ReportService
}

type dbPinger struct{ db *gorm.DB }

func (p dbPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// newApp opens the database and builds the stores and services. Redis,
// Kafka and Cloudinary are optional; without them the cache misses, events
// are dropped and uploads fail with a retryable error.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	db, err := database.Initialize(cfg.Database, cfg.Server.GinMode, log)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	uploader, err := services.NewCloudinaryUploader(cfg.Cloudinary.URL())
	if err != nil {
		return nil, &config.ConfigurationError{Key: "CLOUDINARY_URL", Reason: "invalid credentials", Err: err}
	}
	if uploader == nil {
		log.Warn("⚠️ Cloudinary not configured, photo uploads disabled")
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		cache:  cache.NewRedis(ctx, cfg.Redis, log),
		events: events.NewPublisher(cfg.Kafka, log),
		broker: realtime.NewBroker(),
	}

	loc := cfg.App.Location()
	accounts := database.NewAccountStore(db)
	profiles := database.NewProfileStore(db)
	jobStore := database.NewJobStore(db)
	blocks := database.NewBlockStore(db)

	media := services.NewMediaService(uploader, cfg.App.ProfileImageTarget, cfg.App.JobImageTarget, log)
	machine := lifecycle.NewMachine(cfg.App.PaymentStartDelay)
	machine.Now = services.ClockIn(loc)

	a.tokens = services.NewTokenService(cfg.JWT, database.NewRefreshTokenStore(db), log)
	a.auth = services.NewAuthService(accounts, profiles, a.tokens, services.NewLogMailer(log), cfg.App.PublicBaseURL, log)
	a.profiles = services.NewProfileService(profiles, blocks, media, utils.NewGeocoder(""), a.cache, a.broker, log)
	a.calendar = services.NewCalendarService(profiles, a.cache, a.broker, loc, log)
	a.jobs = services.NewJobService(services.JobDeps{
		Jobs:              jobStore,
		Profiles:          profiles,
		Accounts:          accounts,
		Reviews:           database.NewReviewStore(db),
		Blocks:            blocks,
		Photos:            media,
		Gateway:           services.NewSimulatedGateway(cfg.App.PaymentDelay, cfg.App.PaymentFailEvery),
		Machine:           machine,
		Events:            a.events,
		Broker:            a.broker,
		Feed:              a.cache,
		Log:               log,
		PaymentStartDelay: cfg.App.PaymentStartDelay,
	})
	a.adverts = services.NewAdvertService(database.NewAdvertStore(db), profiles, accounts, a.jobs, log)
	a.discovery = services.NewDiscoveryService(profiles, blocks, a.cache, cfg.Redis.ProfileCacheTTL, loc, log)
	a.chat = services.NewChatService(database.NewChatStore(db), accounts, profiles, blocks, a.broker, log)
	a.reports = services.NewReportService(database.NewReportStore(db), jobStore, profiles, log)

	a.hub = ws.NewHub(a.broker, log, a.jobs.PublishSnapshot)
	return a, nil
}

func (a *app) routerDeps() routes.Dependencies {
	health := map[string]routes.HealthChecker{"database": dbPinger{a.db}}
	if a.cache.Enabled() {
		health["redis"] = a.cache
	}
	return routes.Dependencies{
		Tokens:         a.tokens,
		Auth:           a.auth,
		Profiles:       a.profiles,
		Calendar:       a.calendar,
		Jobs:           a.jobs,
		Adverts:        a.adverts,
		Discovery:      a.discovery,
		Chat:           a.chat,
		Reports:        a.reports,
		Stream:         a.hub.Handler(),
		Health:         health,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		RateRules:      middleware.DefaultRateRules,
		Log:            a.log,
	}
}

// close releases external connections in reverse order of creation.
func (a *app) close() {
	a.broker.Close()
	if err := a.events.Close(); err != nil {
		a.log.Warn("⚠️ Kafka writer close failed", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn("⚠️ Redis close failed", zap.Error(err))
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.log.Info("👋 Connections closed", zap.Time("at", time.Now()))
}
