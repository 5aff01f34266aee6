package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/okulplan/timetable-engine/api/swagger"
	"github.com/okulplan/timetable-engine/internal/handler"
	"github.com/okulplan/timetable-engine/internal/middleware"
	"github.com/okulplan/timetable-engine/internal/repository"
	"github.com/okulplan/timetable-engine/internal/service"
	"github.com/okulplan/timetable-engine/pkg/cache"
	"github.com/okulplan/timetable-engine/pkg/config"
	"github.com/okulplan/timetable-engine/pkg/database"
	"github.com/okulplan/timetable-engine/pkg/logger"
	corsmiddleware "github.com/okulplan/timetable-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/okulplan/timetable-engine/pkg/middleware/requestid"
)

// @title Okulplan Timetable Engine
// @version 0.1.0
// @description Constraint-based weekly timetable generation for schools
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	generatorSvc := service.NewScheduleGeneratorService(
		settingsRepo,
		teacherRepo,
		classRepo,
		lessonRepo,
		curriculumRepo,
		assignmentRepo,
		entryRepo,
		db,
		cacheRepo,
		metricsSvc,
		validator.New(),
		logr,
		service.ScheduleGeneratorConfig{
			ProposalTTL:         cfg.Scheduler.ProposalTTL,
			MaxAttempts:         cfg.Scheduler.MaxAttempts,
			MinEducationalScore: cfg.Scheduler.MinEducationalScore,
			AllowDegradedFill:   cfg.Scheduler.AllowDegradedFill,
			WorkerConcurrency:   cfg.Scheduler.WorkerConcurrency,
		},
	)

	timetableSvc := service.NewTimetableService(
		entryRepo,
		classRepo,
		teacherRepo,
		lessonRepo,
		settingsRepo,
		cacheRepo,
		cfg.Timetable.CacheTTL,
		logr,
	)

	generatorHandler := handler.NewScheduleGeneratorHandler(generatorSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/schedule/generate", generatorHandler.Generate)
		api.POST("/schedule/generate/async", generatorHandler.GenerateAsync)
		api.GET("/schedule/proposals/:id", generatorHandler.GetProposal)
		api.POST("/schedule/save", generatorHandler.Save)
		api.GET("/timetable/class/:id", timetableHandler.ClassWeek)
		api.GET("/timetable/teacher/:id", timetableHandler.TeacherWeek)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generatorSvc.StartWorkers(ctx)
	defer generatorSvc.StopWorkers()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
