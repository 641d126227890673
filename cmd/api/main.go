package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jlindhorst/studiprogress-api/api/swagger"
	"github.com/jlindhorst/studiprogress-api/internal/handler"
	"github.com/jlindhorst/studiprogress-api/internal/middleware"
	"github.com/jlindhorst/studiprogress-api/internal/repository"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	"github.com/jlindhorst/studiprogress-api/pkg/cache"
	"github.com/jlindhorst/studiprogress-api/pkg/config"
	"github.com/jlindhorst/studiprogress-api/pkg/database"
	"github.com/jlindhorst/studiprogress-api/pkg/export"
	"github.com/jlindhorst/studiprogress-api/pkg/hash"
	"github.com/jlindhorst/studiprogress-api/pkg/logger"
	corsmiddleware "github.com/jlindhorst/studiprogress-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jlindhorst/studiprogress-api/pkg/middleware/requestid"
)

// @title StudiProgress API
// @version 1.0.0
// @description Single-user study-progress tracker for German university programs
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

	metricsService := service.NewMetricsService()

	// The dashboard works without Redis; a missing cache only disables it.
	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	studentRepo := repository.NewStudentRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	modulRepo := repository.NewModulRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	hasher := hash.NewBcryptHasher(bcrypt.DefaultCost)

	authService := service.NewAuthService(studentRepo, hasher, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogService := service.NewCatalogService(catalogRepo, modulRepo, nil, logr)
	studentService := service.NewStudentService(studentRepo, semesterRepo, catalogService, hasher, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, modulRepo, studentRepo, cacheService, nil, logr)
	progressService := service.NewProgressService(enrollmentRepo, semesterRepo, logr)
	dashboardService := service.NewDashboardService(studentRepo, catalogRepo, progressService, cacheService, logr)
	exportService := service.NewExportService(studentRepo, enrollmentRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Export.Enabled)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/students", studentHandler.Register)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.PUT("/auth/password", authHandler.ChangePassword)

		protected.GET("/students", studentHandler.List)
		protected.GET("/students/:id", studentHandler.Get)
		protected.PUT("/students/:id", studentHandler.Update)
		protected.PUT("/students/:id/exmatrikulation", studentHandler.Exmatrikulieren)
		protected.GET("/students/:id/semester", studentHandler.ListSemester)
		protected.POST("/students/:id/semester", studentHandler.AddSemester)

		protected.GET("/hochschulen", catalogHandler.ListHochschulen)
		protected.POST("/hochschulen", catalogHandler.CreateHochschule)
		protected.GET("/studiengaenge", catalogHandler.ListStudiengaenge)
		protected.POST("/studiengaenge", catalogHandler.CreateStudiengang)
		protected.GET("/module", catalogHandler.ListModule)
		protected.POST("/module", catalogHandler.CreateModul)
		protected.GET("/module/:id", catalogHandler.GetModul)
		protected.GET("/module/:id/kurse", catalogHandler.ListKurse)
		protected.POST("/module/:id/kurse", catalogHandler.AddKurs)

		protected.GET("/enrollments", enrollmentHandler.List)
		protected.POST("/enrollments", enrollmentHandler.Create)
		protected.GET("/enrollments/:id", enrollmentHandler.Detail)
		protected.DELETE("/enrollments/:id", enrollmentHandler.Delete)
		protected.POST("/enrollments/:id/attempts", enrollmentHandler.AddAttempt)
		protected.POST("/enrollments/:id/attempts/auto", enrollmentHandler.AddAttemptAuto)
		protected.PUT("/attempts/:id/grade", enrollmentHandler.RecordGrade)

		protected.GET("/dashboard", dashboardHandler.Get)
		protected.GET("/export/transcript", exportHandler.Transcript)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
