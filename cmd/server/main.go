package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/cityapi/internal/config"
	"github.com/smartcity/cityapi/internal/delivery/http"
	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/internal/repository/memory"
	"github.com/smartcity/cityapi/internal/repository/postgres"
	"github.com/smartcity/cityapi/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := connect(ctx, cfg.DatabaseURL)
	if pool != nil {
		defer pool.Close()
	}

	// Dependency Injection: Repositories
	var dataRepo service.DataRepository
	if pool != nil {
		pg := postgres.NewPostgresRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare database: %v", err)
		}
		dataRepo = pg
	} else {
		dataRepo = memory.NewRepository(memory.DefaultCapacity)
	}

	holidays, err := cfg.HolidayDates()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	isHoliday := service.CalendarHolidays(holidays, service.WeekendAsHoliday)

	policy := service.UpstreamPolicy{Strict: cfg.StrictUpstream()}
	rng := service.NewRandomSource(cfg.RandomSeed)
	location := domain.Location{Name: cfg.DefaultCity, Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLon}

	// Dependency Injection: Traffic model
	estimator := service.NewCongestionEstimator(rng)
	if err := estimator.Fit(); err != nil {
		log.Printf("Warning: congestion model failed to train: %v", err)
	}
	series := service.NewSeriesSynthesizer(estimator, rng, isHoliday)

	// Dependency Injection: Services
	trafficSvc := service.NewTrafficService(service.TrafficServiceConfig{
		Estimator:  estimator,
		Builder:    service.NewNetworkBuilder(estimator, series, rng, isHoliday),
		Live:       service.NewTomTomAdapter(config.Key(cfg.TomTomAPIKey), series),
		Cache:      service.NewSnapshotCache(cfg.TrafficCacheTTL, time.Now),
		Repo:       dataRepo,
		Policy:     policy,
		DefaultLat: cfg.DefaultLat,
		DefaultLon: cfg.DefaultLon,
	})
	weatherSvc := service.NewWeatherService(config.Key(cfg.OpenWeatherAPIKey), rng, policy).WithArchive(dataRepo)
	airSvc := service.NewAirQualityService(config.Key(cfg.OpenAQAPIKey), rng, policy)
	dashboardSvc := service.NewDashboardService(weatherSvc, airSvc, trafficSvc, dataRepo, location)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "SmartCity API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, http.Services{
		Traffic:    trafficSvc,
		Weather:    weatherSvc,
		AirQuality: airSvc,
		Alerts:     service.NewAlertService(rng),
		Reports:    service.NewReportService(rng, cfg.DefaultLat, cfg.DefaultLon),
		Chat:       service.NewChatService(config.Key(cfg.GeminiAPIKey), rng, policy),
		Sensors:    service.NewSensorService(config.Key(cfg.OpenSenseMapKey), rng, policy, cfg.DefaultLat, cfg.DefaultLon),
		Waste:      service.NewWasteService(rng, cfg.DefaultLat, cfg.DefaultLon),
		Solar:      service.NewSolarService(rng, isHoliday),
		Transit:    service.NewTransitService(rng, cfg.DefaultLat, cfg.DefaultLon),
		Dashboard:  dashboardSvc,
		Repo:       dataRepo,
		Location:   location,
	})

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (upstream policy: %s)", cfg.Port, cfg.UpstreamPolicy)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	trafficSvc.WaitBackground()
	dashboardSvc.WaitBackground()
	log.Println("Server exited gracefully")
}

// connect returns a live pool, or nil when no database is configured or reachable
func connect(ctx context.Context, url string) *pgxpool.Pool {
	if url == "" {
		log.Println("DATABASE_URL not set, archiving in memory")
		return nil
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Archiving in memory")
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Printf("Warning: Database unreachable: %v", err)
		log.Println("Archiving in memory")
		return nil
	}

	log.Println("Connected to PostgreSQL")
	return pool
}
