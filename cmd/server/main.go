package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"biketaxi/internal/app"
	"biketaxi/internal/config"
	"biketaxi/internal/events"
	"biketaxi/internal/handler"
	internalRedis "biketaxi/internal/redis"
	"biketaxi/internal/repository/postgres"
	"biketaxi/internal/service"
	"biketaxi/internal/ws"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Optional Kafka sink for the ride event stream.
	var eventSink *events.RideEventSink
	if cfg.Kafka.Enabled {
		eventSink = events.NewRideEventSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer eventSink.Close()
		log.Printf("Kafka ride event stream enabled: topic=%s", cfg.Kafka.Topic)
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, eventSink, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, eventSink *events.RideEventSink, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	driverLocations := internalRedis.NewDriverLocationStore(redisClient)
	rideLocations := internalRedis.NewRideLocationStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	rideLocationRepo := postgres.NewRideLocationRepository(db)

	// Websocket hub for rider/driver push channels.
	hub := ws.NewHub()

	// Notifications fan out to websocket rooms, the event stream and the log.
	sink := service.MultiSink{hub, service.LogSink{}}
	if eventSink != nil {
		sink = append(sink, eventSink)
	}

	// Initialize services.
	matchingService := service.NewMatchingService(driverRepo, driverLocations)
	surgeService := service.NewSurgeService(driverRepo, driverLocations, rideRepo)
	rideService := service.NewRideService(rideRepo, userRepo, driverRepo, sink)
	driverService := service.NewDriverService(driverRepo, driverLocations)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo)
	rideHandler := handler.NewRideHandler(rideService)
	matchHandler := handler.NewMatchHandler(matchingService)
	driverHandler := handler.NewDriverHandler(driverService, driverRepo)
	fareHandler := handler.NewFareHandler(surgeService)
	locationHandler := ws.NewLocationHandler(hub, rideLocations, rideRepo, rideLocationRepo)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:     userHandler,
		RideHandler:     rideHandler,
		MatchHandler:    matchHandler,
		DriverHandler:   driverHandler,
		FareHandler:     fareHandler,
		LocationHandler: locationHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
