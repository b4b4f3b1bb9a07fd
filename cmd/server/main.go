package main

import (
	"log"
	"net"
	"net/http"
	"time"

	"zxtrack/internal/api/router"
	"zxtrack/internal/bus"
	"zxtrack/internal/cache"
	"zxtrack/internal/config"
	"zxtrack/internal/core/repository"
	"zxtrack/internal/core/service"
	"zxtrack/internal/geoloc"
	"zxtrack/internal/protocol/server"
)

func main() {
	cfg := config.LoadConfig()

	// Load MongoDB configuration
	mongoConfig := config.NewMongoConfig()

	// Initialize repositories, falling back to in-memory storage when
	// no database is configured
	var eventRepo repository.EventRepository
	var reportRepo repository.ReportRepository
	if mongoConfig.URI != "" {
		db, err := config.ConnectMongoDB(mongoConfig)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		eventRepo = repository.NewMongoEventRepository(db)
		reportRepo = repository.NewMongoReportRepository(db)
	} else {
		log.Printf("No MongoDB configured, events and reports are kept in memory")
		eventRepo = repository.NewInMemoryEventRepository()
		reportRepo = repository.NewInMemoryReportRepository()
	}

	// Live device sessions; degrades to a no-op without Redis
	sessions := cache.NewSessions(cfg.RedisURL, time.Duration(cfg.SessionTTL)*time.Second)
	defer sessions.Close()

	// Message bus for decoded exchanges and downlink commands
	var b *bus.Bus
	if cfg.NatsURL != "" {
		var err error
		b, err = bus.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer b.Close()
	} else {
		log.Printf("No NATS configured, running collector without consumers")
	}

	// Initialize services
	eventService := service.NewEventService(eventRepo)
	reportService := service.NewReportService(reportRepo)

	if b != nil {
		termConf := service.DefaultTermConfig()
		termConf.StatusIntervalMinutes = cfg.StatusIntervalMinutes
		termConf.UploadIntervalSeconds = cfg.UploadIntervalSeconds
		termConfig := service.NewTermConfigService(termConf, b)
		if err := termConfig.Run(); err != nil {
			log.Fatalf("Failed to start terminal configurator: %v", err)
		}

		resolver := geoloc.NewClient(cfg.GeolocAPIKey, cfg.GeolocURL)
		rectifier := service.NewRectifierService(resolver, reportRepo, b)
		if err := rectifier.Run(); err != nil {
			log.Fatalf("Failed to start rectifier: %v", err)
		}
	}

	// Tracker-facing TCP listener
	collector := server.NewCollector(cfg.Host, cfg.CollectorPort, eventService, b, sessions)
	if err := collector.Start(); err != nil {
		log.Fatalf("Failed to start collector: %v", err)
	}
	defer collector.Stop()

	// Operator API
	r := router.NewRouter(eventService, reportService, sessions, b, cfg.JWTSecret)

	addr := net.JoinHostPort(cfg.Host, cfg.HTTPPort)
	log.Printf("API server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
