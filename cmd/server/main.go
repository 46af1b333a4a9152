package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dbpulse/dbpulse/internal/auth"
	"github.com/dbpulse/dbpulse/internal/config"
	"github.com/dbpulse/dbpulse/internal/eventbus"
	"github.com/dbpulse/dbpulse/internal/httpapi"
	"github.com/dbpulse/dbpulse/internal/monitor"
	"github.com/dbpulse/dbpulse/internal/query"
	"github.com/dbpulse/dbpulse/internal/registry"
	"github.com/dbpulse/dbpulse/internal/store"
	"github.com/dbpulse/dbpulse/internal/users"
)

func main() {
	log.Printf("DBPulse server starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to application database: %v", err)
	}

	connectionStore := store.NewConnectionStore(db)
	executionStore := store.NewExecutionStore(db)
	metricStore := store.NewMetricStore(db)
	userStore := store.NewUserStore(db)

	var publisher *eventbus.Publisher
	if cfg.NatsURL != "" {
		publisher, err = eventbus.NewPublisher(cfg.NatsURL)
		if err != nil {
			log.Printf("NATS unavailable, anomaly publishing disabled: %v", err)
			publisher = nil
		}
	}

	reg := registry.New(connectionStore, executionStore)
	executor := query.NewExecutor()
	recorder := monitor.NewRecorder(executionStore, cfg.RecorderQueueSize)

	var mon *monitor.Monitor
	if publisher != nil {
		mon = monitor.New(db, metricStore, publisher)
	} else {
		mon = monitor.New(db, metricStore, nil)
	}

	tokens := auth.NewManager(cfg.JWTSecret)
	userService := users.NewService(userStore, tokens)

	server := httpapi.NewServer(reg, executor, mon, recorder, userService, tokens, executionStore, metricStore)

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(cfg.ListenAddress); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-sigChan
	log.Printf("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Stop(); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	}
	recorder.Stop()
	reg.Shutdown(shutdownCtx)
	if publisher != nil {
		publisher.Close()
	}
	if err := store.Disconnect(shutdownCtx, db); err != nil {
		log.Printf("Error disconnecting from application database: %v", err)
	}

	log.Printf("Server stopped successfully")
}
