package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/neo4j-contrib/dx-feedback-form/internal/app"
	"github.com/neo4j-contrib/dx-feedback-form/internal/feedback"
	internalhttp "github.com/neo4j-contrib/dx-feedback-form/internal/http"
	"github.com/neo4j-contrib/dx-feedback-form/internal/http/handlers"
	"github.com/neo4j-contrib/dx-feedback-form/internal/observability"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Loading configuration...")
	cfg := app.LoadConfig(log)

	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})

	log.Info("Connecting to Neo4j...", "database", cfg.Neo4j.Database)
	store, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err)
		os.Exit(1)
	}

	resolver := feedback.NewProjectResolver(cfg.DefaultProject)
	ingestSvc := feedback.NewIngestionService(store, resolver, log)
	analyticsSvc := feedback.NewAnalyticsService(store, log)

	feedbackHandler := handlers.NewFeedbackHandler(log, ingestSvc)
	reportHandler := handlers.NewReportHandler(log, analyticsSvc)

	server := internalhttp.NewServer(internalhttp.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		FeedbackHandler: feedbackHandler,
		ReportHandler:   reportHandler,
	})

	log.Info("Starting feedback service", "addr", cfg.ListenAddr)
	runErr := server.Run(cfg.ListenAddr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closeErr := store.Close(ctx); closeErr != nil {
		log.Warn("Neo4j close failed", "error", closeErr)
	}
	if shutdownOtel != nil {
		_ = shutdownOtel(ctx)
	}
	if runErr != nil {
		log.Error("HTTP server stopped", "error", runErr)
		os.Exit(1)
	}
}
