package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/nydiamedina/consumer-complaints-etl/internal/config"
	"github.com/nydiamedina/consumer-complaints-etl/internal/database"
	"github.com/nydiamedina/consumer-complaints-etl/internal/downloader"
	"github.com/nydiamedina/consumer-complaints-etl/internal/ingestion"
	"github.com/nydiamedina/consumer-complaints-etl/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(dbpool)
	fetcher := downloader.NewHTTPFetcher(cfg.DownloadBaseURL)
	datasetDownloader := downloader.New(fetcher, cfg.Dataset, cfg.DownloadPath, cfg.DataFileName)
	loadService := ingestion.NewLoadService(dbManager, *cfg)

	router := server.SetupRoutes(server.NewComplaintService(datasetDownloader, loadService, *cfg))

	log.Printf("Server starting on port %s", cfg.APIPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.APIPort), router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
