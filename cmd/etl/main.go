package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/nydiamedina/consumer-complaints-etl/internal/config"
	"github.com/nydiamedina/consumer-complaints-etl/internal/database"
	"github.com/nydiamedina/consumer-complaints-etl/internal/downloader"
	"github.com/nydiamedina/consumer-complaints-etl/internal/ingestion"
)

func setup(ctx context.Context) (*config.Config, *downloader.Downloader, *ingestion.LoadService, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbpool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	dbManager := database.NewPostgresDBManager(dbpool)
	fetcher := downloader.NewHTTPFetcher(cfg.DownloadBaseURL)
	datasetDownloader := downloader.New(fetcher, cfg.Dataset, cfg.DownloadPath, cfg.DataFileName)
	loadService := ingestion.NewLoadService(dbManager, *cfg)

	cleanupFunc := func() {
		dbpool.Close()
	}

	return cfg, datasetDownloader, loadService, cleanupFunc, nil
}

func execute(ctx context.Context, datasetDownloader *downloader.Downloader, loadService *ingestion.LoadService, batchSize int) error {
	dataPath, err := datasetDownloader.Ensure(ctx)
	if err != nil {
		return err
	}
	log.Printf("Data path: %s", dataPath)

	return loadService.LoadAll(ctx, batchSize)
}

func cleanup(cleanupFunc func()) {
	log.Println("Cleaning up resources...")
	cleanupFunc()
}

func main() {
	batchSize := flag.Int("batch-size", 0, "rows per batch (defaults to the configured batch size)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	startTime := time.Now()

	ctx := context.Background()
	cfg, datasetDownloader, loadService, cleanupFunc, err := setup(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup(cleanupFunc)

	if *batchSize == 0 {
		*batchSize = cfg.DefaultBatchSize
	}

	log.Println("Starting load process...")
	if err := execute(ctx, datasetDownloader, loadService, *batchSize); err != nil {
		log.Fatalf("Error during load: %v\n", err)
	}

	log.Println("Load process finished.")
	log.Printf("Execution time: %s\n", time.Since(startTime))
}
