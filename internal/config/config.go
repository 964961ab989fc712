package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	DatabaseURL      string
	APIPort          string
	Dataset          string
	DownloadBaseURL  string
	DownloadPath     string
	DataFileName     string
	MainTableName    string
	StagingTableName string
	SchemaName       string
	MinBatchSize     int
	MaxBatchSize     int
	DefaultBatchSize int
}

func New() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	cfg := &Config{
		DatabaseURL:      databaseURL,
		APIPort:          getEnv("API_PORT", "8000"),
		Dataset:          getEnv("DATASET", "anoopjohny/consumer-complaint-database"),
		DownloadBaseURL:  getEnv("DOWNLOAD_BASE_URL", "https://www.kaggle.com/api/v1/datasets/download"),
		DownloadPath:     getEnv("DOWNLOAD_PATH", "./data"),
		DataFileName:     getEnv("DATA_FILE_NAME", "complaints.csv"),
		MainTableName:    getEnv("MAIN_TABLE_NAME", "consumer_complaints"),
		StagingTableName: getEnv("TEMP_TABLE_NAME", "temp_consumer_complaints"),
		SchemaName:       getEnv("SCHEMA_NAME", "public"),
		MinBatchSize:     1,
		MaxBatchSize:     1000,
		DefaultBatchSize: 1000,
	}

	var err error
	cfg.MinBatchSize, err = getEnvAsInt("MIN_BATCH_SIZE", cfg.MinBatchSize)
	if err != nil {
		return nil, err
	}

	cfg.MaxBatchSize, err = getEnvAsInt("MAX_BATCH_SIZE", cfg.MaxBatchSize)
	if err != nil {
		return nil, err
	}

	cfg.DefaultBatchSize, err = getEnvAsInt("DEFAULT_BATCH_SIZE", cfg.DefaultBatchSize)
	if err != nil {
		return nil, err
	}

	if cfg.MinBatchSize < 1 || cfg.MaxBatchSize < cfg.MinBatchSize {
		return nil, fmt.Errorf("invalid batch size bounds: [%d, %d]", cfg.MinBatchSize, cfg.MaxBatchSize)
	}

	return cfg, nil
}

// DataPath is the expected location of the extracted dataset file.
func (c *Config) DataPath() string {
	return filepath.Join(c.DownloadPath, c.DataFileName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
