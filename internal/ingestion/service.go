package ingestion

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nydiamedina/consumer-complaints-etl/internal/config"
	"github.com/nydiamedina/consumer-complaints-etl/internal/database"
	"github.com/nydiamedina/consumer-complaints-etl/internal/models"
	"github.com/nydiamedina/consumer-complaints-etl/internal/parser"
	"github.com/nydiamedina/consumer-complaints-etl/pkg/checksum"
)

// BatchSource is a finite, non-restartable sequence of complaint batches.
type BatchSource interface {
	Next() ([]*models.Complaint, error)
	Close() error
}

// LoadService orchestrates a full load: staging table lifecycle, batch
// streaming and the upsert reconciliation into the main table.
type LoadService struct {
	dbManager database.DBManager
	cfg       config.Config
	newReader func(filePath string, batchSize int) (BatchSource, error)
}

func NewLoadService(dbManager database.DBManager, cfg config.Config) *LoadService {
	return &LoadService{
		dbManager: dbManager,
		cfg:       cfg,
		newReader: func(filePath string, batchSize int) (BatchSource, error) {
			return parser.Open(filePath, batchSize)
		},
	}
}

// LoadAll reads the whole data file in batches into a fresh staging table and
// reconciles it into the main table. The first failing step aborts the
// sequence; completed steps are not rolled back.
func (s *LoadService) LoadAll(ctx context.Context, batchSize int) error {
	if batchSize < s.cfg.MinBatchSize || batchSize > s.cfg.MaxBatchSize {
		return fmt.Errorf("batch size %d is out of range [%d, %d]", batchSize, s.cfg.MinBatchSize, s.cfg.MaxBatchSize)
	}

	dataPath := s.cfg.DataPath()
	fileChecksum, err := checksum.GetFileChecksum(dataPath)
	if err != nil {
		return fmt.Errorf("failed to checksum data file: %w", err)
	}

	if err := s.dbManager.CreateLoadRunsTable(ctx, s.cfg.SchemaName); err != nil {
		return err
	}

	runID, err := s.dbManager.InsertLoadRun(ctx, s.cfg.SchemaName, s.cfg.DataFileName, fileChecksum)
	if err != nil {
		return err
	}

	log.Printf("Starting load run %d for %s (checksum: %s, batch size: %d)", runID, dataPath, fileChecksum, batchSize)

	rowCount, err := s.runLoad(ctx, runID, dataPath, batchSize)
	if err != nil {
		if statusErr := s.dbManager.UpdateLoadRunStatus(ctx, s.cfg.SchemaName, runID, database.LOAD_STATUS_FAILED, rowCount, err.Error()); statusErr != nil {
			log.Printf("Failed to mark load run %d as failed: %v", runID, statusErr)
		}
		return err
	}

	log.Printf("Load run %d finished: %d rows staged.", runID, rowCount)
	return s.dbManager.UpdateLoadRunStatus(ctx, s.cfg.SchemaName, runID, database.LOAD_STATUS_DONE, rowCount, "")
}

func (s *LoadService) runLoad(ctx context.Context, runID int, dataPath string, batchSize int) (int64, error) {
	// Each run gets its own staging table, so concurrent loads never share
	// one.
	stagingTable := fmt.Sprintf("%s_run_%d", s.cfg.StagingTableName, runID)

	// Step 1: sweep staging tables left behind by earlier failed runs.
	staleTables, err := s.dbManager.ListStagingTables(ctx, s.cfg.SchemaName, s.cfg.StagingTableName)
	if err != nil {
		return 0, err
	}
	for _, staleTable := range staleTables {
		log.Printf("Dropping stale staging table %s", staleTable)
		if err := s.dbManager.DropTable(ctx, s.cfg.SchemaName, staleTable); err != nil {
			return 0, err
		}
	}

	// Step 2: ensure the main table exists.
	if err := s.dbManager.CreateComplaintsTable(ctx, s.cfg.SchemaName, s.cfg.MainTableName); err != nil {
		return 0, err
	}

	// Step 3: create the staging table for this run.
	if err := s.dbManager.CreateStagingTable(ctx, s.cfg.SchemaName, stagingTable, s.cfg.MainTableName); err != nil {
		return 0, err
	}

	// Step 4: stream batches from the file into staging, in file order.
	reader, err := s.newReader(dataPath, batchSize)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	var rowCount int64
	for {
		batch, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rowCount, err
		}

		copied, err := s.dbManager.CopyComplaints(ctx, s.cfg.SchemaName, stagingTable, batch)
		if err != nil {
			return rowCount, err
		}
		rowCount += copied
	}

	// Step 5: reconcile staging into the main table.
	upserted, err := s.dbManager.UpsertFromStaging(ctx, s.cfg.SchemaName, s.cfg.MainTableName, stagingTable)
	if err != nil {
		return rowCount, err
	}
	log.Printf("Reconciled %d complaints into %s.%s", upserted, s.cfg.SchemaName, s.cfg.MainTableName)

	// Step 6: drop this run's staging table.
	if err := s.dbManager.DropTable(ctx, s.cfg.SchemaName, stagingTable); err != nil {
		return rowCount, err
	}

	return rowCount, nil
}
