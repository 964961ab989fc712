package database

import (
	"context"

	"github.com/nydiamedina/consumer-complaints-etl/internal/models"
)

const (
	LOAD_STATUS_PROCESSING = "PROCESSING"
	LOAD_STATUS_DONE       = "DONE"
	LOAD_STATUS_FAILED     = "FAILED"
)

type DBManager interface {
	CreateComplaintsTable(ctx context.Context, schema, table string) error
	CreateStagingTable(ctx context.Context, schema, stagingTable, mainTable string) error
	DropTable(ctx context.Context, schema, table string) error
	ListStagingTables(ctx context.Context, schema, prefix string) ([]string, error)
	CopyComplaints(ctx context.Context, schema, table string, complaints []*models.Complaint) (int64, error)
	UpsertFromStaging(ctx context.Context, schema, mainTable, stagingTable string) (int64, error)
	CreateLoadRunsTable(ctx context.Context, schema string) error
	InsertLoadRun(ctx context.Context, schema, fileName, checksum string) (int, error)
	UpdateLoadRunStatus(ctx context.Context, schema string, runID int, status string, rowCount int64, errorMessage string) error
}
