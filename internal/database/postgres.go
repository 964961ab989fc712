package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nydiamedina/consumer-complaints-etl/internal/models"
)

// complaintColumns is the column order of the consumer_complaints table. The
// DDL, the COPY writer and the upsert statement all rely on this order.
var complaintColumns = []string{
	"date_received",
	"product",
	"sub_product",
	"issue",
	"sub_issue",
	"consumer_complaint_narrative",
	"company_public_response",
	"company",
	"state",
	"zip_code",
	"tags",
	"consumer_consent_provided",
	"submitted_via",
	"date_sent_to_company",
	"company_response_to_consumer",
	"timely_response",
	"consumer_disputed",
	"complaint_id",
}

func ConnectDB(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return dbpool, nil
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
}

func NewPostgresDBManager(pool *pgxpool.Pool) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool}
}

func (m *PostgresDBManager) CreateComplaintsTable(ctx context.Context, schema, table string) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		date_received DATE,
		product TEXT,
		sub_product TEXT,
		issue TEXT,
		sub_issue TEXT,
		consumer_complaint_narrative TEXT,
		company_public_response TEXT,
		company TEXT,
		state TEXT,
		zip_code TEXT,
		tags TEXT,
		consumer_consent_provided TEXT,
		submitted_via TEXT,
		date_sent_to_company DATE,
		company_response_to_consumer TEXT,
		timely_response BOOLEAN,
		consumer_disputed TEXT,
		complaint_id BIGINT PRIMARY KEY
	);`, pgx.Identifier{schema, table}.Sanitize())

	_, err := m.dbpool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("error creating table %s.%s: %w", schema, table, err)
	}

	return nil
}

// CreateStagingTable creates an unlogged copy of the main table plus a seq
// column that records file order, so the reconcile step has a deterministic
// tie-break between duplicate complaint ids.
func (m *PostgresDBManager) CreateStagingTable(ctx context.Context, schema, stagingTable, mainTable string) error {
	createQuery := fmt.Sprintf(`CREATE UNLOGGED TABLE IF NOT EXISTS %s (LIKE %s INCLUDING DEFAULTS);`,
		pgx.Identifier{schema, stagingTable}.Sanitize(),
		pgx.Identifier{schema, mainTable}.Sanitize())

	if _, err := m.dbpool.Exec(ctx, createQuery); err != nil {
		return fmt.Errorf("error creating staging table %s: %w", stagingTable, err)
	}

	alterQuery := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS seq BIGSERIAL;`,
		pgx.Identifier{schema, stagingTable}.Sanitize())

	if _, err := m.dbpool.Exec(ctx, alterQuery); err != nil {
		return fmt.Errorf("error adding seq column to staging table %s: %w", stagingTable, err)
	}

	return nil
}

func (m *PostgresDBManager) DropTable(ctx context.Context, schema, table string) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, pgx.Identifier{schema, table}.Sanitize())
	_, err := m.dbpool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("error dropping table %s.%s: %w", schema, table, err)
	}
	return nil
}

// ListStagingTables returns every table in the schema whose name starts with
// the staging prefix, so leftovers from failed runs can be swept.
func (m *PostgresDBManager) ListStagingTables(ctx context.Context, schema, prefix string) ([]string, error) {
	query := `SELECT tablename FROM pg_tables WHERE schemaname = $1 AND tablename LIKE $2 || '%' ORDER BY tablename;`

	rows, err := m.dbpool.Query(ctx, query, schema, prefix)
	if err != nil {
		return nil, fmt.Errorf("error listing staging tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("error scanning tablename: %w", err)
		}
		tables = append(tables, tableName)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return tables, nil
}

// CopyComplaints bulk-appends one batch into the named table. No
// deduplication and no validation against the key column.
func (m *PostgresDBManager) CopyComplaints(ctx context.Context, schema, table string, complaints []*models.Complaint) (int64, error) {
	copySource := pgx.CopyFromSlice(len(complaints), func(i int) ([]interface{}, error) {
		c := complaints[i]
		return []interface{}{
			c.DateReceived, c.Product, c.SubProduct, c.Issue, c.SubIssue,
			c.ConsumerComplaintNarrative, c.CompanyPublicResponse, c.Company,
			c.State, c.ZipCode, c.Tags, c.ConsumerConsentProvided,
			c.SubmittedVia, c.DateSentToCompany, c.CompanyResponseToConsumer,
			c.TimelyResponse, c.ConsumerDisputed, c.ComplaintID,
		}, nil
	})

	rowsCopied, err := m.dbpool.CopyFrom(ctx, pgx.Identifier{schema, table}, complaintColumns, copySource)
	if err != nil {
		return 0, fmt.Errorf("unable to copy complaints into %s.%s: %w", schema, table, err)
	}

	return rowsCopied, nil
}

// UpsertFromStaging reconciles the staging table into the main table in a
// single transactional statement: one row per complaint id (the last row in
// file order wins), inserted when new and overwriting every non-key column
// when the id already exists.
func (m *PostgresDBManager) UpsertFromStaging(ctx context.Context, schema, mainTable, stagingTable string) (int64, error) {
	tx, err := m.dbpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	log.Printf("Upserting staging table %s into %s.", stagingTable, mainTable)
	tag, err := tx.Exec(ctx, buildUpsertQuery(schema, mainTable, stagingTable))
	if err != nil {
		return 0, fmt.Errorf("error upserting from staging table %s: %w", stagingTable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return tag.RowsAffected(), nil
}

func buildUpsertQuery(schema, mainTable, stagingTable string) string {
	columns := strings.Join(complaintColumns, ", ")

	assignments := make([]string, 0, len(complaintColumns)-1)
	for _, column := range complaintColumns {
		if column == "complaint_id" {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	return fmt.Sprintf(`
	INSERT INTO %s (%s)
	SELECT DISTINCT ON (complaint_id) %s
	FROM %s
	ORDER BY complaint_id, seq DESC
	ON CONFLICT (complaint_id) DO UPDATE SET
		%s;`,
		pgx.Identifier{schema, mainTable}.Sanitize(), columns, columns,
		pgx.Identifier{schema, stagingTable}.Sanitize(),
		strings.Join(assignments, ",\n\t\t"))
}

func (m *PostgresDBManager) CreateLoadRunsTable(ctx context.Context, schema string) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id SERIAL PRIMARY KEY,
		file_name VARCHAR(255) NOT NULL,
		checksum VARCHAR(64),
		status VARCHAR(50) NOT NULL CHECK (status IN ('PROCESSING', 'DONE', 'FAILED')),
		row_count BIGINT,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);`, pgx.Identifier{schema, "etl_load_runs"}.Sanitize())

	_, err := m.dbpool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("error creating etl_load_runs table: %w", err)
	}

	return nil
}

func (m *PostgresDBManager) InsertLoadRun(ctx context.Context, schema, fileName, checksum string) (int, error) {
	query := fmt.Sprintf(`
	INSERT INTO %s (file_name, checksum, status, started_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id;`, pgx.Identifier{schema, "etl_load_runs"}.Sanitize())

	var runID int
	err := m.dbpool.QueryRow(ctx, query, fileName, checksum, LOAD_STATUS_PROCESSING, time.Now()).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("error inserting load run: %w", err)
	}

	return runID, nil
}

func (m *PostgresDBManager) UpdateLoadRunStatus(ctx context.Context, schema string, runID int, status string, rowCount int64, errorMessage string) error {
	query := fmt.Sprintf(`
	UPDATE %s
	SET status = $1,
		row_count = $2,
		error = NULLIF($3, ''),
		finished_at = $4
	WHERE id = $5;`, pgx.Identifier{schema, "etl_load_runs"}.Sanitize())

	_, err := m.dbpool.Exec(ctx, query, status, rowCount, errorMessage, time.Now(), runID)
	if err != nil {
		return fmt.Errorf("error updating load run %d: %w", runID, err)
	}

	return nil
}
