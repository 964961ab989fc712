package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nydiamedina/consumer-complaints-etl/internal/models"
)

// ColumnMapping renames the dataset's source headers to the column names of
// the consumer_complaints table. Headers not present here are dropped.
var ColumnMapping = map[string]string{
	"Date received":                "date_received",
	"Product":                      "product",
	"Sub-product":                  "sub_product",
	"Issue":                        "issue",
	"Sub-issue":                    "sub_issue",
	"Consumer complaint narrative": "consumer_complaint_narrative",
	"Company public response":      "company_public_response",
	"Company":                      "company",
	"State":                        "state",
	"ZIP code":                     "zip_code",
	"Tags":                         "tags",
	"Consumer consent provided?":   "consumer_consent_provided",
	"Submitted via":                "submitted_via",
	"Date sent to company":         "date_sent_to_company",
	"Company response to consumer": "company_response_to_consumer",
	"Timely response?":             "timely_response",
	"Consumer disputed?":           "consumer_disputed",
	"Complaint ID":                 "complaint_id",
}

var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// BatchReader yields complaints from a CSV file in bounded batches, in file
// order. The sequence is finite and not restartable; re-reading requires
// opening a new reader.
type BatchReader struct {
	file      *os.File
	reader    *csv.Reader
	fields    map[string]int
	batchSize int
}

// Open opens the CSV file, reads its header row and binds the known source
// columns to their renamed counterparts.
func Open(filePath string, batchSize int) (*BatchReader, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read header from %s: %w", filePath, err)
	}

	fields := make(map[string]int)
	for i, sourceHeader := range header {
		if target, ok := ColumnMapping[strings.TrimSpace(sourceHeader)]; ok {
			fields[target] = i
		}
	}

	if _, ok := fields["complaint_id"]; !ok {
		file.Close()
		return nil, fmt.Errorf("file %s is missing the \"Complaint ID\" column", filePath)
	}

	return &BatchReader{
		file:      file,
		reader:    reader,
		fields:    fields,
		batchSize: batchSize,
	}, nil
}

// Next returns the next batch of at most batchSize complaints, or io.EOF once
// the file is exhausted.
func (r *BatchReader) Next() ([]*models.Complaint, error) {
	batch := make([]*models.Complaint, 0, r.batchSize)

	for len(batch) < r.batchSize {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record from CSV: %w", err)
		}

		complaint, err := r.parseRecord(record)
		if err != nil {
			return nil, err
		}
		batch = append(batch, complaint)
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}

	return batch, nil
}

func (r *BatchReader) Close() error {
	return r.file.Close()
}

func (r *BatchReader) field(record []string, column string) string {
	idx, ok := r.fields[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func (r *BatchReader) parseRecord(record []string) (*models.Complaint, error) {
	idStr := r.field(record, "complaint_id")
	complaintID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse complaint id %q: %w", idStr, err)
	}

	dateReceived, err := parseDate(r.field(record, "date_received"))
	if err != nil {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, err)
	}

	dateSent, err := parseDate(r.field(record, "date_sent_to_company"))
	if err != nil {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, err)
	}

	return &models.Complaint{
		DateReceived:               dateReceived,
		Product:                    textOrNil(r.field(record, "product")),
		SubProduct:                 textOrNil(r.field(record, "sub_product")),
		Issue:                      textOrNil(r.field(record, "issue")),
		SubIssue:                   textOrNil(r.field(record, "sub_issue")),
		ConsumerComplaintNarrative: textOrNil(r.field(record, "consumer_complaint_narrative")),
		CompanyPublicResponse:      textOrNil(r.field(record, "company_public_response")),
		Company:                    textOrNil(r.field(record, "company")),
		State:                      textOrNil(r.field(record, "state")),
		ZipCode:                    textOrNil(r.field(record, "zip_code")),
		Tags:                       textOrNil(r.field(record, "tags")),
		ConsumerConsentProvided:    textOrNil(r.field(record, "consumer_consent_provided")),
		SubmittedVia:               textOrNil(r.field(record, "submitted_via")),
		DateSentToCompany:          dateSent,
		CompanyResponseToConsumer:  textOrNil(r.field(record, "company_response_to_consumer")),
		TimelyResponse:             parseYesNo(r.field(record, "timely_response")),
		ConsumerDisputed:           textOrNil(r.field(record, "consumer_disputed")),
		ComplaintID:                complaintID,
	}, nil
}

// parseYesNo maps the literal values "Yes" and "No" to booleans. Any other
// value, including empty, is NULL.
func parseYesNo(value string) *bool {
	switch value {
	case "Yes":
		yes := true
		return &yes
	case "No":
		no := false
		return &no
	default:
		return nil
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return &date, nil
		}
	}

	return nil, fmt.Errorf("failed to parse date %q", value)
}

func textOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
