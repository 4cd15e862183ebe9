package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ============================================================================
// INGESTION — CSV Upload → Normalized Records
// ============================================================================
// Contract: given raw CSV bytes, produce either a clean record collection or
// a descriptive failure. The pipeline is strict about values and lenient
// about shape:
//
//   1. Decode charset, detect delimiter, read the header row
//   2. Match headers against the alias table (product + price required)
//   3. Coerce price/quantity; drop and count rows that fail
//   4. Parse dates; unparseable dates become absent rather than fatal
//   5. Fail only when nothing valid remains
//
// Rows failing coercion are excluded, never fabricated.
// ============================================================================

// Failure taxonomy. All are recovered at the ingestion boundary and surfaced
// to the caller as structured messages; none are fatal to the process.
var (
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrUnparseableFile       = errors.New("file is not parseable as CSV")
	ErrMissingRequiredColumn = errors.New("missing required column")
	ErrEmptyDataset          = errors.New("no valid rows after cleaning")
)

// Record is one cleaned sales transaction. Price and Quantity are
// non-negative by construction. A zero Date means the date was absent or
// unparseable; an empty Region means the column was missing or blank.
type Record struct {
	Product  string    `json:"product"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	Date     time.Time `json:"date,omitempty"`
	Region   string    `json:"region,omitempty"`
}

// HasDate reports whether the record carries a calendar date.
func (r Record) HasDate() bool { return !r.Date.IsZero() }

// Revenue is price times quantity.
func (r Record) Revenue() float64 { return r.Price * r.Quantity }

// Result is a successful ingestion: the clean collection plus the row
// accounting the UI shows back to the user.
type Result struct {
	Records   []Record `json:"-"`
	Columns   []string `json:"columns"`   // matched canonical fields, in order
	TotalRows int      `json:"totalRows"` // data rows in the upload
	Dropped   int      `json:"dropped"`   // rows excluded by coercion failures
}

// Parse ingests raw upload bytes into normalized records.
// filename is used only for the extension check; pass "" to skip it.
func Parse(data []byte, filename string) (*Result, error) {
	if filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext != ".csv" {
			return nil, fmt.Errorf("%w: %q (only .csv is accepted)", ErrUnsupportedFileType, ext)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: upload is empty", ErrUnparseableFile)
	}

	content := decodeUpload(data)
	delim := detectDelimiter(content)

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delim
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableFile, err)
	}

	columns := MatchColumns(headers)
	if missing := missingRequired(columns); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, fmt.Errorf("%w: no header matched %s", ErrMissingRequiredColumn, strings.Join(names, ", "))
	}

	result := &Result{}
	for _, f := range columns.Fields() {
		result.Columns = append(result.Columns, string(f))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: count and move on.
			result.TotalRows++
			result.Dropped++
			continue
		}
		result.TotalRows++

		rec, ok := normalizeRow(row, columns)
		if !ok {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w (of %d rows, %d dropped)", ErrEmptyDataset, result.TotalRows, result.Dropped)
	}

	logrus.WithFields(logrus.Fields{
		"rows":    result.TotalRows,
		"valid":   len(result.Records),
		"dropped": result.Dropped,
		"columns": result.Columns,
	}).Info("ingest: upload normalized")

	return result, nil
}

// normalizeRow coerces one CSV row into a Record. ok=false means the row is
// excluded (missing product, unparseable or negative price/quantity).
func normalizeRow(row []string, columns ColumnMap) (Record, bool) {
	cell := func(f Field) string {
		idx, ok := columns[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := Record{Product: cell(FieldProduct)}
	if rec.Product == "" {
		return Record{}, false
	}

	price, ok := parseNumber(cell(FieldPrice))
	if !ok || price < 0 {
		return Record{}, false
	}
	rec.Price = price

	// Quantity defaults to 1 when the column is absent; an unparseable or
	// negative value in a present column drops the row.
	if columns.Has(FieldQuantity) {
		qty, ok := parseNumber(cell(FieldQuantity))
		if !ok || qty < 0 {
			return Record{}, false
		}
		rec.Quantity = qty
	} else {
		rec.Quantity = 1
	}

	if columns.Has(FieldDate) {
		if d, ok := parseDate(cell(FieldDate)); ok {
			rec.Date = d
		}
	}
	rec.Region = cell(FieldRegion)

	return rec, true
}
