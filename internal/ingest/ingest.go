// Package ingest loads transaction CSV exports into the pipeline's record
// type. Rows with unparseable amounts or dates are loaded with their
// validity flags cleared rather than dropped, so nothing silently vanishes
// between input and output.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/kcbailey111/finance-agent/internal/dateutils"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// Delimiter is the CSV delimiter used for reading and writing.
var Delimiter rune = ','

// SetDelimiter configures the CSV delimiter.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// csvRow maps the input CSV columns. Category is optional; exports that
// carry a pre-assigned category keep it through ingestion.
type csvRow struct {
	Date        string `csv:"Date"`
	Merchant    string `csv:"Merchant"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
}

// Loader reads transaction CSV files.
type Loader struct {
	logger logging.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger logging.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile reads a single CSV file into transactions. The file's base name
// without extension becomes each transaction's Source.
func (l *Loader) LoadFile(path string) ([]models.Transaction, error) {
	l.logger.WithField(logging.FieldInputFile, path).Info("Reading CSV file")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = Delimiter
	reader.LazyQuotes = true

	var rows []csvRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	source := fileStem(path)
	transactions := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, l.fromRow(row, source))
	}

	l.logger.WithFields(
		logging.Field{Key: logging.FieldInputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
	).Info("Successfully read CSV data")
	return transactions, nil
}

// LoadDir aggregates every *.csv file in a directory, in name order, into a
// single batch. Each transaction's Source names the file it came from.
// Files that fail to parse are skipped with a warning so one bad export
// does not sink the rest.
func (l *Loader) LoadDir(dir string) ([]models.Transaction, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("error listing CSV files: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	sort.Strings(matches)

	var all []models.Transaction
	for _, path := range matches {
		transactions, err := l.LoadFile(path)
		if err != nil {
			l.logger.WithError(err).WithField(logging.FieldInputFile, path).
				Warn("Skipping unreadable CSV file")
			continue
		}
		all = append(all, transactions...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no transactions loaded from %s", dir)
	}
	return all, nil
}

// fromRow converts one CSV row into a transaction. Raw text is always
// preserved; parse failures clear the matching validity flag instead of
// failing the row.
func (l *Loader) fromRow(row csvRow, source string) models.Transaction {
	tx := models.Transaction{
		ID:          uuid.NewString(),
		Merchant:    strings.TrimSpace(row.Merchant),
		Description: strings.TrimSpace(row.Description),
		RawAmount:   row.Amount,
		RawDate:     row.Date,
		Source:      source,
		Category:    strings.TrimSpace(row.Category),
	}

	if amount, ok := models.ParseAmount(row.Amount); ok {
		tx.Amount = amount
		tx.AmountValid = true
	} else {
		l.logger.WithFields(
			logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
			logging.Field{Key: "amount", Value: row.Amount},
		).Warn("Unparseable amount, row excluded from statistics")
	}

	if date, err := dateutils.ParseDate(row.Date); err == nil {
		tx.Date = date
		tx.DateValid = true
	} else {
		l.logger.WithFields(
			logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
			logging.Field{Key: "date", Value: row.Date},
		).Warn("Unparseable date, row excluded from clustering")
	}

	return tx
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
