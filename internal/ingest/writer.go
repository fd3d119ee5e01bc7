package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/kcbailey111/finance-agent/internal/dateutils"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// enrichedRow is the output CSV schema: the input columns plus everything
// the pipeline added. Multi-valued fields are joined into single cells.
type enrichedRow struct {
	ID                   string `csv:"ID"`
	Date                 string `csv:"Date"`
	Merchant             string `csv:"Merchant"`
	Description          string `csv:"Description"`
	Amount               string `csv:"Amount"`
	Source               string `csv:"Source"`
	Category             string `csv:"Category"`
	CategoryConfidence   string `csv:"CategoryConfidence"`
	CategorizationSource string `csv:"CategorizationSource"`
	IsAnomaly            bool   `csv:"IsAnomaly"`
	AnomalyScore         string `csv:"AnomalyScore"`
	AnomalyReasons       string `csv:"AnomalyReasons"`
	IsRecurring          bool   `csv:"IsRecurring"`
	RecurringGroup       string `csv:"RecurringGroup"`
	Tags                 string `csv:"Tags"`
}

// WriteEnrichedCSV writes enriched transactions to a CSV file. Rows whose
// amount or date failed to parse keep their original raw text, so the
// output never loses or rewrites input the pipeline could not understand.
func WriteEnrichedCSV(transactions []models.Transaction, path string, logger logging.Logger) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	logger.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
	).Info("Writing enriched transactions to CSV file")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := make([]enrichedRow, len(transactions))
	for i := range transactions {
		rows[i] = toEnrichedRow(&transactions[i])
	}

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	return nil
}

func toEnrichedRow(tx *models.Transaction) enrichedRow {
	row := enrichedRow{
		ID:                   tx.ID,
		Date:                 tx.RawDate,
		Merchant:             tx.Merchant,
		Description:          tx.Description,
		Amount:               tx.RawAmount,
		Source:               tx.Source,
		Category:             tx.Category,
		CategoryConfidence:   fmt.Sprintf("%.2f", tx.CategoryConfidence),
		CategorizationSource: string(tx.CategorizationSource),
		IsAnomaly:            tx.IsAnomaly,
		AnomalyScore:         fmt.Sprintf("%.2f", tx.AnomalyScore),
		AnomalyReasons:       strings.Join(tx.AnomalyReasons, "; "),
		IsRecurring:          tx.IsRecurring,
		RecurringGroup:       tx.RecurringGroup,
		Tags:                 strings.Join(tx.Tags, ","),
	}

	if tx.DateValid {
		row.Date = dateutils.ToISODate(tx.Date)
	}
	if tx.AmountValid {
		row.Amount = tx.Amount.StringFixed(2)
	}

	return row
}
