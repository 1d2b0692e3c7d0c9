package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/quantfeeds/candlekeeper/src/models"
	"github.com/quantfeeds/candlekeeper/src/store"
)

// IngestionService parses raw webhook rows and appends them to the
// store. Rows are 7 delimited fields, one per line, no header:
// SYMBOL,TIME,OPEN,HIGH,LOW,CLOSE,VOLUME.
type IngestionService struct {
	store *store.CandleStore

	// atomic switches the webhook to all-or-nothing batches. The default
	// (false) reproduces the reference behavior: rows before the first
	// malformed row stay applied even though the request fails.
	atomic bool
}

func NewIngestionService(candleStore *store.CandleStore, atomic bool) *IngestionService {
	return &IngestionService{
		store:  candleStore,
		atomic: atomic,
	}
}

type parsedRow struct {
	symbol string
	candle models.Candle
}

// IngestRows processes the webhook body row by row, in order, and
// returns the number of candles applied. Empty input (after trimming)
// is a success with no effect. Processing stops at the first malformed
// row: wrong field count fails with ErrInvalidFormat, an unparseable
// numeric field with ErrParse.
func (s *IngestionService) IngestRows(body string) (int, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return 0, nil
	}

	// Row shape is validated explicitly per row, so the reader must not
	// enforce a uniform field count itself.
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	applied := 0
	var staged []parsedRow

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return applied, fmt.Errorf("IngestRows: %w: %v", models.ErrParse, err)
		}

		row, err := parseRow(record)
		if err != nil {
			if s.atomic {
				return 0, err
			}

			return applied, err
		}

		if s.atomic {
			staged = append(staged, row)
			continue
		}

		s.store.AppendOne(row.symbol, row.candle)
		applied++
	}

	for _, row := range staged {
		s.store.AppendOne(row.symbol, row.candle)
		applied++
	}

	return applied, nil
}

func parseRow(record []string) (parsedRow, error) {
	if len(record) != 7 {
		return parsedRow{}, fmt.Errorf("IngestRows: %w: expected 7 fields, got %d", models.ErrInvalidFormat, len(record))
	}

	prices := make([]float64, 5)
	for i, field := range record[2:] {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return parsedRow{}, fmt.Errorf("IngestRows: %w: field %q: %v", models.ErrParse, field, err)
		}
		prices[i] = value
	}

	// The timestamp is stored as received; no relational check between
	// prices is performed (a row with high < low is accepted as-is).
	return parsedRow{
		symbol: record[0],
		candle: models.Candle{
			Time:   strings.TrimSpace(record[1]),
			Open:   prices[0],
			High:   prices[1],
			Low:    prices[2],
			Close:  prices[3],
			Volume: prices[4],
		},
	}, nil
}
