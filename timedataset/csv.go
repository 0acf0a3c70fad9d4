package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingColumn = errors.New("csv header is missing a required column")
	ErrInvalidDate   = errors.New("unable to parse date")
	ErrInvalidValue  = errors.New("unable to parse temperature value")
	ErrNoHeader      = errors.New("csv has no header row")
)

// CSVOptions names the columns and formats of a temperature export
type CSVOptions struct {
	DateColumn    string
	ValueColumn   string
	CountryColumn string
	DateFormats   []string
	Delimiter     rune
}

// DefaultCSVOptions matches the GlobalLandTemperaturesByCountry layout
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:    "dt",
		ValueColumn:   "AverageTemperature",
		CountryColumn: "Country",
		DateFormats:   []string{"2006-01-02", "2006-01", "2006-01-02T15:04:05Z07:00", "01/02/2006"},
		Delimiter:     ',',
	}
}

// LoadCSVFile opens filename and loads it with LoadCSV
func LoadCSVFile(filename string, opt *CSVOptions) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset file, %w", err)
	}
	defer f.Close()

	return LoadCSV(f, opt)
}

// LoadCSV reads every row into an Observation. Empty or NA temperature cells
// become NaN so the selector can drop them.
func LoadCSV(r io.Reader, opt *CSVOptions) (*Dataset, error) {
	if opt == nil {
		opt = DefaultCSVOptions()
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}

	dateIdx, valueIdx, countryIdx := -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case opt.DateColumn:
			dateIdx = i
		case opt.ValueColumn:
			valueIdx = i
		case opt.CountryColumn:
			countryIdx = i
		}
	}
	for name, idx := range map[string]int{
		opt.DateColumn:    dateIdx,
		opt.ValueColumn:   valueIdx,
		opt.CountryColumn: countryIdx,
	} {
		if idx < 0 {
			return nil, fmt.Errorf("%q, %w", name, ErrMissingColumn)
		}
	}
	maxIdx := max(dateIdx, valueIdx, countryIdx)

	var obs []Observation
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("unable to read csv line %d, %w", line, err)
		}
		if len(record) <= maxIdx {
			return nil, fmt.Errorf("line %d has %d fields, %w", line, len(record), ErrMissingColumn)
		}

		date, err := parseDate(strings.TrimSpace(record[dateIdx]), opt.DateFormats)
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}
		val, err := parseValue(strings.TrimSpace(record[valueIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}
		obs = append(obs, Observation{
			Country: strings.TrimSpace(record[countryIdx]),
			Date:    date,
			Value:   val,
		})
	}
	return NewDataset(obs), nil
}

func parseDate(s string, formats []string) (time.Time, error) {
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

func parseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q, %w", s, ErrInvalidValue)
	}
	return v, nil
}
