package s0_data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

var ErrMissingColumn = errors.New("required column missing")

// RawTable CSV 원본 (헤더는 snake_case로 정규화)
type RawTable struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// StandardizeColumn "Order Date " → "order_date"
func StandardizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// ReadCSV reads a CSV with a header row and standardizes the column names.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file has no header", contracts.ErrEmptyInput)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &RawTable{Header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		t.Header[i] = StandardizeColumn(h)
		t.index[t.Header[i]] = i
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadCSVFile opens path and calls ReadCSV.
func ReadCSVFile(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// Has reports whether a column exists.
func (t *RawTable) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell of row for col ("" when absent).
func (t *RawTable) Value(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
}

// ParseDate tries the supported layouts; zero time when none matches.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseNumber strips "$" and "," before parsing; NaN when invalid.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.NewReplacer(",", "", "$", "").Replace(s))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var cleanedHeader = []string{
	"order_id", "product_id", "order_date", "ship_date",
	"sales", "quantity", "profit", "shipping_cost",
}

// WriteCSV writes records in the cleaned-file layout.
func WriteCSV(w io.Writer, records []contracts.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cleanedHeader); err != nil {
		return err
	}

	num := func(v float64) string {
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	date := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(contracts.DateLayout)
	}

	for _, r := range records {
		row := []string{
			r.OrderID, r.ProductID, date(r.OrderDate), date(r.ShipDate),
			num(r.Sales), num(r.Quantity), num(r.Profit), num(r.ShippingCost),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating its directory.
func WriteCSVFile(path string, records []contracts.SalesRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CSVSource CSV 파일 기반 RecordSource
type CSVSource struct {
	path    string
	cleaner *Cleaner
	raw     bool // parse only, skip cleaning rules
}

// NewCSVSource creates a source that parses and cleans path on every read.
func NewCSVSource(path string, cleaner *Cleaner) *CSVSource {
	return &CSVSource{path: path, cleaner: cleaner}
}

// NewRawCSVSource parses path without applying the cleaning rules, for
// quality reports on the original data.
func NewRawCSVSource(path string, cleaner *Cleaner) *CSVSource {
	return &CSVSource{path: path, cleaner: cleaner, raw: true}
}

// Records implements RecordSource.
func (s *CSVSource) Records(ctx context.Context) ([]contracts.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := ReadCSVFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	parsed, err := s.cleaner.Parse(table)
	if err != nil {
		return nil, err
	}
	if s.raw {
		return parsed, nil
	}
	cleaned, _ := s.cleaner.Clean(parsed)
	return cleaned, nil
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	if s.raw {
		return "csv-raw:" + s.path
	}
	return "csv:" + s.path
}
