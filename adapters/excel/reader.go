// Package excel reads uploaded sensor exports (CSV, gzipped CSV, XLSX) into
// raw tables with dataframe-style column typing.
package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airsense/adapters/datareadiness/coercer"
	"airsense/domain/datareadiness/ingestion"
	apperrors "airsense/internal/errors"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

// FileType is the detected input format
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeCSVGz FileType = "csv.gz"
	FileTypeXLSX  FileType = "xlsx"
)

// DetectFileType maps a file name to a format
func DetectFileType(name string) (FileType, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv.gz"), strings.HasSuffix(lower, ".gz"):
		return FileTypeCSVGz, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return FileTypeXLSX, nil
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"), filepath.Ext(lower) == "":
		return FileTypeCSV, nil
	}
	return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
}

// NewDataReader creates a reader; an unset comment rune disables comments.
func NewDataReader(config ReaderConfig) *DataReader {
	return &DataReader{config: config, coercer: coercer.NewTypeCoercer(config.CoercionConfig)}
}

// ReadFile opens and reads a file from disk
func (r *DataReader) ReadFile(path string) (*ingestion.RawTable, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file not found: %s", path))
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()
	return r.Read(file, filepath.Base(path))
}

// Read parses content whose format is taken from name
func (r *DataReader) Read(in io.Reader, name string) (*ingestion.RawTable, error) {
	fileType, err := DetectFileType(name)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	log.Printf("[DataReader] Starting to read %s file: %s", fileType, name)

	start := time.Now()
	var rows [][]string
	switch fileType {
	case FileTypeCSV:
		rows, err = r.readCSVRows(in)
	case FileTypeCSVGz:
		rows, err = r.readGzipRows(in)
	case FileTypeXLSX:
		rows, err = r.readExcelRows(in)
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", name, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	table, err := r.buildTable(rows, name)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s processed (%d columns, %d rows)", name, len(table.Columns), table.RowCount())
	return table, nil
}

// readCSVRows reads every record; ragged records are allowed and squared off later.
func (r *DataReader) readCSVRows(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.Comment = r.config.Comment
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readGzipRows(in io.Reader) ([][]string, error) {
	gz, err := gzip.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()
	return r.readCSVRows(gz)
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows(in io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// buildTable takes the first row as header and types each column as a unit.
func (r *DataReader) buildTable(rows [][]string, source string) (*ingestion.RawTable, error) {
	if len(rows) == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s has no header row", source))
	}

	headerRow := rows[0]
	if len(headerRow) > 0 {
		headerRow[0] = strings.TrimPrefix(headerRow[0], "\ufeff")
	}
	headers := columnNames(headerRow)

	raw := make([][]string, len(headers))
	skippedHeaders, truncated := 0, 0
	for _, row := range rows[1:] {
		if isHeaderRepeat(row, headerRow) {
			skippedHeaders++
			continue
		}
		if len(row) > len(headers) {
			truncated++
		}
		for j := range headers {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			raw[j] = append(raw[j], cell)
		}
	}
	if skippedHeaders > 0 {
		log.Printf("[DataReader] %s: skipped %d repeated header rows", source, skippedHeaders)
	}
	if truncated > 0 {
		log.Printf("[DataReader] %s: %d rows had more fields than the header; extras ignored", source, truncated)
	}

	table := &ingestion.RawTable{Source: source, Columns: make([]ingestion.Column, len(headers))}
	for j, name := range headers {
		table.Columns[j] = ingestion.Column{Name: name, Cells: r.coercer.ColumnCells(raw[j])}
	}
	return table, nil
}

// columnNames trims header cells, names blank ones "Unnamed: i" and
// suffixes duplicates ".1", ".2", like dataframe readers do.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

// isHeaderRepeat spots the header line that multi-table exports repeat
// before each table.
func isHeaderRepeat(row, header []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i := range row {
		if strings.TrimSpace(row[i]) != strings.TrimSpace(header[i]) {
			return false
		}
	}
	return true
}

// ReadBytes is a convenience for in-memory uploads
func (r *DataReader) ReadBytes(data []byte, name string) (*ingestion.RawTable, error) {
	return r.Read(bytes.NewReader(data), name)
}
