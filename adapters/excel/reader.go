package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gocausal/domain/core"
	"gocausal/domain/design"
)

// Column headers the reader understands. Rosters carry both potential
// outcomes; observed samples carry one outcome plus a treatment label.
const (
	columnID        = "id"
	columnY0        = "y0"
	columnY1        = "y1"
	columnOutcome   = "outcome"
	columnTreatment = "treatment"
)

// DataReader loads experiment tables from Excel and CSV files.
// Implements ports.DatasetReaderPort.
type DataReader struct{}

// NewDataReader creates a new data reader
func NewDataReader() *DataReader {
	return &DataReader{}
}

// ReadRoster loads a roster of units with both potential outcomes.
// Expected columns: id, y0, y1.
func (r *DataReader) ReadRoster(ctx context.Context, path string) (*design.Roster, error) {
	headers, rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	idCol, ok := columnIndex(headers, columnID)
	if !ok {
		return nil, fmt.Errorf("missing required column %q", columnID)
	}
	y0Col, ok := columnIndex(headers, columnY0)
	if !ok {
		return nil, fmt.Errorf("missing required column %q", columnY0)
	}
	y1Col, ok := columnIndex(headers, columnY1)
	if !ok {
		return nil, fmt.Errorf("missing required column %q", columnY1)
	}

	units := make([]design.Unit, 0, len(rows))
	for i, row := range rows {
		id, err := cellInt(row, idCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid unit id: %w", i+2, err)
		}
		y0, err := cellFloat(row, y0Col)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid y0: %w", i+2, err)
		}
		y1, err := cellFloat(row, y1Col)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid y1: %w", i+2, err)
		}
		units = append(units, design.Unit{ID: core.UnitID(id), Y0: y0, Y1: y1})
	}

	return design.NewRoster(units)
}

// ReadObservedSample loads an outcome/treatment table for real data.
// Expected columns: outcome, treatment.
func (r *DataReader) ReadObservedSample(ctx context.Context, path string) (*design.ObservedSample, error) {
	headers, rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	outcomeCol, ok := columnIndex(headers, columnOutcome)
	if !ok {
		return nil, fmt.Errorf("missing required column %q", columnOutcome)
	}
	treatmentCol, ok := columnIndex(headers, columnTreatment)
	if !ok {
		return nil, fmt.Errorf("missing required column %q", columnTreatment)
	}

	outcomes := make([]float64, 0, len(rows))
	treatment := make([]int, 0, len(rows))
	for i, row := range rows {
		y, err := cellFloat(row, outcomeCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid outcome: %w", i+2, err)
		}
		w, err := cellInt(row, treatmentCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid treatment: %w", i+2, err)
		}
		if w != 0 && w != 1 {
			return nil, fmt.Errorf("row %d: treatment must be 0 or 1, got %d", i+2, w)
		}
		outcomes = append(outcomes, y)
		treatment = append(treatment, w)
	}

	return &design.ObservedSample{Outcomes: outcomes, Treatment: treatment}, nil
}

// readRows reads the raw table from an Excel or CSV file and splits off the
// normalized header row
func readRows(path string) ([]string, [][]string, error) {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		fileType = "csv"
	}
	log.Printf("[DataReader] Reading %s file: %s", fileType, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(fileType), path)
	}

	var rows [][]string
	var err error
	if fileType == "csv" {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(fileType))
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}
	return headers, rows[1:], nil
}

// readExcelRows reads Sheet1 of an Excel workbook
func readExcelRows(path string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	log.Printf("[DataReader] Excel file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads a CSV file
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func columnIndex(headers []string, name string) (int, bool) {
	for i, h := range headers {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

func cellFloat(row []string, idx int) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("missing cell")
	}
	return strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
}

func cellInt(row []string, idx int) (int, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("missing cell")
	}
	return strconv.Atoi(strings.TrimSpace(row[idx]))
}
