package session

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const datasetSheet = "Extracted Data"

// ExportDataset writes the current dataset to the given path. The
// extension picks the format: .csv or .xlsx.
func (s *Session) ExportDataset(path string) error {
	if s.data == nil || s.data.Len() == 0 {
		return &ValidationError{Message: msgNoDatasetToExport}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return s.exportCSV(path)
	case ".xlsx":
		return s.exportXLSX(path)
	default:
		return &ValidationError{Message: msgUnknownExportFormat}
	}
}

func (s *Session) exportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.data.Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(s.data.Records()); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *Session) exportXLSX(path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(datasetSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, column := range s.data.Columns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(datasetSheet, cell, column); err != nil {
			return err
		}
	}
	for r, record := range s.data.Records() {
		for c, value := range record {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(datasetSheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
