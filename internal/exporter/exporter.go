package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// Table is the data being exported
type Table interface {
	// Table returns the header followed by every row
	Table() [][]string
	// WriteCSV writes the header and rows as CSV
	WriteCSV(w io.Writer) error
}

// SheetName names the XLSX worksheet
const SheetName = "malnutrition_data"

// Exporter writes tables in a download format
type Exporter struct {
	logger *slog.Logger
}

// New creates an Exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write writes t to w in format f
func (e *Exporter) Write(ctx context.Context, w io.Writer, f Format, t Table) error {
	start := time.Now()

	var err error
	switch f {
	case FormatCSV:
		err = t.WriteCSV(w)
	case FormatXLSX:
		err = WriteXLSX(w, t.Table())
	default:
		err = fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(f)),
			slog.String("error", err.Error()))
		return err
	}

	e.logger.InfoContext(ctx, "export written",
		slog.String("format", string(f)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// WriteXLSX streams rows into a single-sheet workbook. The first row is the
// header and is set in bold.
func WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row))
		if i == 0 {
			for j, v := range row {
				values[j] = v
			}
			if err := sw.SetRow(cell, values, excelize.RowOpts{StyleID: bold}); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			continue
		}

		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}
