// Package exporter writes the reconciled survey table for download.
//
// Two formats are supported:
//
// CSV: the table exactly as loaded, original column order, Mother_BMI last
// when it was computed. Written by the dataset's own gota frame.
//
// XLSX: the same rows in a single worksheet, written with the excelize stream
// writer. Cells that parse as numbers are stored as numbers.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//	    return err
//	}
//	err = exp.Write(ctx, w, format, ds)
package exporter
