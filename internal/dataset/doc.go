// Package dataset loads the child nutrition survey extract and keeps it as an
// immutable table for the lifetime of the process.
//
// The CSV is read with gota, every column as text. Rows whose Growth_status is
// not one of the four recognized categories are dropped at load time. Numeric
// columns are parsed on demand; empty or malformed cells become NaN and are
// skipped by the numeric aggregations downstream.
//
// A Dataset is never modified in place. WithRenamed and WithMotherBMI return a
// new Dataset, so the reconciled table can be frozen and shared by concurrent
// requests without locking.
package dataset
