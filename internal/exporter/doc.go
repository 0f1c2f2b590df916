// Package exporter writes evaluation reports to CSV and XLSX files.
//
// CSVWriter is the low level writer with header and UTF-8 BOM support and a
// streaming mode. ReportExporter turns an evaluation.Report into rows: one
// row per group, and one row per data point for the detailed views.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("/path/to/out")
//	err := exp.ExportCSV(report, "groups.csv")
//	err = exp.ExportWorkbook(report, "evaluation.xlsx")
package exporter
