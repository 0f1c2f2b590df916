package exporter

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/evaluation"
)

// Workbook sheet names
const (
	SheetGroups = "Groups"
	SheetPoints = "Points"
)

// ExportWorkbook writes the report as an XLSX workbook to filePath
func (e *ReportExporter) ExportWorkbook(rep *evaluation.Report, filePath string) error {
	fullPath := e.csv.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}

	f, err := buildWorkbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(fullPath); err != nil {
		return apperrors.NewExportError("failed to save workbook", err).WithContext("path", fullPath)
	}
	slog.Debug("workbook written", slog.String("path", fullPath), slog.Int("groups", len(rep.Groups)))
	return nil
}

// WriteWorkbook writes the report as an XLSX workbook to out
func WriteWorkbook(out io.Writer, rep *evaluation.Report) error {
	f, err := buildWorkbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return apperrors.NewExportError("failed to write workbook", err)
	}
	return nil
}

func buildWorkbook(rep *evaluation.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetGroups); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to name sheet", err)
	}
	if _, err := f.NewSheet(SheetPoints); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to add sheet", err)
	}

	if err := writeSheet(f, SheetGroups, GroupHeaders(), GroupRows(rep)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, SheetPoints, PointHeaders(), PointRows(rep)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	all := append([][]string{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.NewExportError("failed to address cell", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return apperrors.NewExportError("failed to write row", err).WithContext("sheet", sheet)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewExportError("failed to create style", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return apperrors.NewExportError("failed to address cell", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return apperrors.NewExportError("failed to style header", err)
	}
	return nil
}
