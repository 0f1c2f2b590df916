package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/evaluation"
	"nucleval/internal/exporter"
	"nucleval/internal/files"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
	outputXLSX  = "xlsx"
)

func newEvaluateCmd() *cobra.Command {
	var flags struct {
		input      string
		output     string
		out        string
		method     string
		errorLimit int
		tolerance  float64
	}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Align datasets and average every aligned group",
		Long: `evaluate reads a request document (YAML or JSON) listing datasets of
records, aligns the records across datasets and averages each group.
The input may also be a directory holding one dataset per file (YAML,
JSON or CSV), named after the file. Use --input - to read a document
from stdin.`,
		Example: `  nucleval evaluate --input levels.yaml
  nucleval evaluate --input levels.json --output xlsx --out report.xlsx
  nucleval evaluate --input levels.yaml --method lwm --error-limit 35`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := cliLogger(cmd, cfg)
			req, err := readRequest(cmd, flags.input, logger)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("method") {
				req.Method = flags.method
			}
			if cmd.Flags().Changed("error-limit") {
				req.ErrorLimit = &flags.errorLimit
			}
			if cmd.Flags().Changed("tolerance") {
				req.Tolerance = &flags.tolerance
			}

			svc := evaluation.NewService(cfg.Evaluation, evaluation.WithLogger(logger))
			rep, err := svc.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeReport(cmd, flags.output, flags.out, rep)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "request document, dataset directory or - for stdin (required)")
	f.StringVarP(&flags.output, "output", "o", outputTable, "output format: table, json, csv or xlsx")
	f.StringVar(&flags.out, "out", "", "write the report to this file instead of stdout")
	f.StringVarP(&flags.method, "method", "m", "", "averaging method, overrides the document")
	f.IntVar(&flags.errorLimit, "error-limit", 0, "error limit percentage, overrides the document")
	f.Float64Var(&flags.tolerance, "tolerance", 0, "alignment tolerance, overrides the document")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// readRequest loads the request from a file, a directory of dataset files
// or, for "-", a YAML or JSON document on stdin.
func readRequest(cmd *cobra.Command, path string, logger *slog.Logger) (evaluation.Request, error) {
	if path == "-" {
		return files.DecodeRequest(cmd.InOrStdin(), files.FormatYAML)
	}
	return files.NewLoader("", logger).LoadRequest(path)
}

func writeReport(cmd *cobra.Command, output, path string, rep *evaluation.Report) error {
	if path != "" {
		return exportReport(output, path, rep)
	}

	out := cmd.OutOrStdout()
	switch output {
	case outputTable:
		renderReport(out, rep)
		return nil
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case outputCSV:
		return exporter.WriteCSV(out, rep)
	case outputXLSX:
		return apperrors.NewValidationError("xlsx output needs --out", nil)
	default:
		return unsupportedOutput(output, outputTable, outputJSON, outputCSV, outputXLSX)
	}
}

func exportReport(output, path string, rep *evaluation.Report) error {
	e := exporter.NewReportExporter("")
	switch output {
	case outputCSV:
		return e.ExportCSV(rep, path)
	case outputXLSX:
		return e.ExportWorkbook(rep, path)
	case outputJSON:
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return apperrors.NewExportError("failed to write "+path, err)
		}
		return nil
	default:
		return unsupportedOutput(output, outputJSON, outputCSV, outputXLSX)
	}
}

// renderReport prints the group table followed by alignment notes
func renderReport(w io.Writer, rep *evaluation.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headers := exporter.GroupHeaders()
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, r := range exporter.GroupRows(rep) {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	t.Render()

	fmt.Fprintf(w, "%d groups, %d alignment iterations, %s\n", len(rep.Groups), rep.Iterations, rep.TerminationReason)

	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, p := range rep.Unaligned {
		fmt.Fprintf(w, "unaligned: %s %s\n", p.Dataset, p.ID)
	}
}

func unsupportedOutput(output string, supported ...string) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("unsupported output %q (use %s)", output, strings.Join(supported, ", ")), nil)
}
