package exporter

import (
	"io"

	"nucleval/internal/averaging"
	"nucleval/internal/dataset"
	"nucleval/internal/evaluation"
)

// Point statuses in the detailed rows
const (
	PointIncluded = "included"
	PointAdjusted = "adjusted"
	PointExcluded = "excluded"
)

// ReportExporter writes evaluation reports
type ReportExporter struct {
	csv *CSVWriter
}

// NewReportExporter creates an exporter writing below baseDir
func NewReportExporter(baseDir string) *ReportExporter {
	return &ReportExporter{csv: NewCSVWriter(baseDir)}
}

// GroupHeaders returns the column names of the group rows
func GroupHeaders() []string {
	return []string{
		"Group", "Reference", "Datasets", "Status", "Value", "Uncertainty", "Method",
		"ChiSquare", "ReducedChiSquare", "CriticalChiSquare", "Consistent", "Included", "Excluded",
	}
}

// PointHeaders returns the column names of the point rows
func PointHeaders() []string {
	return []string{"Group", "Dataset", "ID", "Value", "Uncertainty", "Provenance", "Status", "Reason"}
}

// GroupRows returns one row per group in report order
func GroupRows(rep *evaluation.Report) [][]string {
	rows := make([][]string, 0, len(rep.Groups))
	for _, g := range rep.Groups {
		r := g.Result
		if r == nil {
			r = &averaging.Result{}
		}
		rows = append(rows, []string{
			formatInt(g.Index + 1),
			formatFloat(g.Reference),
			joinNames(g.Datasets),
			string(r.Status),
			r.Rendered.Value,
			r.Rendered.Uncertainty,
			r.MethodUsed,
			formatFloat(r.ChiSquare),
			formatFloat(r.ReducedChiSquare),
			formatFloat(r.CriticalChiSquare),
			formatBool(r.Consistent),
			formatInt(len(r.Included)),
			formatInt(len(r.Excluded)),
		})
	}
	return rows
}

// PointRows returns one row per data point, grouped, with the part the
// point played in its group's average.
func PointRows(rep *evaluation.Report) [][]string {
	var rows [][]string
	for _, g := range rep.Groups {
		status := pointStatuses(g.Result)
		for _, p := range g.Points {
			st, ok := status[pointKey(p)]
			if !ok {
				st = pointStatus{status: PointExcluded}
			}
			rows = append(rows, []string{
				formatInt(g.Index + 1),
				p.Dataset,
				p.ID,
				p.Quantity.DisplayValue(),
				p.Quantity.DisplayUncertainty(),
				p.Provenance,
				st.status,
				st.reason,
			})
		}
	}
	return rows
}

type pointStatus struct {
	status string
	reason string
}

func pointKey(p dataset.DataPoint) string {
	return p.Dataset + "\x00" + p.ID + "\x00" + p.Quantity.String()
}

func pointStatuses(r *averaging.Result) map[string]pointStatus {
	out := make(map[string]pointStatus)
	if r == nil {
		return out
	}
	for _, p := range r.Included {
		out[pointKey(p)] = pointStatus{status: PointIncluded}
	}
	for _, a := range r.Adjustments {
		out[pointKey(a.Point)] = pointStatus{status: PointAdjusted, reason: a.Kind}
	}
	for _, e := range r.Excluded {
		out[pointKey(e.Point)] = pointStatus{status: PointExcluded, reason: e.Reason}
	}
	return out
}

// ExportCSV writes the group rows to filePath
func (e *ReportExporter) ExportCSV(rep *evaluation.Report, filePath string) error {
	return e.csv.WriteCSV(filePath, WriteOptions{
		Headers:   GroupHeaders(),
		Records:   GroupRows(rep),
		BOMPrefix: true,
	})
}

// ExportPointsCSV writes the point rows to filePath
func (e *ReportExporter) ExportPointsCSV(rep *evaluation.Report, filePath string) error {
	return e.csv.WriteCSV(filePath, WriteOptions{
		Headers:   PointHeaders(),
		Records:   PointRows(rep),
		BOMPrefix: true,
	})
}

// WriteCSV writes the group rows to out without a BOM
func WriteCSV(out io.Writer, rep *evaluation.Report) error {
	return WriteTo(out, WriteOptions{Headers: GroupHeaders(), Records: GroupRows(rep)})
}
