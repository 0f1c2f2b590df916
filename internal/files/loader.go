package files

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"nucleval/internal/dataset"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/evaluation"
)

// Loader reads evaluation requests from files and directories
type Loader struct {
	discovery *Discovery
	logger    *slog.Logger
}

// NewLoader creates a loader resolving relative paths against basePath
func NewLoader(basePath string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		discovery: NewDiscovery(basePath),
		logger:    logger.With(slog.String("component", "files")),
	}
}

// LoadRequest loads a request document, a single CSV dataset, or a
// directory of dataset files.
func (l *Loader) LoadRequest(path string) (evaluation.Request, error) {
	fullPath := l.discovery.resolvePath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return evaluation.Request{}, fmt.Errorf("failed to stat input %s: %w", fullPath, err)
	}
	if info.IsDir() {
		return l.loadDirectory(fullPath)
	}

	format := FormatOf(fullPath)
	if format == "" {
		return evaluation.Request{}, apperrors.NewValidationError("unsupported input file "+fullPath, nil).
			WithContext("supported", []string{".yaml", ".yml", ".json", ".csv"})
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return evaluation.Request{}, fmt.Errorf("failed to read input %s: %w", fullPath, err)
	}

	if format == FormatCSV {
		ds, err := decodeCSVDataset(bytes.NewReader(data))
		if err != nil {
			return evaluation.Request{}, err
		}
		ds.Name = FileInfo{Name: info.Name()}.Stem()
		return evaluation.Request{Datasets: []evaluation.Dataset{ds}}, nil
	}
	return decodeRequest(data, format)
}

// DecodeRequest reads a request document in the given format, YAML or JSON
func DecodeRequest(r io.Reader, format string) (evaluation.Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return evaluation.Request{}, fmt.Errorf("failed to read request: %w", err)
	}
	return decodeRequest(data, format)
}

func decodeRequest(data []byte, format string) (evaluation.Request, error) {
	var req evaluation.Request
	if err := unmarshal(data, format, &req); err != nil {
		return req, apperrors.NewValidationError("failed to decode "+format+" request", err)
	}
	return req, nil
}

func (l *Loader) loadDirectory(dir string) (evaluation.Request, error) {
	found, err := l.discovery.FindDatasetFiles(dir)
	if err != nil {
		return evaluation.Request{}, err
	}
	if len(found) == 0 {
		return evaluation.Request{}, apperrors.NewValidationError("no dataset files in "+dir, nil)
	}

	req := evaluation.Request{Datasets: make([]evaluation.Dataset, 0, len(found))}
	for _, f := range found {
		ds, err := readDataset(f)
		if err != nil {
			return evaluation.Request{}, fmt.Errorf("%s: %w", f.Name, err)
		}
		req.Datasets = append(req.Datasets, ds)
		l.logger.Debug("dataset loaded",
			slog.String("file", f.Path),
			slog.String("dataset", ds.Name),
			slog.Int("records", len(ds.Records)))
	}
	return req, nil
}

// readDataset reads one dataset file. The name defaults to the file stem.
func readDataset(f FileInfo) (evaluation.Dataset, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return evaluation.Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds evaluation.Dataset
	if f.Format == FormatCSV {
		ds, err = decodeCSVDataset(bytes.NewReader(data))
		if err != nil {
			return evaluation.Dataset{}, err
		}
	} else if err := unmarshal(data, f.Format, &ds); err != nil {
		return evaluation.Dataset{}, apperrors.NewValidationError("failed to decode dataset", err)
	}
	if ds.Name == "" {
		ds.Name = f.Stem()
	}
	return ds, nil
}

func unmarshal(data []byte, format string, v any) error {
	if format == FormatJSON {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// decodeCSVDataset reads records from a CSV file with a header row
func decodeCSVDataset(r io.Reader) (evaluation.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return evaluation.Dataset{}, apperrors.NewValidationError("empty CSV dataset", nil)
	}
	if err != nil {
		return evaluation.Dataset{}, apperrors.NewValidationError("malformed CSV header", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["value"]; !ok {
		return evaluation.Dataset{}, apperrors.NewValidationError("CSV dataset has no value column", nil)
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var ds evaluation.Dataset
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return evaluation.Dataset{}, apperrors.NewValidationError(fmt.Sprintf("malformed CSV line %d", line), err)
		}

		rec := dataset.Record{
			ID:          field(row, "id"),
			Value:       field(row, "value"),
			Uncertainty: field(row, "uncertainty"),
			Provenance:  field(row, "provenance"),
		}
		if k := field(row, "key"); k != "" {
			key, err := strconv.ParseFloat(k, 64)
			if err != nil {
				return evaluation.Dataset{}, apperrors.NewValidationError(fmt.Sprintf("invalid key on CSV line %d", line), err)
			}
			rec.Key = &key
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(line - 1)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}
