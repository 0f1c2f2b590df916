package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/exporter"
)

const levelsYAML = `datasets:
  - name: A
    records:
      - {id: a1, value: "1000.0", uncertainty: "0.5"}
      - {id: a2, value: "2000.0", uncertainty: "1.0"}
  - name: B
    records:
      - {id: b1, value: "2000.6", uncertainty: "0.8"}
      - {id: b2, value: "1000.4", uncertainty: "0.3"}
  - name: C
    records:
      - {id: c1, value: "1000.2", uncertainty: "0.4"}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NUCLEVAL_CONFIG", "")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "parse", "123.45", "12", "--output", "json")
		require.NoError(t, err)

		var resp struct {
			Quantity map[string]any    `json:"quantity"`
			Rendered map[string]string `json:"rendered"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "exact", resp.Quantity["kind"])
		assert.Equal(t, "123.45", resp.Rendered["value"])
		assert.Equal(t, "12", resp.Rendered["uncertainty"])
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "", "parse", "5", "LT")
		require.NoError(t, err)
		assert.Contains(t, out, "upper_limit")
		assert.Contains(t, out, "5 LT")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := run(t, "", "parse", "abc", "1")
		assert.ErrorIs(t, err, apperrors.ErrParse)
	})

	t.Run("too many args", func(t *testing.T) {
		_, err := run(t, "", "parse", "1", "2", "3")
		assert.Error(t, err)
	})
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"merged", []string{"--value", "10", "--upper", "1.2", "--lower", "0.8"}, "10.0 12"},
		{"asymmetric", []string{"--value", "10", "--upper", "1.2", "--lower", "0.8", "--error-limit", "3"}, "10.0 +12-8"},
		{"one-sided", []string{"--value", "5", "--upper", "0.3", "--asymmetric"}, "5.0 +3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append([]string{"format"}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	t.Run("value required", func(t *testing.T) {
		_, err := run(t, "", "format", "--upper", "1")
		assert.Error(t, err)
	})
}

func TestEvaluateCommand(t *testing.T) {
	input := writeInput(t, "levels.yaml", levelsYAML)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "", "evaluate", "--input", input)
		require.NoError(t, err)
		assert.Contains(t, out, "2 groups")
		assert.Contains(t, out, "A;B;C")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "evaluate", "--input", input, "--output", "json", "--method", "weighted")
		require.NoError(t, err)

		var rep map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.Equal(t, "weighted", rep["method"])
		assert.Len(t, rep["groups"], 2)
	})

	t.Run("csv stdout", func(t *testing.T) {
		out, err := run(t, "", "evaluate", "--input", input, "--output", "csv")
		require.NoError(t, err)
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, exporter.GroupHeaders(), rows[0])
	})

	t.Run("xlsx file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.xlsx")
		_, err := run(t, "", "evaluate", "--input", input, "--output", "xlsx", "--out", path)
		require.NoError(t, err)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(exporter.SheetPoints)
		require.NoError(t, err)
		assert.Len(t, rows, 6)
	})

	t.Run("xlsx needs out", func(t *testing.T) {
		_, err := run(t, "", "evaluate", "--input", input, "--output", "xlsx")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := run(t, levelsYAML, "evaluate", "--input", "-", "--output", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"groups"`)
	})

	t.Run("json input", func(t *testing.T) {
		doc := `{"datasets":[{"name":"A","records":[{"value":"10.0","uncertainty":"5"}]}],"error_limit":35}`
		out, err := run(t, "", "evaluate", "--input", writeInput(t, "one.json", doc), "--output", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"error_limit": 35`)
	})

	t.Run("dataset directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("id,value,uncertainty\na1,100.0,5\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("id,value,uncertainty\nb1,100.3,4\n"), 0o644))

		out, err := run(t, "", "evaluate", "--input", dir, "--output", "csv")
		require.NoError(t, err)
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "a;b", rows[1][2])
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := run(t, "", "evaluate", "--input", input, "--method", "nope")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "evaluate", "--input", filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestConfigFlag(t *testing.T) {
	cfgPath := writeInput(t, "nucleval.yaml", "evaluation:\n  method: bogus\n")
	_, err := run(t, "", "--config", cfgPath, "parse", "1", "1")
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}
