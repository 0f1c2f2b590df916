package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/shared/testutil"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"levels.yaml", FormatYAML},
		{"levels.YML", FormatYAML},
		{"levels.json", FormatJSON},
		{"a.csv", FormatCSV},
		{"notes.txt", ""},
		{"noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.name))
		})
	}
}

func TestFindDatasetFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.csv", "value\n1\n")
	write(t, dir, "a.yaml", "records: []\n")
	write(t, dir, "c.json", "{}")
	write(t, dir, "readme.txt", "ignored")
	write(t, dir, ".hidden.yaml", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	found, err := NewDiscovery("").FindDatasetFiles(dir)
	require.NoError(t, err)

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"a.yaml", "b.csv", "c.json"}, names)
	assert.Equal(t, FormatCSV, found[1].Format)
	assert.Equal(t, "b", found[1].Stem())

	t.Run("relative to base", func(t *testing.T) {
		found, err := NewDiscovery(filepath.Dir(dir)).FindDatasetFiles(filepath.Base(dir))
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewDiscovery("").FindDatasetFiles(filepath.Join(dir, "absent"))
		assert.Error(t, err)
	})
}

func TestLoadRequest_Document(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := write(t, dir, "req.yaml", `method: lwm
error_limit: 35
datasets:
  - name: A
    records:
      - {id: a1, key: 100, value: "100.0", uncertainty: "5"}
`)
	jsonDoc := write(t, dir, "req.json", `{"tolerance": 0.5, "datasets": [{"name": "B", "records": [{"value": "LT 3"}]}]}`)

	loader := NewLoader("", nil)

	req, err := loader.LoadRequest(yamlDoc)
	require.NoError(t, err)
	assert.Equal(t, "lwm", req.Method)
	require.NotNil(t, req.ErrorLimit)
	assert.Equal(t, 35, *req.ErrorLimit)
	require.Len(t, req.Datasets, 1)
	require.Len(t, req.Datasets[0].Records, 1)
	rec := req.Datasets[0].Records[0]
	assert.Equal(t, "a1", rec.ID)
	require.NotNil(t, rec.Key)
	assert.Equal(t, 100.0, *rec.Key)

	req, err = loader.LoadRequest(jsonDoc)
	require.NoError(t, err)
	require.NotNil(t, req.Tolerance)
	assert.Equal(t, 0.5, *req.Tolerance)
	assert.Equal(t, "B", req.Datasets[0].Name)
	assert.Equal(t, "LT 3", req.Datasets[0].Records[0].Value)
}

func TestLoadRequest_Directory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "alpha.csv", "\ufeffID,Key,Value,Uncertainty,Provenance\na1,100,100.0,5,2005AB12\n,200,LT 200,,\n")
	write(t, dir, "beta.yaml", "records:\n  - {id: b1, value: \"100.3\", uncertainty: \"4\"}\n")
	write(t, dir, "gamma.json", `{"name": "Gamma 2011", "records": [{"id": "g1", "value": "99.8", "uncertainty": "3"}]}`)

	logs, logger := testutil.NewLogRecorder(t)
	req, err := NewLoader("", logger).LoadRequest(dir)
	require.NoError(t, err)
	require.Len(t, req.Datasets, 3)
	assert.Len(t, logs.AtLevel(slog.LevelDebug), 3)
	loaded, ok := logs.Find("dataset loaded")
	require.True(t, ok)
	assert.Equal(t, "files", loaded.Attrs["component"])
	assert.Equal(t, "alpha", loaded.Attrs["dataset"])

	alpha := req.Datasets[0]
	assert.Equal(t, "alpha", alpha.Name)
	require.Len(t, alpha.Records, 2)
	assert.Equal(t, "a1", alpha.Records[0].ID)
	assert.Equal(t, "2005AB12", alpha.Records[0].Provenance)
	assert.Equal(t, "2", alpha.Records[1].ID)
	assert.Equal(t, "LT 200", alpha.Records[1].Value)
	require.NotNil(t, alpha.Records[1].Key)
	assert.Equal(t, 200.0, *alpha.Records[1].Key)

	assert.Equal(t, "beta", req.Datasets[1].Name)
	assert.Equal(t, "Gamma 2011", req.Datasets[2].Name)
}

func TestLoadRequest_SingleCSV(t *testing.T) {
	path := write(t, t.TempDir(), "ground.csv", "value,uncertainty\n10.0,5\n")

	req, err := NewLoader("", nil).LoadRequest(path)
	require.NoError(t, err)
	require.Len(t, req.Datasets, 1)
	assert.Equal(t, "ground", req.Datasets[0].Name)
	assert.Equal(t, "1", req.Datasets[0].Records[0].ID)
}

func TestLoadRequest_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing", filepath.Join(dir, "absent.yaml"), nil},
		{"unsupported extension", write(t, dir, "notes.txt", "x"), apperrors.ErrValidation},
		{"malformed yaml", write(t, dir, "bad.yaml", "datasets: [\n"), apperrors.ErrValidation},
		{"malformed json", write(t, dir, "bad.json", "{"), apperrors.ErrValidation},
		{"csv without value column", write(t, dir, "novalue.csv", "id,key\n1,2\n"), apperrors.ErrValidation},
		{"csv bad key", write(t, dir, "badkey.csv", "key,value\nabc,1\n"), apperrors.ErrValidation},
		{"empty csv", write(t, dir, "empty.csv", ""), apperrors.ErrValidation},
		{"empty directory", empty, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader("", nil).LoadRequest(tt.path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader("datasets:\n  - name: A\n    records:\n      - {value: \"1.0\", uncertainty: \"1\"}\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, req.Datasets, 1)
	assert.Equal(t, "A", req.Datasets[0].Name)

	_, err = DecodeRequest(strings.NewReader("not json"), FormatJSON)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
