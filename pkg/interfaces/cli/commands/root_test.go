package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplanner/pkg/application/services/mrp"
	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/interfaces/cli/output"
)

func executeRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, output.FormatText, cfg.Format)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, mrp.CatalogQuantities, cfg.QuantitySource)
	assert.False(t, cfg.LettersOnly)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("BOMPLANNER_MRP_QUANTITY_SOURCE", "node")
	t.Setenv("BOMPLANNER_OUTPUT_FORMAT", "json")
	t.Setenv("BOMPLANNER_INPUT_LETTERS_ONLY", "true")

	cfg, err := LoadConfig(newViper())
	require.NoError(t, err)

	assert.Equal(t, mrp.NodeQuantities, cfg.QuantitySource)
	assert.Equal(t, output.FormatJSON, cfg.Format)
	assert.True(t, cfg.LettersOnly)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Run("quantity source", func(t *testing.T) {
		v := newViper()
		v.Set(keyQuantitySource, "average")
		_, err := LoadConfig(v)
		assert.Error(t, err)
	})

	t.Run("format", func(t *testing.T) {
		v := newViper()
		v.Set(keyOutputFormat, "xml")
		_, err := LoadConfig(v)
		assert.Error(t, err)
	})
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomplanner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\nmrp:\n  quantity_source: node\n"), 0o644))

	v := newViper()
	require.NoError(t, readConfigFile(v, path))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, output.FormatCSV, cfg.Format)
	assert.Equal(t, mrp.NodeQuantities, cfg.QuantitySource)

	assert.Error(t, readConfigFile(newViper(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestRootCommandMRP(t *testing.T) {
	path := writeSteps(t, "name,parent,quantity\nA,,1\nX,A,2\nX,A,5\n")

	got, err := executeRoot(t, "", "mrp", "--steps", path, "--format", "csv", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "material,quantity\nA,1\nX,10\n", got)

	got, err = executeRoot(t, "", "mrp", "--steps", path, "--format", "csv", "--quantity-source", "node", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "material,quantity\nA,1\nX,7\n", got)
}

func TestRootCommandErrors(t *testing.T) {
	_, err := executeRoot(t, "", "mrp")
	assert.Error(t, err, "--steps is required")

	path := writeSteps(t, "name,parent,quantity\nA,,1\n")
	_, err = executeRoot(t, "", "mrp", "--steps", path, "--format", "yaml")
	assert.Error(t, err)
}

func TestRootCommandSession(t *testing.T) {
	got, err := executeRoot(t, "add A 1\nadd B 3 A\nmrp\n", "session", "--format", "csv", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, got, "material,quantity\nA,1\nB,3\n")
}

func TestNewServerExposesRuntimeMetrics(t *testing.T) {
	cfg := testConfig()
	srv := newServer(newApp(cfg, events.NopNotifier{}))
	assert.Equal(t, cfg.ServerAddr, srv.Addr)

	body := `{"name":"Bike","quantity":"1"}`
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/nodes", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), "bomplanner_nodes 1")
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.ServerAddr = "127.0.0.1:0"
	assert.NoError(t, Serve(ctx, cfg))
}
