package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("parse_sources", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("parse_sources", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.AddParsedFiles("hack", 12)
	pr.IncParseFailure("hsl")
	pr.AddDropped("hack", "ecosystem", 3)
	pr.AddEmittedDocuments("hack", 9)
	pr.SetParseConcurrency(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["apidocbuilder_parsed_files_total"])
	assert.True(t, names["apidocbuilder_filtered_definitions_total"])
	assert.True(t, names["apidocbuilder_build_outcomes_total"])
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.AddParsedFiles("hack", 1)
		pr.IncBuildOutcome(BuildOutcomeFailed)
	})
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).AddEmittedDocuments("hsl", 2)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `apidocbuilder_emitted_documents_total{product="hsl"} 2`)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).AddParsedFiles("hack", 5)

	path := filepath.Join(t.TempDir(), "apidocs.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `apidocbuilder_parsed_files_total{product="hack"} 5`)
}
