package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"congressdata/internal/components/chrono"

	"github.com/stretchr/testify/require"
)

var testNow = chrono.Date(2025, time.March, 20).Add(10 * time.Hour)

type harness struct {
	config string
	output string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, baseURL string) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		config: filepath.Join(dir, "extract.json5"),
		output: filepath.Join(dir, "raw"),
	}
	source := fmt.Sprintf(`{base_url: %q, delay_ms: 0}`, baseURL)
	contents := fmt.Sprintf(`{
		output_dir: %q,
		timeout_seconds: 5,
		legis: %s,
		adm: %s,
		camara: %s,
		cgu: %s,
	}`, h.output, source, source, source, source)
	require.NoError(t, os.WriteFile(h.config, []byte(contents), 0644))
	return h
}

func (h *harness) execute(argv ...string) int {
	argv = append([]string{"--config", h.config}, argv...)
	return Execute(context.Background(), argv, Streams{Stdout: &h.stdout, Stderr: &h.stderr}, chrono.FixedTime{At: testNow})
}

func TestListPrintsRegistry(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	require.Equal(t, exitOK, h.execute("--list"))

	for _, name := range []string{"senators", "votacoes", "camara_despesas", "emendas"} {
		require.Contains(t, h.stdout.String(), name)
	}
	require.Contains(t, h.stdout.String(), "camara_deputados_lista")
	require.Contains(t, h.stdout.String(), "--start-date --end-date")
}

func TestListTouchesNothing(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	require.Equal(t, exitOK, h.execute("--list", "--start-date", "not-a-date"), h.stderr.String())
	require.Contains(t, h.stdout.String(), "senators")
	require.NoDirExists(t, h.output)

	require.NoError(t, os.WriteFile(h.config, []byte(`{output_dir: `), 0644))
	require.Equal(t, exitOK, h.execute("--list"))
}

func TestUsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		argv []string
		text string
	}{
		{name: "unknown extractor", argv: []string{"--only", "senators,bogus"}, text: "valid:"},
		{name: "bad date", argv: []string{"--start-date", "01/02/2019"}, text: "--start-date"},
		{name: "inverted years", argv: []string{"--start-year", "2024", "--end-year", "2020"}, text: "after"},
		{name: "unknown flag", argv: []string{"--since", "2020"}, text: "unknown flag"},
		{name: "positional", argv: []string{"senators"}, text: "unknown command"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t, "http://127.0.0.1:1")
			require.Equal(t, exitUsage, h.execute(test.argv...))
			require.Contains(t, h.stderr.String(), test.text)
		})
	}
}

func TestBrokenConfigIsUsageError(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	require.NoError(t, os.WriteFile(h.config, []byte(`{output_dir: `), 0644))
	require.Equal(t, exitUsage, h.execute())
	require.NoDirExists(t, h.output)
}

func TestRunSurvivesFailingExtractor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/composicao/lideranca.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, `[
			{"codigo": 10, "casa": "SF", "codigoParlamentar": 5529, "nomeParlamentar": "Fulana", "siglaTipoLideranca": "L"},
			{"codigo": 11, "casa": "SF", "codigoParlamentar": 22, "nomeParlamentar": "Beltrano", "siglaTipoLideranca": "V"}
		]`)
	})
	mux.HandleFunc("/api/v1/senadores/auxilio-moradia", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newHarness(t, srv.URL)
	code := h.execute("--only", "auxilio_moradia,liderancas")
	require.Equal(t, exitOK, code, h.stderr.String())

	require.FileExists(t, filepath.Join(h.output, "liderancas.parquet"))
	require.NoFileExists(t, filepath.Join(h.output, "auxilio_moradia.parquet"))

	out := h.stdout.String()
	require.Contains(t, out, "succeeded")
	require.Contains(t, out, "failed")
	require.Contains(t, out, "auxilio_moradia")
	require.Contains(t, h.stderr.String(), "502")
	require.Contains(t, h.stderr.String(), "run_id")
}

func TestConfigDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.json5"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), config)

	p := config.profiles()
	require.Equal(t, 60*time.Second, p.legis.Timeout)
	require.Equal(t, 300*time.Second, p.cgu.Timeout)
	require.Equal(t, 150*time.Millisecond, p.legis.Delay)
	require.Equal(t, 100, p.camara.PageSize)
	require.Equal(t, 500, p.camara.MaxPages)
}

func TestConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		camara: {base_url: "http://localhost:9000", delay_ms: 0, page_size: 50, legislatures: [57]},
		cgu: {delay_ms: 2500},
	}`), 0644))

	config, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []int{57}, config.Camara.Legislatures)
	require.Equal(t, "data/raw", config.OutputDir)

	p := config.profiles()
	require.Equal(t, "http://localhost:9000", p.camara.BaseURL)
	require.Zero(t, p.camara.Delay)
	require.Equal(t, 50, p.camara.PageSize)
	require.Equal(t, 500, p.camara.MaxPages)
	require.Equal(t, 2500*time.Millisecond, p.cgu.Delay)
	require.Equal(t, "https://adm.senado.gov.br/adm-dadosabertos", p.adm.BaseURL)
}
