package telemetry

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	tel := NewScopedAPI("votacoes", NewScopedAPI("extractor", rec))

	tel.ReportBroken("window.fetch", "2019-02")
	tel.ReportProgress("[1/3] 2019-02-01..2019-02-28", "outcome", "ok")
	tel.ReportCount("sessions", 4)

	require.Equal(t, "extractor: votacoes: window.fetch", rec.Events("broken")[0].ID)
	require.Equal(t, []any{"2019-02"}, rec.Events("broken")[0].Params)
	require.True(t, rec.Contains("progress", "votacoes: [1/3]"))
	require.Equal(t, int64(4), rec.Events("count")[0].Count)
	require.Len(t, rec.Events(""), 3)
}

func TestSlogAPI(t *testing.T) {
	var buf bytes.Buffer
	tel := SlogAPI{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	tel.ReportWarning("flatten.each", "/senador/lista/atual", 2)
	tel.ReportProgress("deputy 204554", "outcome", "ok", "count", 12)
	tel.ReportDebug("hidden at info level")

	out := buf.String()
	require.Contains(t, out, "id=flatten.each")
	require.Contains(t, out, "params.0=/senador/lista/atual")
	require.Contains(t, out, "params.1=2")
	require.Contains(t, out, "count=12")
	require.NotContains(t, out, "hidden")
}

func TestInstrumentResty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[]`))
	}))

	rec := NewRecorder()
	client := resty.New().SetBaseURL(srv.URL)
	InstrumentResty(client, "legis", rec)

	_, err := client.R().Get("/ok")
	require.NoError(t, err)
	_, err = client.R().Get("/missing")
	require.NoError(t, err)
	require.Len(t, rec.Events("debug"), 4)
	require.Empty(t, rec.Events("broken"))

	srv.Close()
	_, err = client.R().Get("/ok")
	require.Error(t, err)
	require.True(t, rec.Contains("broken", report_resty_response))
}
