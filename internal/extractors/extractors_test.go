package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"congressdata/internal/components/chrono"
	"congressdata/internal/components/telemetry"
	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
	"congressdata/internal/table"
	"congressdata/internal/upstream"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type fixture struct {
	env   Env
	tel   *telemetry.Recorder
	store *table.Store

	mu   sync.Mutex
	hits map[string]int
}

// newFixture points every upstream family at one fake server.
func newFixture(t *testing.T, mux *http.ServeMux, now time.Time) *fixture {
	t.Helper()

	f := &fixture{hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	f.tel = telemetry.NewRecorder()
	store, err := table.Open(t.TempDir(), f.tel)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	f.store = store

	client := func(p upstream.Profile) *upstream.Client {
		p.BaseURL = srv.URL
		p.Delay = 0
		return upstream.NewClient(p, f.tel)
	}
	f.env = Env{
		Legis:  client(upstream.LegisProfile()),
		Adm:    client(upstream.AdmProfile()),
		Camara: client(upstream.CamaraProfile()),
		CGU:    client(upstream.CGUProfile()),
		Store:  store,
		Clock:  chrono.FixedTime{At: now},
		Tel:    f.tel,
	}
	return f
}

func (f *fixture) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fixture) count(t *testing.T, name string) int {
	t.Helper()
	n, err := f.store.Count(context.Background(), name)
	require.NoError(t, err)
	return n
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, body)
	}
}

func failing(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "upstream down", http.StatusInternalServerError)
}

func TestRegistry(t *testing.T) {
	f := newFixture(t, http.NewServeMux(), chrono.Date(2025, time.June, 1))

	defs := Registry(f.env)
	orchestrator, err := pipeline.NewOrchestrator(defs, f.store, f.tel)
	require.NoError(t, err)
	require.Equal(t, []string{
		"senators", "votacoes", "comissoes", "liderancas", "processos", "ceaps", "servidores",
		"auxilio_moradia", "camara_deputados", "camara_despesas", "camara_proposicoes",
		"camara_votacoes", "emendas",
	}, orchestrator.Names())

	tags := map[string][]pipeline.ArgTag{}
	for _, d := range defs {
		tags[d.Name] = d.Args
	}
	require.Equal(t, dateRange, tags["votacoes"])
	require.Equal(t, yearRange, tags["servidores"])
	require.Empty(t, tags["senators"])
	require.Equal(t, []pipeline.ArgTag{pipeline.TagEndYear}, tags["emendas"])

	catalog := Catalog()
	require.Len(t, catalog, len(defs))
	for i, d := range catalog {
		require.Equal(t, defs[i].Name, d.Name)
		require.Equal(t, defs[i].Requires, d.Requires)
		require.Nil(t, d.Run)
	}
}

func TestVotacoesWindows(t *testing.T) {
	mux := http.NewServeMux()
	var windows []string
	mux.HandleFunc("/votacao", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		windows = append(windows, q.Get("dataInicio")+".."+q.Get("dataFim"))
		if q.Get("dataInicio") == "2019-03-01" {
			failing(w, r)
			return
		}
		jsonHandler(`[
			{"codigoSessaoVotacao": 101, "dataSessao": "2019-02-12", "votos": [
				{"codigoParlamentar": 5012, "siglaVotoParlamentar": "Sim"},
				{"codigoParlamentar": 5529, "siglaVotoParlamentar": "Não"}
			]},
			{"codigoSessaoVotacao": 102, "dataSessao": "2019-02-20", "votos":
				{"codigoParlamentar": 5012, "siglaVotoParlamentar": "Sim"}
			},
			{"dataSessao": "2019-02-21"}
		]`)(w, r)
	})
	f := newFixture(t, mux, chrono.Date(2019, time.March, 15))

	rows, err := New(f.env).Votacoes(context.Background(), pipeline.Args{
		StartDate: chrono.Date(2019, time.February, 10),
		EndDate:   chrono.Date(2019, time.December, 31),
	})
	require.NoError(t, err, "a failed window never fails the extractor")
	require.Equal(t, []string{"2019-02-01..2019-02-28", "2019-03-01..2019-03-15"}, windows)
	require.Equal(t, 5, rows)
	require.Equal(t, 2, f.count(t, "votacoes"))
	require.Equal(t, 3, f.count(t, "votos"))
	require.True(t, f.tel.Contains("warning", "extractor.flatten"), "the keyless session is reported, not silently skipped")

	progress := f.tel.Events("progress")
	require.Len(t, progress, 2)
	require.Contains(t, progress[0].ID, "2019-02-01..2019-02-28")
	require.Contains(t, progress[0].Params, "ok")
	require.Contains(t, progress[1].ID, "2019-03-01..2019-03-15")
	require.Contains(t, progress[1].Params, "error")
}

// senatorsMux serves three senators; broken fails the detail of one senator and
// brokenMandatos fails the mandates of another.
func senatorsMux(broken, brokenMandatos string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/senador/lista/atual.json", jsonHandler(`{"ListaParlamentarEmExercicio": {"Parlamentares": {"Parlamentar": [
		{"IdentificacaoParlamentar": {"CodigoParlamentar": "5012"}},
		{"IdentificacaoParlamentar": {"CodigoParlamentar": "5529"}},
		{"IdentificacaoParlamentar": {"CodigoParlamentar": "6009"}}
	]}}}`))
	for _, code := range []string{"5012", "5529", "6009"} {
		if code == broken {
			mux.HandleFunc("/senador/"+code+".json", failing)
			continue
		}
		mux.HandleFunc("/senador/"+code+".json", jsonHandler(fmt.Sprintf(
			`{"DetalheParlamentar": {"Parlamentar": {"IdentificacaoParlamentar": {"CodigoParlamentar": "%s", "NomeParlamentar": "Senator %s"}}}}`,
			code, code,
		)))
		if code == brokenMandatos {
			mux.HandleFunc("/senador/"+code+"/mandatos.json", failing)
		} else {
			// a single mandate arrives as an object, not a one element array
			mux.HandleFunc("/senador/"+code+"/mandatos.json", jsonHandler(fmt.Sprintf(
				`{"MandatoParlamentar": {"Parlamentar": {"Mandatos": {"Mandato": {"CodigoMandato": "%s1", "UfParlamentar": "SP"}}}}}`,
				code,
			)))
		}
		mux.HandleFunc("/senador/"+code+"/comissoes.json", jsonHandler(`{"MembroComissaoParlamentar": {"Parlamentar": {"MembroComissoes": {"Comissao": [
			{"IdentificacaoComissao": {"CodigoComissao": 38, "SiglaComissao": "CAE"}, "DataInicio": "2019-02-01"},
			{"IdentificacaoComissao": {"CodigoComissao": 40, "SiglaComissao": "CCJ"}, "DataInicio": "2021-03-10"}
		]}}}}`))
	}
	mux.HandleFunc("/comissao/lista/colegiados.json", jsonHandler(`{"ListaColegiados": {"Colegiados": {"Colegiado": [
		{"Codigo": "38", "Sigla": "CAE", "Publica": "S"},
		{"Codigo": "40", "Sigla": "CCJ", "Publica": "S"}
	]}}}`))
	mux.HandleFunc("/comissao/lista/mistas.json", failing)
	return mux
}

func TestSenatorsThenComissoes(t *testing.T) {
	f := newFixture(t, senatorsMux("5529", ""), chrono.Date(2025, time.June, 1))
	e := New(f.env)

	_, err := e.Senators(context.Background(), pipeline.Args{})
	require.NoError(t, err)
	require.Equal(t, 2, f.count(t, "senadores"))
	require.Equal(t, 2, f.count(t, "mandatos"))
	require.Zero(t, f.hitCount("/senador/5529/mandatos.json"))

	_, err = e.Comissoes(context.Background(), pipeline.Args{})
	require.NoError(t, err)
	require.Equal(t, 2, f.count(t, "comissoes"))
	require.Equal(t, 4, f.count(t, "membros_comissao"))

	// memberships follow the senadores table, the broken senator was never written
	require.Equal(t, 1, f.hitCount("/senador/lista/atual.json"))
	require.Zero(t, f.hitCount("/senador/5529/comissoes.json"))
	require.Equal(t, 1, f.hitCount("/senador/6009/comissoes.json"))
}

func TestSenatorsWritesNothingForFailedMandates(t *testing.T) {
	f := newFixture(t, senatorsMux("", "6009"), chrono.Date(2025, time.June, 1))

	_, err := New(f.env).Senators(context.Background(), pipeline.Args{})
	require.NoError(t, err)
	require.Equal(t, 1, f.hitCount("/senador/6009.json"))
	require.Equal(t, 2, f.count(t, "senadores"), "a senator whose mandates failed is not written")
	require.Equal(t, 2, f.count(t, "mandatos"))

	ids, err := f.store.DistinctStrings(context.Background(), "senadores", "senador_id")
	require.NoError(t, err)
	require.Equal(t, []string{"5012", "5529"}, ids)
}

func TestCamaraVotacoesReportsKeylessSessions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/votacoes", jsonHandler(`{"dados": [{"id": "2265-1", "data": "2024-01-31"}, {"data": "2024-01-31"}], "links": []}`))
	mux.HandleFunc("/votacoes/2265-1/votos", jsonHandler(`{"dados": [{"tipoVoto": "Sim", "deputado_": {"id": 204554}}]}`))
	f := newFixture(t, mux, chrono.Date(2024, time.February, 10))

	_, err := New(f.env).CamaraVotacoes(context.Background(), pipeline.Args{
		StartDate: chrono.Date(2024, time.January, 1),
		EndDate:   chrono.Date(2024, time.January, 31),
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.count(t, "camara_votacoes"))
	require.True(t, f.tel.Contains("warning", "extractor.flatten"))
	require.Empty(t, f.tel.Events("broken"))
}

func TestComissoesFallsBackToSenatorList(t *testing.T) {
	f := newFixture(t, senatorsMux("", ""), chrono.Date(2025, time.June, 1))

	_, err := New(f.env).Comissoes(context.Background(), pipeline.Args{})
	require.NoError(t, err)
	require.Equal(t, 1, f.hitCount("/senador/lista/atual.json"))
	require.Equal(t, 6, f.count(t, "membros_comissao"))
}

func camaraMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/deputados", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("idLegislatura") {
		case "56":
			jsonHandler(`{"dados": [{"id": 204554, "nome": "A", "idLegislatura": 56}], "links": []}`)(w, r)
		default:
			jsonHandler(`{"dados": [
				{"id": 204554, "nome": "A", "idLegislatura": 57},
				{"id": 220593, "nome": "B", "idLegislatura": 57}
			], "links": []}`)(w, r)
		}
	})
	for _, id := range []string{"204554", "220593"} {
		mux.HandleFunc("/deputados/"+id, jsonHandler(fmt.Sprintf(
			`{"dados": {"id": %s, "nomeCivil": "Deputy %s", "ultimoStatus": {"siglaPartido": "PT"}}, "links": []}`,
			id, id,
		)))
		mux.HandleFunc("/deputados/"+id+"/despesas", func(w http.ResponseWriter, r *http.Request) {
			ano := r.URL.Query().Get("ano")
			jsonHandler(fmt.Sprintf(`{"dados": [
				{"codDocumento": %s1, "ano": %s, "mes": 3, "valorLiquido": 120.5},
				{"codDocumento": %s2, "ano": %s, "mes": 4, "valorLiquido": 80}
			], "links": []}`, ano, ano, ano, ano))(w, r)
		})
	}
	return mux
}

func TestCamaraDependentExtractors(t *testing.T) {
	f := newFixture(t, camaraMux(), chrono.Date(2024, time.June, 1))
	orchestrator, err := pipeline.NewOrchestrator(Registry(f.env), f.store, f.tel)
	require.NoError(t, err)

	args := pipeline.Args{StartYear: 2023, EndYear: 2024}

	selected, err := orchestrator.Select([]string{"camara_despesas"})
	require.NoError(t, err)
	report := orchestrator.Run(context.Background(), selected, args)
	require.ErrorIs(t, report.Outcomes[0].Err, pipeline.ErrMissingDependency)

	selected, err = orchestrator.Select([]string{"camara_deputados", "camara_despesas"})
	require.NoError(t, err)
	report = orchestrator.Run(context.Background(), selected, args)
	require.Empty(t, report.Failed())

	require.Equal(t, 3, f.count(t, "camara_deputados_lista"))
	require.Equal(t, 2, f.count(t, "camara_deputados"))
	require.Equal(t, 1, f.hitCount("/deputados/204554"), "detail is fetched once per distinct deputy")
	// 2 deputies x 2 years x 2 documents
	require.Equal(t, 8, f.count(t, "camara_despesas"))
	require.Equal(t, 2, f.hitCount("/deputados/220593/despesas"))
}

func TestCamaraVotacoesFetchesSessionsOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/votacoes", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("itens") != "100" {
			http.Error(w, "missing page size", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("dataInicio") == "2024-01-01" {
			jsonHandler(`{"dados": [{"id": "2265-1", "data": "2024-01-31"}], "links": []}`)(w, r)
			return
		}
		jsonHandler(`{"dados": [{"id": "2265-1", "data": "2024-01-31"}, {"id": "2270-3", "data": "2024-02-06"}], "links": []}`)(w, r)
	})
	for _, id := range []string{"2265-1", "2270-3"} {
		mux.HandleFunc("/votacoes/"+id+"/votos", jsonHandler(`{"dados": [
			{"tipoVoto": "Sim", "deputado_": {"id": 204554, "siglaPartido": "PT"}},
			{"tipoVoto": "Não", "deputado_": {"id": 220593, "siglaPartido": "PL"}}
		]}`))
	}
	f := newFixture(t, mux, chrono.Date(2024, time.February, 10))

	_, err := New(f.env).CamaraVotacoes(context.Background(), pipeline.Args{
		StartDate: chrono.Date(2024, time.January, 15),
		EndDate:   chrono.Date(2024, time.March, 31),
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.hitCount("/votacoes"))
	require.Equal(t, 1, f.hitCount("/votacoes/2265-1/votos"))
	require.Equal(t, 1, f.hitCount("/votacoes/2270-3/votos"))
	require.Equal(t, 2, f.count(t, "camara_votacoes"))
	require.Equal(t, 4, f.count(t, "camara_votos"))
}

func TestServidoresMonthlyUnits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/servidores/servidores", jsonHandler(`[{"sequencial": 1, "nome": "A"}, {"sequencial": 2, "nome": "B"}]`))
	mux.HandleFunc("/api/v1/servidores/pensionistas", jsonHandler(`[]`))
	mux.HandleFunc("/api/v1/servidores/remuneracoes/", jsonHandler(`[{"sequencial": 1, "tipo_folha": "Normal", "remuneracao_basica": "1.234,56"}]`))
	mux.HandleFunc("/api/v1/servidores/pensionistas/remuneracoes/", failing)
	mux.HandleFunc("/api/v1/servidores/horas-extras/", jsonHandler(``))
	f := newFixture(t, mux, chrono.Date(2025, time.March, 20))

	_, err := New(f.env).Servidores(context.Background(), pipeline.Args{StartYear: 2024, EndYear: 2025})
	require.NoError(t, err)

	require.Equal(t, 2, f.count(t, "servidores"))
	// January 2024 through March 2025, never a future month
	require.Equal(t, 15, f.count(t, "remuneracoes_servidores"))
	require.Equal(t, 1, f.hitCount("/api/v1/servidores/remuneracoes/2025/3"))
	require.Zero(t, f.hitCount("/api/v1/servidores/remuneracoes/2025/4"))
	require.False(t, f.store.Exists("pensionistas"))
	require.False(t, f.store.Exists("remuneracoes_pensionistas"))
	require.False(t, f.store.Exists("horas_extras"))
	require.True(t, f.tel.Contains("warning", "store.write"))
}

func cguArchive(t *testing.T, csv string) []byte {
	t.Helper()
	encoded, err := charmap.Windows1252.NewEncoder().String(csv)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("EmendasParlamentares.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(encoded))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEmendasSkipsUnpublishedArchives(t *testing.T) {
	archive := cguArchive(t,
		"\"Código da Emenda\";\"Ano da Emenda\";\"Código Ação\";\"Localidade de aplicação do recurso\";\"Valor Pago\"\n"+
			"\"202112340001\";\"2021\";\"2E89\";\"SÃO PAULO (SP)\";\"1.000,00\"\n"+
			"\"202112340001\";\"2021\";\"2E89\";\"SÃO PAULO (SP)\";\"1.500,00\"\n"+
			"\"202112340002\";\"2021\";\"2E89\";\"Nacional\";\"0,00\"\n",
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/emendas-parlamentares/EmendasParlamentares.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/zip")
		w.Write(archive)
	})
	mux.HandleFunc("/", http.NotFound)
	f := newFixture(t, mux, chrono.Date(2024, time.June, 1))

	rows, err := New(f.env).Emendas(context.Background(), pipeline.Args{EndYear: 2021})
	require.NoError(t, err)
	require.Equal(t, 2, rows)

	values, err := f.store.DistinctStrings(context.Background(), "emendas_parlamentares", "valor_pago")
	require.NoError(t, err)
	require.Equal(t, []string{"0,00", "1.500,00"}, values, "locale text is kept and the last duplicate wins")

	require.Equal(t, 1, f.hitCount("/emendas-parlamentares-documentos/2014_EmendasParlamentaresPorDocumento.zip"))
	require.Equal(t, 1, f.hitCount("/emendas-parlamentares-documentos/2021_EmendasParlamentaresPorDocumento.zip"))
	require.Zero(t, f.hitCount("/emendas-parlamentares-documentos/2022_EmendasParlamentaresPorDocumento.zip"))
	require.Equal(t, 1, f.hitCount("/emendas-parlamentares-apoiamento/2020_ApoiamentoEmendasParlamentares.zip"))
	require.Zero(t, f.hitCount("/emendas-parlamentares-apoiamento/2019_ApoiamentoEmendasParlamentares.zip"))
	require.False(t, f.store.Exists(flatten.EmendasDocumentos.Schema.Name))
	require.Empty(t, f.tel.Events("broken"))
}
