package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// pagedHandler serves pages of `perPage` records, linking to the next page until
// `lastPage` (0 means forever).
func pagedHandler(t *testing.T, perPage, lastPage int, calls *[]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls = append(*calls, r.URL.RequestURI())

		page, _ := strconv.Atoi(r.URL.Query().Get("pagina"))
		if page == 0 {
			page = 1
		}

		dados := []map[string]any{}
		for i := 0; i < perPage; i++ {
			dados = append(dados, map[string]any{"id": page*100 + i})
		}
		links := []map[string]any{{"rel": "self", "href": "http://" + r.Host + r.URL.RequestURI()}}
		if lastPage == 0 || page < lastPage {
			links = append(links, map[string]any{
				"rel":  "next",
				"href": fmt.Sprintf("http://%s/deputados?pagina=%d&itens=%s&idLegislatura=57", r.Host, page+1, r.URL.Query().Get("itens")),
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"dados": dados, "links": links}))
	})
}

func TestWalkFollowsNextLinks(t *testing.T) {
	var calls []string
	client, _ := newTestClient(t, CamaraProfile(), pagedHandler(t, 2, 3, &calls))

	records, pages, err := Walk(context.Background(), client, "/deputados", url.Values{"idLegislatura": {"57"}})
	require.NoError(t, err)
	require.Equal(t, 3, pages)
	require.Len(t, records, 6)
	require.Equal(t, "/deputados?idLegislatura=57&itens=100", calls[0])
	require.Equal(t, "/deputados?pagina=2&itens=100&idLegislatura=57", calls[1])
}

func TestWalkStopsAtPageCap(t *testing.T) {
	var calls []string
	profile := CamaraProfile()
	profile.MaxPages = 4
	client, _ := newTestClient(t, profile, pagedHandler(t, 3, 0, &calls))

	records, pages, err := Walk(context.Background(), client, "/votacoes", nil)
	require.NoError(t, err)
	require.Equal(t, 4, pages)
	require.Len(t, calls, 4)
	require.Len(t, records, 12)
}

func TestWalkStopsOnEmptyPage(t *testing.T) {
	var calls []string
	client, _ := newTestClient(t, CamaraProfile(), pagedHandler(t, 0, 0, &calls))

	records, pages, err := Walk(context.Background(), client, "/votacoes", nil)
	require.NoError(t, err)
	require.Equal(t, 1, pages)
	require.Empty(t, records)
}

func TestWalkKeepsCallerPageSize(t *testing.T) {
	var calls []string
	client, _ := newTestClient(t, CamaraProfile(), pagedHandler(t, 1, 1, &calls))

	_, err := Fetch(context.Background(), client, "/deputados", url.Values{"itens": {"15"}})
	require.NoError(t, err)
	require.Equal(t, "/deputados?itens=15", calls[0])
}

func TestWalkFailsOnBrokenPage(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, CamaraProfile(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		fmt.Fprintf(w, `{"dados": [{"id": 1}], "links": [{"rel": "next", "href": "http://%s/x?pagina=2"}]}`, r.Host)
	}))

	_, err := Fetch(context.Background(), client, "/x", nil)
	require.Error(t, err)
	require.Equal(t, ClassStatus, Classify(err))
}

func TestRecordsAndDig(t *testing.T) {
	single := map[string]any{"CodigoParlamentar": "1"}
	testCases := []struct {
		name     string
		body     any
		profile  Profile
		expected []any
	}{
		{name: "bare array", body: []any{single}, profile: AdmProfile(), expected: []any{single}},
		{name: "bare object", body: single, profile: AdmProfile(), expected: []any{single}},
		{name: "null", body: nil, profile: AdmProfile(), expected: []any{}},
		{name: "data envelope", body: map[string]any{"dados": []any{single}}, profile: CamaraProfile(), expected: []any{single}},
		{name: "data envelope with null", body: map[string]any{"dados": nil}, profile: CamaraProfile(), expected: []any{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Records(tc.body, tc.profile))
		})
	}

	body := map[string]any{"ListaParlamentarEmExercicio": map[string]any{"Parlamentares": map[string]any{"Parlamentar": single}}}
	require.Equal(t, single, Dig(body, CasingMixed, "ListaParlamentarEmExercicio", "parlamentares", "Parlamentar"))
	require.Nil(t, Dig(body, CasingCamel, "listaParlamentarEmExercicio"))
	require.Nil(t, Dig(body, CasingMixed, "ListaParlamentarEmExercicio", "Nope"))
}
