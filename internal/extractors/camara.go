package extractors

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
	"congressdata/internal/upstream"
	"congressdata/internal/window"
)

func (r *run) camaraAll(ctx context.Context, path string, params url.Values) ([]any, error) {
	return upstream.Fetch(ctx, r.env.Camara, path, params)
}

// CamaraDeputados lists the deputies of every configured legislature, then fetches the
// biography of each distinct deputy once.
func (e Extractors) CamaraDeputados(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("camara_deputados")

	var lista []flatten.Record
	for _, leg := range r.env.Legislatures {
		r.units.Do(ctx, fmt.Sprintf("legislatura %d", leg), func(ctx context.Context) (int, error) {
			params := url.Values{}
			params.Set("idLegislatura", strconv.Itoa(leg))
			items, err := r.camaraAll(ctx, "/deputados", params)
			if err != nil {
				return 0, err
			}
			records, err := r.flatten("/deputados", items, func(rec any) (flatten.Record, error) {
				return flatten.DeputadoLista(rec, leg)
			})
			if err != nil {
				return 0, err
			}
			lista = append(lista, records...)
			return len(records), nil
		})
	}

	seen := map[string]bool{}
	var ids []string
	for _, rec := range lista {
		id := text(rec["deputado_id"])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var detalhes []flatten.Record
	for i, id := range ids {
		label := fmt.Sprintf("[%d/%d] deputy %s", i+1, len(ids), id)
		r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
			path := "/deputados/" + id
			body, err := r.env.Camara.Get(ctx, path, nil)
			if err != nil {
				return 0, err
			}
			dados := upstream.Dig(body, upstream.CasingCamel, "dados")
			if dados == nil {
				return 0, nil
			}
			detalhe, err := flatten.DeputadoDetalhe(dados)
			if err != nil {
				return 0, &upstream.ShapeError{URL: path, Err: err}
			}
			detalhes = append(detalhes, detalhe)
			return 1, nil
		})
	}

	return r.write(ctx,
		pending{flatten.CamaraDeputadosListaSchema, lista},
		pending{flatten.CamaraDeputadosSchema, detalhes},
	)
}

// deputyIDs reads the deputies listed by camara_deputados.
func (r *run) deputyIDs(ctx context.Context) ([]string, error) {
	ids, err := r.env.Store.DistinctStrings(ctx, flatten.CamaraDeputadosListaSchema.Name, "deputado_id")
	if err != nil {
		return nil, fmt.Errorf("deputy ids: %w", err)
	}
	return ids, nil
}

// perDeputyYear runs one paged query per deputy and year.
func (r *run) perDeputyYear(
	ctx context.Context,
	args pipeline.Args,
	path func(id string) string,
	params func(id string, year int) url.Values,
	fn func(id string, rec any) (flatten.Record, error),
) ([]flatten.Record, error) {
	ids, err := r.deputyIDs(ctx)
	if err != nil {
		return nil, err
	}
	yrs := years(args, r.today)

	var out []flatten.Record
	total := len(ids) * len(yrs)
	n := 0
	for _, id := range ids {
		for _, year := range yrs {
			n++
			label := fmt.Sprintf("[%d/%d] deputy %s %d", n, total, id, year)
			r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
				items, err := r.camaraAll(ctx, path(id), params(id, year))
				if err != nil {
					return 0, err
				}
				records, err := r.flatten(path(id), items, func(rec any) (flatten.Record, error) {
					return fn(id, rec)
				})
				if err != nil {
					return 0, err
				}
				out = append(out, records...)
				return len(records), nil
			})
		}
	}
	return out, nil
}

// CamaraDespesas writes the expense records of every listed deputy for every year in range.
func (e Extractors) CamaraDespesas(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("camara_despesas")

	records, err := r.perDeputyYear(ctx, args,
		func(id string) string { return "/deputados/" + id + "/despesas" },
		func(id string, year int) url.Values {
			return url.Values{"ano": {strconv.Itoa(year)}}
		},
		flatten.DespesaDeputado,
	)
	if err != nil {
		return 0, err
	}
	return r.write(ctx, pending{flatten.CamaraDespesasSchema, records})
}

// CamaraProposicoes writes the proposals authored by every listed deputy. The year filter
// is "ano" since the Chamber rejects date ranges combined with an author.
func (e Extractors) CamaraProposicoes(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("camara_proposicoes")

	records, err := r.perDeputyYear(ctx, args,
		func(string) string { return "/proposicoes" },
		func(id string, year int) url.Values {
			return url.Values{
				"idDeputadoAutor": {id},
				"ano":             {strconv.Itoa(year)},
			}
		},
		func(id string, rec any) (flatten.Record, error) {
			return flatten.Proposicao(rec, id)
		},
	)
	if err != nil {
		return 0, err
	}
	return r.write(ctx, pending{flatten.CamaraProposicoesSchema, records})
}

// CamaraVotacoes writes the plenary sessions of each monthly window and the votes of every
// session. A session that shows up in more than one window is fetched once.
func (e Extractors) CamaraVotacoes(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("camara_votacoes")

	windows := window.Dates(args.StartDate, args.EndDate, r.today)
	seen := map[string]bool{}
	var votacoes, votos []flatten.Record
	for i, w := range windows {
		label := fmt.Sprintf("[%d/%d] %s", i+1, len(windows), w)
		r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
			params := url.Values{}
			params.Set("dataInicio", w.StartDate())
			params.Set("dataFim", w.EndDate())
			items, err := r.camaraAll(ctx, "/votacoes", params)
			if err != nil {
				return 0, err
			}

			var fresh []flatten.Record
			dropped := 0
			for _, item := range items {
				votacao, err := flatten.VotacaoCamara(item)
				ok, err := keep("/votacoes", err, &dropped)
				if err != nil {
					return 0, err
				}
				if !ok {
					continue
				}
				id := text(votacao["votacao_id"])
				if seen[id] {
					continue
				}
				seen[id] = true
				fresh = append(fresh, votacao)
			}
			r.dropped("/votacoes", dropped)
			votacoes = append(votacoes, fresh...)

			for _, votacao := range fresh {
				id := text(votacao["votacao_id"])
				r.units.Do(ctx, "votacao "+id, func(ctx context.Context) (int, error) {
					path := "/votacoes/" + id + "/votos"
					body, err := r.env.Camara.Get(ctx, path, nil)
					if err != nil {
						return 0, err
					}
					records, err := r.flatten(path, upstream.Records(body, r.env.Camara.Profile()), func(rec any) (flatten.Record, error) {
						return flatten.VotoCamara(id, rec)
					})
					if err != nil {
						return 0, err
					}
					votos = append(votos, records...)
					return len(records), nil
				})
			}
			return len(fresh), nil
		})
	}

	return r.write(ctx,
		pending{flatten.CamaraVotacoesSchema, votacoes},
		pending{flatten.CamaraVotosSchema, votos},
	)
}
