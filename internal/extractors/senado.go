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

const report_comissoes_senator_ids = "comissoes.senator-ids"

// legislative proposal types fetched by processos
var processoSiglas = []string{"PL", "PEC", "PLP", "MPV"}

func (r *run) legis(ctx context.Context, path string, params url.Values, opts ...upstream.RequestOption) (any, error) {
	return r.env.Legis.Get(ctx, path, params, opts...)
}

func (r *run) dig(body any, keys ...string) any {
	return upstream.Dig(body, upstream.CasingMixed, keys...)
}

// senatorCodes lists the codes of the senators currently in office.
func (r *run) senatorCodes(ctx context.Context) ([]string, error) {
	body, err := r.legis(ctx, "/senador/lista/atual", nil)
	if err != nil {
		return nil, fmt.Errorf("senator list: %w", err)
	}
	list := flatten.Unwrap(r.dig(body, "ListaParlamentarEmExercicio", "Parlamentares", "Parlamentar"))

	codes := make([]string, 0, len(list))
	for _, s := range list {
		code := text(flatten.Field(flatten.Nested(s, "IdentificacaoParlamentar"), "CodigoParlamentar"))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// Senators writes senadores and mandatos for every senator in office.
func (e Extractors) Senators(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("senators")

	codes, err := r.senatorCodes(ctx)
	if err != nil {
		return 0, err
	}

	var senadores, mandatos []flatten.Record
	for i, code := range codes {
		label := fmt.Sprintf("[%d/%d] senator %s", i+1, len(codes), code)
		r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
			path := "/senador/" + code
			body, err := r.legis(ctx, path, nil)
			if err != nil {
				return 0, err
			}
			senador, err := flatten.Senator(r.dig(body, "DetalheParlamentar", "Parlamentar"))
			if err != nil {
				return 0, &upstream.ShapeError{URL: path, Err: err}
			}

			path = "/senador/" + code + "/mandatos"
			body, err = r.legis(ctx, path, nil)
			if err != nil {
				return 0, err
			}
			records, err := r.flatten(path, flatten.Unwrap(r.dig(body, "MandatoParlamentar", "Parlamentar", "Mandatos", "Mandato")), func(m any) (flatten.Record, error) {
				return flatten.Mandate(code, m)
			})
			if err != nil {
				return 0, err
			}
			// both tables or neither, a senator without mandates is a failed unit
			senadores = append(senadores, senador)
			mandatos = append(mandatos, records...)
			return 1 + len(records), nil
		})
	}

	return r.write(ctx,
		pending{flatten.SenadoresSchema, senadores},
		pending{flatten.MandatosSchema, mandatos},
	)
}

// sessions normalizes a /votacao body, which is usually an array but is occasionally
// wrapped in an object.
func sessions(body any) []any {
	if obj, ok := body.(map[string]any); ok {
		if wrapped, ok := obj["votacoes"]; ok {
			return flatten.Unwrap(wrapped)
		}
	}
	return flatten.Unwrap(body)
}

// Votacoes writes every plenary session in the date range and the votes nested in them,
// one request per monthly window.
func (e Extractors) Votacoes(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("votacoes")

	windows := window.Dates(args.StartDate, args.EndDate, r.today)
	var votacoes, votos []flatten.Record
	for i, w := range windows {
		label := fmt.Sprintf("[%d/%d] %s", i+1, len(windows), w)
		r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
			params := url.Values{}
			params.Set("dataInicio", w.StartDate())
			params.Set("dataFim", w.EndDate())
			body, err := r.legis(ctx, "/votacao", params, upstream.WithoutSuffix())
			if err != nil {
				return 0, err
			}

			source := "/votacao " + w.String()
			var windowVotacoes, windowVotos []flatten.Record
			dropped := 0
			for _, session := range sessions(body) {
				votacao, err := flatten.Votacao(session)
				ok, err := keep(source, err, &dropped)
				if err != nil {
					return 0, err
				}
				if !ok {
					continue
				}
				codigo := votacao["codigo_sessao_votacao"]
				records, err := r.flatten(source, flatten.Unwrap(r.dig(session, "votos")), func(v any) (flatten.Record, error) {
					return flatten.Voto(codigo, v)
				})
				if err != nil {
					return 0, err
				}
				windowVotacoes = append(windowVotacoes, votacao)
				windowVotos = append(windowVotos, records...)
			}
			r.dropped(source, dropped)
			votacoes = append(votacoes, windowVotacoes...)
			votos = append(votos, windowVotos...)
			return len(windowVotacoes), nil
		})
	}

	return r.write(ctx,
		pending{flatten.VotacoesSchema, votacoes},
		pending{flatten.VotosSchema, votos},
	)
}

// comissaoSenatorIDs prefers the ids of an existing senadores table so memberships cover
// the same senators, and falls back to the current senator list.
func (r *run) comissaoSenatorIDs(ctx context.Context) ([]string, error) {
	if r.env.Store.Exists(flatten.SenadoresSchema.Name) {
		ids, err := r.env.Store.DistinctStrings(ctx, flatten.SenadoresSchema.Name, "senador_id")
		if err == nil {
			return ids, nil
		}
		r.tel.ReportWarning(report_comissoes_senator_ids, "falling back to the senator list", err)
	}
	return r.senatorCodes(ctx)
}

// Comissoes writes the committee master list (regular and joint committees) and the
// membership history of every senator.
func (e Extractors) Comissoes(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("comissoes")

	var comissoes []flatten.Record
	lists := []struct {
		path string
		keys []string
		fn   func(any) (flatten.Record, error)
	}{
		{"/comissao/lista/colegiados", []string{"ListaColegiados", "Colegiados", "Colegiado"}, flatten.Colegiado},
		{"/comissao/lista/mistas", []string{"ComissoesMistasCongresso", "Colegiados", "Colegiado"}, flatten.Mista},
	}
	for _, list := range lists {
		r.units.Do(ctx, list.path, func(ctx context.Context) (int, error) {
			body, err := r.legis(ctx, list.path, nil)
			if err != nil {
				return 0, err
			}
			records, err := r.flatten(list.path, flatten.Unwrap(r.dig(body, list.keys...)), list.fn)
			if err != nil {
				return 0, err
			}
			comissoes = append(comissoes, records...)
			return len(records), nil
		})
	}

	ids, err := r.comissaoSenatorIDs(ctx)
	if err != nil {
		// the committee list stands on its own
		r.tel.ReportBroken(report_comissoes_senator_ids, err)
	}

	var membros []flatten.Record
	for i, id := range ids {
		label := fmt.Sprintf("[%d/%d] senator %s", i+1, len(ids), id)
		r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
			path := "/senador/" + id + "/comissoes"
			body, err := r.legis(ctx, path, nil)
			if err != nil {
				return 0, err
			}
			memberships := flatten.Unwrap(r.dig(body, "MembroComissaoParlamentar", "Parlamentar", "MembroComissoes", "Comissao"))
			records, err := r.flatten(path, memberships, func(c any) (flatten.Record, error) {
				return flatten.Membro(id, c)
			})
			if err != nil {
				return 0, err
			}
			membros = append(membros, records...)
			return len(records), nil
		})
	}

	return r.write(ctx,
		pending{flatten.ComissoesSchema, comissoes},
		pending{flatten.MembrosComissaoSchema, membros},
	)
}

// Liderancas writes the current leadership positions, a single call.
func (e Extractors) Liderancas(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("liderancas")

	const path = "/composicao/lideranca"
	body, err := r.legis(ctx, path, nil)
	if err != nil {
		return 0, err
	}
	records, err := r.flatten(path, flatten.Unwrap(body), flatten.Lideranca)
	if err != nil {
		return 0, err
	}
	r.tel.ReportProgress(path, "outcome", "ok", "count", len(records))

	return r.write(ctx, pending{flatten.LiderancasSchema, records})
}

// processos normalizes a /processo body, an array that some responses wrap in an object.
func processos(body any) []any {
	if obj, ok := body.(map[string]any); ok {
		for _, key := range []string{"processos", "Processo"} {
			if wrapped, ok := obj[key]; ok {
				return flatten.Unwrap(wrapped)
			}
		}
	}
	return flatten.Unwrap(body)
}

// Processos writes PL, PEC, PLP and MPV proposals for every year in range.
func (e Extractors) Processos(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("processos")

	yrs := years(args, r.today)
	total := len(processoSiglas) * len(yrs)
	var records []flatten.Record
	n := 0
	for _, sigla := range processoSiglas {
		for _, year := range yrs {
			n++
			label := fmt.Sprintf("[%d/%d] %s/%d", n, total, sigla, year)
			r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
				params := url.Values{}
				params.Set("sigla", sigla)
				params.Set("ano", strconv.Itoa(year))
				body, err := r.legis(ctx, "/processo", params, upstream.WithoutSuffix())
				if err != nil {
					return 0, err
				}
				out, err := r.flatten("/processo "+sigla, processos(body), flatten.Processo)
				if err != nil {
					return 0, err
				}
				records = append(records, out...)
				return len(out), nil
			})
		}
	}

	return r.write(ctx, pending{flatten.ProcessosSchema, records})
}
