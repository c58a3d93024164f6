package extractors

import (
	"context"
	"fmt"

	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
	"congressdata/internal/window"
)

func (r *run) adm(ctx context.Context, path string) ([]any, error) {
	body, err := r.env.Adm.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return flatten.Unwrap(body), nil
}

// fetchInto fetches one ADM endpoint as a unit and appends its flattened records to dst.
func (r *run) fetchInto(ctx context.Context, label, path string, dst *[]flatten.Record, fn func(any) (flatten.Record, error)) {
	r.units.Do(ctx, label, func(ctx context.Context) (int, error) {
		items, err := r.adm(ctx, path)
		if err != nil {
			return 0, err
		}
		records, err := r.flatten(path, items, fn)
		if err != nil {
			return 0, err
		}
		*dst = append(*dst, records...)
		return len(records), nil
	})
}

// Ceaps writes the senators' expense reimbursements, one request per year.
func (e Extractors) Ceaps(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("ceaps")

	var records []flatten.Record
	for _, year := range years(args, r.today) {
		path := fmt.Sprintf("/api/v1/senadores/despesas_ceaps/%d", year)
		r.fetchInto(ctx, fmt.Sprint(year), path, &records, flatten.Ceaps)
	}
	return r.write(ctx, pending{flatten.CeapsSchema, records})
}

// monthly is one of the payroll endpoints fetched once per month.
type monthly struct {
	name   string
	path   string
	schema flatten.Schema
	fn     func(rec any, ano, mes int) (flatten.Record, error)
}

var servidoresMonthly = []monthly{
	{"remuneracoes", "/api/v1/servidores/remuneracoes/%d/%d", flatten.RemuneracoesServidoresSchema, flatten.Remuneracao},
	{"pensionistas/remuneracoes", "/api/v1/servidores/pensionistas/remuneracoes/%d/%d", flatten.RemuneracoesPensionistasSchema, flatten.RemuneracaoPensionista},
	{"horas-extras", "/api/v1/servidores/horas-extras/%d/%d", flatten.HorasExtrasSchema, flatten.HoraExtra},
}

// Servidores writes the staff and pensioner snapshots and their monthly payroll and
// overtime tables.
func (e Extractors) Servidores(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("servidores")

	var servidores, pensionistas []flatten.Record
	r.fetchInto(ctx, "servidores", "/api/v1/servidores/servidores", &servidores, flatten.Servidor)
	r.fetchInto(ctx, "pensionistas", "/api/v1/servidores/pensionistas", &pensionistas, flatten.Pensionista)

	tables := []pending{
		{flatten.ServidoresSchema, servidores},
		{flatten.PensionistasSchema, pensionistas},
	}

	end := args.EndYear
	if end == 0 {
		end = r.today.Year()
	}
	months := window.Months(args.StartYear, end, r.today)
	for _, m := range servidoresMonthly {
		var records []flatten.Record
		for _, ym := range months {
			r.fetchInto(ctx, fmt.Sprintf("%s %s", m.name, ym), fmt.Sprintf(m.path, ym.Year, ym.Month), &records, func(rec any) (flatten.Record, error) {
				return m.fn(rec, ym.Year, ym.Month)
			})
		}
		tables = append(tables, pending{m.schema, records})
	}

	return r.write(ctx, tables...)
}

// AuxilioMoradia writes the housing allowance snapshot, a single call.
func (e Extractors) AuxilioMoradia(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("auxilio_moradia")

	const path = "/api/v1/senadores/auxilio-moradia"
	items, err := r.adm(ctx, path)
	if err != nil {
		return 0, err
	}
	records, err := r.flatten(path, items, flatten.AuxilioMoradia)
	if err != nil {
		return 0, err
	}
	r.tel.ReportProgress(path, "outcome", "ok", "count", len(records))

	return r.write(ctx, pending{flatten.AuxilioMoradiaSchema, records})
}
