package extractors

import (
	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
)

var (
	yearRange = []pipeline.ArgTag{pipeline.TagStartYear, pipeline.TagEndYear}
	dateRange = []pipeline.ArgTag{pipeline.TagStartDate, pipeline.TagEndDate}
)

// Registry returns every extractor in the order a full run executes them. Adding an
// extractor is one entry here.
func Registry(env Env) []pipeline.Definition {
	return definitions(New(env))
}

// Catalog describes the extractors without binding them to clients or a store. Its
// definitions have no Run and are only fit for listing.
func Catalog() []pipeline.Definition {
	defs := definitions(Extractors{})
	for i := range defs {
		defs[i].Run = nil
	}
	return defs
}

func definitions(e Extractors) []pipeline.Definition {
	deputadosLista := []string{flatten.CamaraDeputadosListaSchema.Name}

	return []pipeline.Definition{
		{
			Name:        "senators",
			Description: "Senator biographical profiles and mandate history (LEGIS)",
			Run:         e.Senators,
		},
		{
			Name:        "votacoes",
			Description: "Plenary voting sessions and senator votes (LEGIS)",
			Args:        dateRange,
			Run:         e.Votacoes,
		},
		{
			Name:        "comissoes",
			Description: "Committee master list and senator memberships (LEGIS)",
			Run:         e.Comissoes,
		},
		{
			Name:        "liderancas",
			Description: "Current leadership positions (LEGIS)",
			Run:         e.Liderancas,
		},
		{
			Name:        "processos",
			Description: "Legislative proposals PL/PEC/PLP/MPV (LEGIS)",
			Args:        yearRange,
			Run:         e.Processos,
		},
		{
			Name:        "ceaps",
			Description: "Senator CEAPS expense reimbursements (ADM)",
			Args:        yearRange,
			Run:         e.Ceaps,
		},
		{
			Name:        "servidores",
			Description: "Staff, pensioners, payroll, overtime (ADM)",
			Args:        yearRange,
			Run:         e.Servidores,
		},
		{
			Name:        "auxilio_moradia",
			Description: "Senator housing allowance snapshot (ADM)",
			Run:         e.AuxilioMoradia,
		},
		{
			Name:        "camara_deputados",
			Description: "Deputy biographical profiles per legislature (CAMARA)",
			Run:         e.CamaraDeputados,
		},
		{
			Name:        "camara_despesas",
			Description: "Deputy CEAP expense records (CAMARA)",
			Args:        yearRange,
			Requires:    deputadosLista,
			Run:         e.CamaraDespesas,
		},
		{
			Name:        "camara_proposicoes",
			Description: "Legislative proposals authored by deputies (CAMARA)",
			Args:        yearRange,
			Requires:    deputadosLista,
			Run:         e.CamaraProposicoes,
		},
		{
			Name:        "camara_votacoes",
			Description: "Plenary voting sessions and deputy votes (CAMARA)",
			Args:        dateRange,
			Run:         e.CamaraVotacoes,
		},
		{
			Name:        "emendas",
			Description: "Parliamentary amendments, documents and co-sponsors (CGU bulk archives)",
			Args:        []pipeline.ArgTag{pipeline.TagEndYear},
			Run:         e.Emendas,
		},
	}
}
