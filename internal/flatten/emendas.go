package flatten

import (
	"fmt"
	"strings"
)

// Column maps a header of a bulk CSV onto a column name.
type Column struct {
	Header string
	Name   string
}

// BulkDataset describes one CSV dataset from the transparency portal. Every value is kept
// as text, LocaleTextColumns lists the monetary columns left in "1.234,56" form for the
// downstream layer to convert.
type BulkDataset struct {
	Schema            Schema
	Columns           []Column
	LocaleTextColumns []string
}

func bulkSchema(name string, columns []Column, key, sort []string) Schema {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return Schema{Name: name, Columns: names, Key: key, Sort: sort}
}

var emendasColumns = []Column{
	{"Código da Emenda", "codigo_emenda"},
	{"Ano da Emenda", "ano_emenda"},
	{"Tipo de Emenda", "tipo_emenda"},
	{"Código do Autor da Emenda", "codigo_autor_emenda"},
	{"Nome do Autor da Emenda", "nome_autor_emenda"},
	{"Número da emenda", "numero_emenda"},
	{"Localidade de aplicação do recurso", "localidade_recurso"},
	{"Código Município IBGE", "codigo_municipio_ibge"},
	{"Município", "municipio"},
	{"Código UF IBGE", "codigo_uf_ibge"},
	{"UF", "uf"},
	{"Região", "regiao"},
	{"Código Função", "codigo_funcao"},
	{"Nome Função", "nome_funcao"},
	{"Código Subfunção", "codigo_subfuncao"},
	{"Nome Subfunção", "nome_subfuncao"},
	{"Código Programa", "codigo_programa"},
	{"Nome Programa", "nome_programa"},
	{"Código Ação", "codigo_acao"},
	{"Nome Ação", "nome_acao"},
	{"Código Plano Orçamentário", "codigo_plano_orcamentario"},
	{"Nome Plano Orçamentário", "nome_plano_orcamentario"},
	{"Valor Empenhado", "valor_empenhado"},
	{"Valor Liquidado", "valor_liquidado"},
	{"Valor Pago", "valor_pago"},
	{"Valor Restos A Pagar Inscritos", "valor_restos_inscrito"},
	{"Valor Restos A Pagar Cancelados", "valor_restos_cancelado"},
	{"Valor Restos A Pagar Pagos", "valor_restos_pagos"},
}

// EmendasParlamentares is the all-years summary, aggregated by author, action and location.
var EmendasParlamentares = BulkDataset{
	Schema: bulkSchema(
		"emendas_parlamentares",
		emendasColumns,
		[]string{"codigo_emenda", "codigo_acao", "localidade_recurso"},
		[]string{"ano_emenda", "codigo_emenda"},
	),
	Columns: emendasColumns,
	LocaleTextColumns: []string{
		"valor_empenhado", "valor_liquidado", "valor_pago", "valor_restos_inscrito",
		"valor_restos_cancelado", "valor_restos_pagos",
	},
}

var emendasDocumentosColumns = []Column{
	{"Código da Emenda", "codigo_emenda"},
	{"Ano da Emenda", "ano_emenda"},
	{"Código do Autor da Emenda", "codigo_autor_emenda"},
	{"Nome do Autor da Emenda", "nome_autor_emenda"},
	{"Número da emenda", "numero_emenda"},
	{"Valor Empenhado", "valor_empenhado"},
	{"Valor Pago", "valor_pago"},
	{"Tipo de Emenda", "tipo_emenda"},
	{"Data Documento", "data_documento"},
	{"Código Documento", "codigo_documento"},
	{"Localidade de aplicação do recurso", "localidade_recurso"},
	{"UF de aplicação do recurso", "uf_recurso"},
	{"Município de aplicação do recurso", "municipio_recurso"},
	{"Código IBGE do município de aplicação do recurso", "codigo_ibge_municipio"},
	{"Fase da despesa", "fase_despesa"},
	{"Código favorecido", "codigo_favorecido"},
	{"Favorecido", "favorecido"},
	{"Tipo Favorecido", "tipo_favorecido"},
	{"UF Favorecido", "uf_favorecido"},
	{"Município Favorecido", "municipio_favorecido"},
	{"Código UG", "codigo_ug"},
	{"UG", "ug"},
	{"Código Unidade Orçamentária", "codigo_unidade_orcamentaria"},
	{"Unidade Orçamentária", "unidade_orcamentaria"},
	{"Código Órgão SIAFI", "codigo_orgao"},
	{"Órgão", "orgao"},
	{"Código Órgão Superior SIAFI", "codigo_orgao_superior"},
	{"Órgão Superior", "orgao_superior"},
	{"Código Grupo Despesa", "codigo_grupo_despesa"},
	{"Grupo Despesa", "grupo_despesa"},
	{"Código Elemento Despesa", "codigo_elemento_despesa"},
	{"Elemento Despesa", "elemento_despesa"},
	{"Código Modalidade Aplicação Despesa", "codigo_modalidade_aplicacao"},
	{"Modalidade Aplicação Despesa", "modalidade_aplicacao"},
	{"Código Plano Orçamentário", "codigo_plano_orcamentario"},
	{"Plano Orçamentário", "plano_orcamentario"},
	{"Código Função", "codigo_funcao"},
	{"Função", "funcao"},
	{"Código SubFunção", "codigo_subfuncao"},
	{"SubFunção", "subfuncao"},
	{"Código Programa", "codigo_programa"},
	{"Programa", "programa"},
	{"Código Ação", "codigo_acao"},
	{"Ação", "acao"},
	{"Linguagem Cidadã", "linguagem_cidada"},
	{"Código Subtítulo (Localizador)", "codigo_subtitulo"},
	{"Subtítulo (Localizador)", "subtitulo"},
	{"Possui convênio?", "possui_convenio"},
}

// EmendasDocumentos is the per SIAFI expense document dataset, published as one archive a year.
var EmendasDocumentos = BulkDataset{
	Schema: bulkSchema(
		"emendas_documentos",
		emendasDocumentosColumns,
		[]string{"codigo_emenda", "codigo_documento", "fase_despesa"},
		[]string{"ano_emenda", "codigo_emenda"},
	),
	Columns:           emendasDocumentosColumns,
	LocaleTextColumns: []string{"valor_empenhado", "valor_pago"},
}

var apoiamentoColumns = []Column{
	{"Código Apoiador", "codigo_apoiador"},
	{"Apoiador", "nome_apoiador"},
	{"Data do Apoio", "data_apoio"},
	{"Data Retirada do Apoio", "data_retirada_apoio"},
	{"Empenho", "empenho"},
	{"Data última movimentação Empenho", "data_ultima_movimentacao_empenho"},
	{"Código favorecido", "codigo_favorecido"},
	{"Favorecido", "favorecido"},
	{"Tipo Favorecido", "tipo_favorecido"},
	{"UF Favorecido", "uf_favorecido"},
	{"Município Favorecido", "municipio_favorecido"},
	{"Código da Emenda", "codigo_emenda"},
	{"Código do Autor da Emenda", "codigo_autor_emenda"},
	{"Nome do Autor da Emenda", "nome_autor_emenda"},
	{"Número da emenda", "numero_emenda"},
	{"Tipo de Emenda", "tipo_emenda"},
	{"Ano da Emenda", "ano_emenda"},
	{"Localidade de aplicação do recurso", "localidade_recurso"},
	{"Código UG", "codigo_ug"},
	{"UG", "ug"},
	{"Código Unidade Orçamentária", "codigo_unidade_orcamentaria"},
	{"Unidade Orçamentária", "unidade_orcamentaria"},
	{"Código Órgão SIAFI", "codigo_orgao"},
	{"Órgão", "orgao"},
	{"Código Órgão Superior SIAFI", "codigo_orgao_superior"},
	{"Órgão Superior", "orgao_superior"},
	{"Código Ação", "codigo_acao"},
	{"Ação", "acao"},
	{"Valor Empenhado", "valor_empenhado"},
	{"Valor Cancelado", "valor_cancelado"},
	{"Valor Pago", "valor_pago"},
}

// ApoiamentoEmendas lists co-sponsors of amendments, published yearly from 2020.
var ApoiamentoEmendas = BulkDataset{
	Schema: bulkSchema(
		"apoiamento_emendas",
		apoiamentoColumns,
		[]string{"empenho", "codigo_apoiador"},
		[]string{"ano_emenda", "empenho"},
	),
	Columns:           apoiamentoColumns,
	LocaleTextColumns: []string{"valor_empenhado", "valor_cancelado", "valor_pago"},
}

// Rename maps a CSV header onto column names. Headers the dataset does not know are
// kept verbatim so a new upstream column is not silently lost. A blank header, as left by a
// trailing delimiter, becomes column_<position>, and a name already used (ignoring case)
// gets a numeric suffix.
func (d BulkDataset) Rename(header []string) []string {
	known := make(map[string]string, len(d.Columns))
	for _, c := range d.Columns {
		known[c.Header] = c.Name
	}
	taken := map[string]bool{}
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		name, ok := known[h]
		if !ok {
			name = h
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

// Row turns one CSV row into a record, empty cells become nil. Rows are not key checked,
// archives carry whatever the portal published.
func (d BulkDataset) Row(columns []string, row []string) Record {
	r := d.Schema.New()
	for i, name := range columns {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			r[name] = nil
			continue
		}
		r[name] = value
	}
	return r
}
