package flatten

// Monetary fields from the administrative API arrive as locale strings ("1.234,56") in
// some endpoints and as numbers in others, they are converted here with Money.

var CeapsSchema = Schema{
	Name: "ceaps",
	Columns: []string{
		"id", "tipo_documento", "ano", "mes", "cod_senador", "nome_senador", "tipo_despesa",
		"cnpj_cpf", "fornecedor", "documento", "data", "detalhamento", "valor_reembolsado",
	},
	Key:  []string{"id"},
	Sort: []string{"ano", "mes", "cod_senador"},
}

// Ceaps flattens one /api/v1/senadores/despesas_ceaps/{ano} entry.
func Ceaps(rec any) (Record, error) {
	return CeapsSchema.finish(Record{
		"id":                Field(rec, "id"),
		"tipo_documento":    Field(rec, "tipoDocumento"),
		"ano":               Int(Field(rec, "ano")),
		"mes":               Int(Field(rec, "mes")),
		"cod_senador":       Text(Field(rec, "codSenador")),
		"nome_senador":      Field(rec, "nomeSenador"),
		"tipo_despesa":      Field(rec, "tipoDespesa"),
		"cnpj_cpf":          Field(rec, "cpfCnpj"),
		"fornecedor":        Field(rec, "fornecedor"),
		"documento":         Text(Field(rec, "documento")),
		"data":              Field(rec, "data"),
		"detalhamento":      Field(rec, "detalhamento"),
		"valor_reembolsado": Money(Field(rec, "valorReembolsado")),
	})
}

var ServidoresSchema = Schema{
	Name: "servidores",
	Columns: []string{
		"sequencial", "nome", "vinculo", "situacao", "cargo_nome", "padrao", "especialidade",
		"funcao_nome", "lotacao_sigla", "lotacao_nome", "categoria_codigo", "categoria_nome",
		"cedido_tipo", "cedido_orgao_origem", "cedido_orgao_destino", "ano_admissao",
	},
	Key: []string{"sequencial"},
}

func Servidor(rec any) (Record, error) {
	lotacao := Nested(rec, "lotacao")
	categoria := Nested(rec, "categoria")
	cedido := Nested(rec, "cedido")
	return ServidoresSchema.finish(Record{
		"sequencial":           Field(rec, "sequencial"),
		"nome":                 Field(rec, "nome"),
		"vinculo":              Field(rec, "vinculo"),
		"situacao":             Field(rec, "situacao"),
		"cargo_nome":           Field(Nested(rec, "cargo"), "nome"),
		"padrao":               Field(rec, "padrao"),
		"especialidade":        Field(rec, "especialidade"),
		"funcao_nome":          Field(Nested(rec, "funcao"), "nome"),
		"lotacao_sigla":        Field(lotacao, "sigla"),
		"lotacao_nome":         Field(lotacao, "nome"),
		"categoria_codigo":     Field(categoria, "codigo"),
		"categoria_nome":       Field(categoria, "nome"),
		"cedido_tipo":          Field(cedido, "tipo_cessao"),
		"cedido_orgao_origem":  Field(cedido, "orgao_origem"),
		"cedido_orgao_destino": Field(cedido, "orgao_destino"),
		"ano_admissao":         Field(rec, "ano_admissao"),
	})
}

var PensionistasSchema = Schema{
	Name: "pensionistas",
	Columns: []string{
		"sequencial", "nome", "vinculo", "fundamento", "cargo_nome", "funcao_nome",
		"categoria_codigo", "categoria_nome", "nome_instituidor", "ano_exercicio", "data_obito",
		"data_inicio_pensao",
	},
	Key: []string{"sequencial"},
}

func Pensionista(rec any) (Record, error) {
	categoria := Nested(rec, "categoria")
	return PensionistasSchema.finish(Record{
		"sequencial":         Field(rec, "sequencial"),
		"nome":               Field(rec, "nome"),
		"vinculo":            Field(rec, "vinculo"),
		"fundamento":         Field(rec, "fundamento"),
		"cargo_nome":         Field(Nested(rec, "cargo"), "nome"),
		"funcao_nome":        Field(Nested(rec, "funcao"), "nome"),
		"categoria_codigo":   Field(categoria, "codigo"),
		"categoria_nome":     Field(categoria, "nome"),
		"nome_instituidor":   Field(rec, "nome_instituidor"),
		"ano_exercicio":      Field(rec, "ano_exercicio"),
		"data_obito":         Field(rec, "data_obito"),
		"data_inicio_pensao": Field(rec, "data_inicio_pensao"),
	})
}

var remuneracaoMoneyColumns = []string{
	"remuneracao_basica", "vantagens_pessoais", "funcao_comissionada", "gratificacao_natalina",
	"horas_extras", "outras_eventuais", "diarias", "auxilios", "faltas", "previdencia",
	"abono_permanencia", "reversao_teto_constitucional", "imposto_renda", "remuneracao_liquida",
	"vantagens_indenizatorias",
}

var RemuneracoesServidoresSchema = Schema{
	Name:    "remuneracoes_servidores",
	Columns: append([]string{"sequencial", "nome", "ano", "mes", "tipo_folha"}, remuneracaoMoneyColumns...),
	Key:     []string{"sequencial", "ano", "mes", "tipo_folha"},
	Sort:    []string{"ano", "mes", "sequencial"},
}

// Remuneracao flattens one /api/v1/servidores/remuneracoes/{ano}/{mes} entry, the
// payroll month comes from the request and not from the record.
func Remuneracao(rec any, ano, mes int) (Record, error) {
	r := Record{
		"sequencial": Field(rec, "sequencial"),
		"nome":       Field(rec, "nome"),
		"ano":        int64(ano),
		"mes":        int64(mes),
		"tipo_folha": Field(rec, "tipo_folha"),
	}
	for _, c := range remuneracaoMoneyColumns {
		r[c] = Money(Field(rec, c))
	}
	return RemuneracoesServidoresSchema.finish(r)
}

var remuneracaoPensionistaMoneyColumns = []string{
	"remuneracao_basica", "vantagens_pessoais", "funcao_comissionada", "gratificacao_natalina",
	"reversao_teto_constitucional", "imposto_renda", "remuneracao_liquida",
	"vantagens_indenizatorias", "previdencia",
}

var RemuneracoesPensionistasSchema = Schema{
	Name:    "remuneracoes_pensionistas",
	Columns: append([]string{"sequencial", "nome", "ano", "mes", "tipo_folha"}, remuneracaoPensionistaMoneyColumns...),
	Key:     []string{"sequencial", "ano", "mes"},
	Sort:    []string{"ano", "mes", "sequencial"},
}

func RemuneracaoPensionista(rec any, ano, mes int) (Record, error) {
	r := Record{
		"sequencial": Field(rec, "sequencial"),
		"nome":       Field(rec, "nome"),
		"ano":        int64(ano),
		"mes":        int64(mes),
		"tipo_folha": Field(rec, "tipo_folha"),
	}
	for _, c := range remuneracaoPensionistaMoneyColumns {
		r[c] = Money(Field(rec, c))
	}
	return RemuneracoesPensionistasSchema.finish(r)
}

var HorasExtrasSchema = Schema{
	Name: "horas_extras",
	Columns: []string{
		"sequencial", "nome", "valor_total", "mes_ano_prestacao", "mes_ano_pagamento",
		"ano_pagamento", "mes_pagamento",
	},
	Key:  []string{"sequencial", "ano_pagamento", "mes_pagamento"},
	Sort: []string{"ano_pagamento", "mes_pagamento", "sequencial"},
}

func HoraExtra(rec any, ano, mes int) (Record, error) {
	return HorasExtrasSchema.finish(Record{
		"sequencial":        Field(rec, "sequencial"),
		"nome":              Field(rec, "nome"),
		"valor_total":       Money(Field(rec, "valorTotal")),
		"mes_ano_prestacao": Field(rec, "mes_ano_prestacao"),
		"mes_ano_pagamento": Field(rec, "mes_ano_pagamento"),
		"ano_pagamento":     int64(ano),
		"mes_pagamento":     int64(mes),
	})
}

var AuxilioMoradiaSchema = Schema{
	Name:    "auxilio_moradia",
	Columns: []string{"nome_parlamentar", "estado_eleito", "partido_eleito", "auxilio_moradia", "imovel_funcional"},
	Key:     []string{"nome_parlamentar"},
}

// AuxilioMoradia flattens one /api/v1/senadores/auxilio-moradia entry. There is no
// senator id in this source, matching happens downstream by name.
func AuxilioMoradia(rec any) (Record, error) {
	return AuxilioMoradiaSchema.finish(Record{
		"nome_parlamentar": Field(rec, "nomeParlamentar"),
		"estado_eleito":    Field(rec, "estadoEleito"),
		"partido_eleito":   Field(rec, "partidoEleito"),
		"auxilio_moradia":  Bool(Field(rec, "auxilioMoradia")),
		"imovel_funcional": Bool(Field(rec, "imovelFuncional")),
	})
}
