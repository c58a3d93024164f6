package flatten

var CamaraDeputadosListaSchema = Schema{
	Name:    "camara_deputados_lista",
	Columns: []string{"deputado_id", "nome", "sigla_partido", "sigla_uf", "id_legislatura", "url_foto", "email"},
	Key:     []string{"deputado_id", "id_legislatura"},
	Sort:    []string{"id_legislatura", "deputado_id"},
}

// DeputadoLista flattens one /deputados?idLegislatura= entry, a deputy serving in two
// legislatures yields two rows.
func DeputadoLista(rec any, legislatura int) (Record, error) {
	idLegislatura := Int(Field(rec, "idLegislatura"))
	if idLegislatura == nil {
		idLegislatura = int64(legislatura)
	}
	return CamaraDeputadosListaSchema.finish(Record{
		"deputado_id":    Text(Field(rec, "id")),
		"nome":           Field(rec, "nome"),
		"sigla_partido":  Field(rec, "siglaPartido"),
		"sigla_uf":       Field(rec, "siglaUf"),
		"id_legislatura": idLegislatura,
		"url_foto":       Field(rec, "urlFoto"),
		"email":          Field(rec, "email"),
	})
}

var CamaraDeputadosSchema = Schema{
	Name: "camara_deputados",
	Columns: []string{
		"deputado_id", "nome_civil", "nome_parlamentar", "nome_eleitoral", "sigla_partido",
		"sigla_uf", "id_legislatura", "url_foto", "email", "situacao", "condicao_eleitoral",
		"descricao_status", "data_status", "sexo", "data_nascimento", "uf_nascimento",
		"municipio_nascimento", "escolaridade", "telefone_gabinete",
	},
	Key:  []string{"deputado_id"},
	Sort: []string{"deputado_id"},
}

// DeputadoDetalhe flattens /deputados/{id}. Current party and state come from ultimoStatus,
// biography from the top level.
func DeputadoDetalhe(rec any) (Record, error) {
	status := Nested(rec, "ultimoStatus")
	return CamaraDeputadosSchema.finish(Record{
		"deputado_id":          Text(Field(rec, "id")),
		"nome_civil":           Field(rec, "nomeCivil"),
		"nome_parlamentar":     Field(status, "nome"),
		"nome_eleitoral":       Field(status, "nomeEleitoral"),
		"sigla_partido":        Field(status, "siglaPartido"),
		"sigla_uf":             Field(status, "siglaUf"),
		"id_legislatura":       Int(Field(status, "idLegislatura")),
		"url_foto":             Field(status, "urlFoto"),
		"email":                Field(status, "email"),
		"situacao":             Field(status, "situacao"),
		"condicao_eleitoral":   Field(status, "condicaoEleitoral"),
		"descricao_status":     Field(status, "descricaoStatus"),
		"data_status":          Field(status, "data"),
		"sexo":                 Field(rec, "sexo"),
		"data_nascimento":      Field(rec, "dataNascimento"),
		"uf_nascimento":        Field(rec, "ufNascimento"),
		"municipio_nascimento": Field(rec, "municipioNascimento"),
		"escolaridade":         Field(rec, "escolaridade"),
		"telefone_gabinete":    Field(Nested(status, "gabinete"), "telefone"),
	})
}

var CamaraDespesasSchema = Schema{
	Name: "camara_despesas",
	Columns: []string{
		"cod_documento", "deputado_id", "ano", "mes", "tipo_despesa", "cod_tipo_documento",
		"tipo_documento", "data_documento", "num_documento", "valor_documento", "url_documento",
		"nome_fornecedor", "cnpj_cpf_fornecedor", "valor_liquido", "valor_glosa",
		"num_ressarcimento", "cod_lote", "parcela",
	},
	Key:  []string{"cod_documento", "deputado_id"},
	Sort: []string{"ano", "mes", "deputado_id"},
}

// DespesaDeputado flattens one /deputados/{id}/despesas entry. Values already arrive as
// numbers here, unlike the Senate's reimbursements.
func DespesaDeputado(deputadoID string, rec any) (Record, error) {
	return CamaraDespesasSchema.finish(Record{
		"cod_documento":       Text(Field(rec, "codDocumento")),
		"deputado_id":         Text(deputadoID),
		"ano":                 Field(rec, "ano"),
		"mes":                 Field(rec, "mes"),
		"tipo_despesa":        Field(rec, "tipoDespesa"),
		"cod_tipo_documento":  Field(rec, "codTipoDocumento"),
		"tipo_documento":      Field(rec, "tipoDocumento"),
		"data_documento":      Field(rec, "dataDocumento"),
		"num_documento":       Text(Field(rec, "numDocumento")),
		"valor_documento":     Money(Field(rec, "valorDocumento")),
		"url_documento":       Field(rec, "urlDocumento"),
		"nome_fornecedor":     Field(rec, "nomeFornecedor"),
		"cnpj_cpf_fornecedor": Field(rec, "cnpjCpfFornecedor"),
		"valor_liquido":       Money(Field(rec, "valorLiquido")),
		"valor_glosa":         Money(Field(rec, "valorGlosa")),
		"num_ressarcimento":   Text(Field(rec, "numRessarcimento")),
		"cod_lote":            Text(Field(rec, "codLote")),
		"parcela":             Field(rec, "parcela"),
	})
}

var CamaraProposicoesSchema = Schema{
	Name: "camara_proposicoes",
	Columns: []string{
		"proposicao_id", "deputado_id_autor", "sigla_tipo", "cod_tipo", "numero", "ano", "ementa",
		"ementa_detalhada", "keywords", "data_apresentacao", "sigla_orgao_status", "regime_status",
		"descricao_situacao", "cod_situacao", "apreciacao", "url_inteiro_teor",
	},
	Key:  []string{"proposicao_id", "deputado_id_autor"},
	Sort: []string{"ano", "proposicao_id"},
}

// Proposicao flattens one /proposicoes?idDeputadoAutor= entry, the author is the deputy
// the request was made for.
func Proposicao(rec any, deputadoID string) (Record, error) {
	status := Nested(rec, "statusProposicao")
	return CamaraProposicoesSchema.finish(Record{
		"proposicao_id":      Text(Field(rec, "id")),
		"deputado_id_autor":  Text(deputadoID),
		"sigla_tipo":         Field(rec, "siglaTipo"),
		"cod_tipo":           Field(rec, "codTipo"),
		"numero":             Field(rec, "numero"),
		"ano":                Field(rec, "ano"),
		"ementa":             Field(rec, "ementa"),
		"ementa_detalhada":   Field(rec, "ementaDetalhada"),
		"keywords":           Field(rec, "keywords"),
		"data_apresentacao":  Field(rec, "dataApresentacao"),
		"sigla_orgao_status": Field(status, "siglaOrgao"),
		"regime_status":      Field(status, "regime"),
		"descricao_situacao": Field(status, "descricaoSituacao"),
		"cod_situacao":       Field(status, "codSituacao"),
		"apreciacao":         Field(status, "apreciacao"),
		"url_inteiro_teor":   Field(rec, "urlInteiroTeor"),
	})
}

var CamaraVotacoesSchema = Schema{
	Name: "camara_votacoes",
	Columns: []string{
		"votacao_id", "data", "data_hora_registro", "sigla_orgao", "uri_evento",
		"proposicao_objeto", "uri_proposicao", "descricao", "aprovacao",
	},
	Key: []string{"votacao_id"},
}

func VotacaoCamara(v any) (Record, error) {
	return CamaraVotacoesSchema.finish(Record{
		"votacao_id":         Text(Field(v, "id")),
		"data":               Field(v, "data"),
		"data_hora_registro": Field(v, "dataHoraRegistro"),
		"sigla_orgao":        Field(v, "siglaOrgao"),
		"uri_evento":         Field(v, "uriEvento"),
		"proposicao_objeto":  Field(v, "proposicaoObjeto"),
		"uri_proposicao":     Field(v, "uriProposicaoObjeto"),
		"descricao":          Field(v, "descricao"),
		"aprovacao":          Field(v, "aprovacao"),
	})
}

var CamaraVotosSchema = Schema{
	Name: "camara_votos",
	Columns: []string{
		"votacao_id", "deputado_id", "nome", "sigla_partido", "sigla_uf", "id_legislatura",
		"tipo_voto", "data_registro",
	},
	Key: []string{"votacao_id", "deputado_id"},
}

// VotoCamara flattens one /votacoes/{id}/votos entry, the deputy lives under "deputado_"
// with a trailing underscore.
func VotoCamara(votacaoID string, rec any) (Record, error) {
	dep := Nested(rec, "deputado_")
	return CamaraVotosSchema.finish(Record{
		"votacao_id":     Text(votacaoID),
		"deputado_id":    Text(Field(dep, "id")),
		"nome":           Field(dep, "nome"),
		"sigla_partido":  Field(dep, "siglaPartido"),
		"sigla_uf":       Field(dep, "siglaUf"),
		"id_legislatura": Field(dep, "idLegislatura"),
		"tipo_voto":      Field(rec, "tipoVoto"),
		"data_registro":  Field(rec, "dataRegistroVoto"),
	})
}
