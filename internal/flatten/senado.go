package flatten

var SenadoresSchema = Schema{
	Name: "senadores",
	Columns: []string{
		"senador_id", "nome_parlamentar", "nome_completo", "sexo", "foto_url", "pagina_url",
		"email", "partido_sigla", "estado_sigla", "data_nascimento", "naturalidade", "uf_naturalidade",
	},
	Key: []string{"senador_id"},
}

// Senator flattens DetalheParlamentar.Parlamentar from /senador/{code}.
func Senator(parlamentar any) (Record, error) {
	ident := Nested(parlamentar, "IdentificacaoParlamentar")
	dados := Nested(parlamentar, "DadosBasicosParlamentar")
	return SenadoresSchema.finish(Record{
		"senador_id":       Text(Field(ident, "CodigoParlamentar")),
		"nome_parlamentar": Field(ident, "NomeParlamentar"),
		"nome_completo":    Field(ident, "NomeCompletoParlamentar"),
		"sexo":             Field(ident, "SexoParlamentar"),
		"foto_url":         Field(ident, "UrlFotoParlamentar"),
		"pagina_url":       Field(ident, "UrlPaginaParlamentar"),
		"email":            Field(ident, "EmailParlamentar"),
		"partido_sigla":    Field(ident, "SiglaPartidoParlamentar"),
		"estado_sigla":     Field(ident, "UfParlamentar"),
		"data_nascimento":  Field(dados, "DataNascimento"),
		"naturalidade":     Field(dados, "Naturalidade"),
		"uf_naturalidade":  Field(dados, "UfNaturalidade"),
	})
}

var MandatosSchema = Schema{
	Name: "mandatos",
	Columns: []string{
		"senador_id", "mandato_id", "estado_sigla", "data_inicio", "data_fim",
		"legislatura_inicio", "legislatura_fim", "descricao_participacao",
	},
	Key: []string{"senador_id", "mandato_id"},
}

// Mandate flattens one entry of MandatoParlamentar.Parlamentar.Mandatos.Mandato. A mandate
// spans two legislatures, it starts with the first and ends with the second.
func Mandate(senadorID string, mandato any) (Record, error) {
	first := Nested(mandato, "PrimeiraLegislaturaDoMandato")
	second := Nested(mandato, "SegundaLegislaturaDoMandato")
	return MandatosSchema.finish(Record{
		"senador_id":             Text(senadorID),
		"mandato_id":             Text(Field(mandato, "CodigoMandato")),
		"estado_sigla":           Field(mandato, "UfParlamentar"),
		"data_inicio":            Field(first, "DataInicio"),
		"data_fim":               Field(second, "DataFim"),
		"legislatura_inicio":     Text(Field(first, "NumeroLegislatura")),
		"legislatura_fim":        Text(Field(second, "NumeroLegislatura")),
		"descricao_participacao": Field(mandato, "DescricaoParticipacao"),
	})
}

var VotacoesSchema = Schema{
	Name: "votacoes",
	Columns: []string{
		"codigo_sessao_votacao", "codigo_votacao_sve", "codigo_sessao", "codigo_sessao_legislativa",
		"sigla_tipo_sessao", "numero_sessao", "data_sessao", "id_processo", "codigo_materia",
		"identificacao", "sigla_materia", "numero_materia", "ano_materia", "data_apresentacao",
		"ementa", "sequencial_sessao", "votacao_secreta", "descricao_votacao", "resultado_votacao",
		"total_votos_sim", "total_votos_nao", "total_votos_abstencao", "informe_texto",
	},
	Key: []string{"codigo_sessao_votacao"},
}

// Votacao flattens the session level fields of a /votacao entry, its votos are exploded
// separately with Voto.
func Votacao(v any) (Record, error) {
	return VotacoesSchema.finish(Record{
		"codigo_sessao_votacao":     Text(Field(v, "codigoSessaoVotacao")),
		"codigo_votacao_sve":        Field(v, "codigoVotacaoSve"),
		"codigo_sessao":             Field(v, "codigoSessao"),
		"codigo_sessao_legislativa": Field(v, "codigoSessaoLegislativa"),
		"sigla_tipo_sessao":         Field(v, "siglaTipoSessao"),
		"numero_sessao":             Field(v, "numeroSessao"),
		"data_sessao":               Field(v, "dataSessao"),
		"id_processo":               Field(v, "idProcesso"),
		"codigo_materia":            Field(v, "codigoMateria"),
		"identificacao":             Field(v, "identificacao"),
		"sigla_materia":             Field(v, "sigla"),
		"numero_materia":            Text(Field(v, "numero")),
		"ano_materia":               Field(v, "ano"),
		"data_apresentacao":         Field(v, "dataApresentacao"),
		"ementa":                    Field(v, "ementa"),
		"sequencial_sessao":         Field(v, "sequencialSessao"),
		"votacao_secreta":           Field(v, "votacaoSecreta"),
		"descricao_votacao":         Field(v, "descricaoVotacao"),
		"resultado_votacao":         Field(v, "resultadoVotacao"),
		"total_votos_sim":           Field(v, "totalVotosSim"),
		"total_votos_nao":           Field(v, "totalVotosNao"),
		"total_votos_abstencao":     Field(v, "totalVotosAbstencao"),
		"informe_texto":             Field(Nested(v, "informeLegislativo"), "texto"),
	})
}

var VotosSchema = Schema{
	Name: "votos",
	Columns: []string{
		"codigo_sessao_votacao", "codigo_parlamentar", "nome_parlamentar", "sexo_parlamentar",
		"sigla_partido", "sigla_uf", "sigla_voto", "descricao_voto",
	},
	Key: []string{"codigo_sessao_votacao", "codigo_parlamentar"},
}

func Voto(codigoSessaoVotacao any, voto any) (Record, error) {
	return VotosSchema.finish(Record{
		"codigo_sessao_votacao": Text(codigoSessaoVotacao),
		"codigo_parlamentar":    Text(Field(voto, "codigoParlamentar")),
		"nome_parlamentar":      Field(voto, "nomeParlamentar"),
		"sexo_parlamentar":      Field(voto, "sexoParlamentar"),
		"sigla_partido":         Field(voto, "siglaPartidoParlamentar"),
		"sigla_uf":              Field(voto, "siglaUFParlamentar"),
		"sigla_voto":            Field(voto, "siglaVotoParlamentar"),
		"descricao_voto":        Field(voto, "descricaoVotoParlamentar"),
	})
}

var ComissoesSchema = Schema{
	Name: "comissoes",
	Columns: []string{
		"codigo_comissao", "sigla_comissao", "nome_comissao", "finalidade", "sigla_casa",
		"codigo_tipo", "sigla_tipo", "descricao_tipo", "data_inicio", "data_fim", "publica",
		"qtd_titulares", "qtd_senadores_titulares", "qtd_deputados_titulares", "fonte",
	},
	Key: []string{"codigo_comissao"},
}

// Colegiado flattens one /comissao/lista/colegiados entry, member counts only exist
// for joint committees and stay nil.
func Colegiado(c any) (Record, error) {
	return ComissoesSchema.finish(Record{
		"codigo_comissao":         Text(Field(c, "Codigo")),
		"sigla_comissao":          Field(c, "Sigla"),
		"nome_comissao":           Field(c, "Nome"),
		"finalidade":              Field(c, "Finalidade"),
		"sigla_casa":              Field(c, "SiglaCasa"),
		"codigo_tipo":             Field(c, "CodigoTipoColegiado"),
		"sigla_tipo":              Field(c, "SiglaTipoColegiado"),
		"descricao_tipo":          Field(c, "DescricaoTipoColegiado"),
		"data_inicio":             Field(c, "DataInicio"),
		"data_fim":                Field(c, "DataFim"),
		"publica":                 YesNo(Field(c, "Publica")),
		"qtd_titulares":           nil,
		"qtd_senadores_titulares": nil,
		"qtd_deputados_titulares": nil,
		"fonte":                   "colegiados",
	})
}

// Mista flattens one /comissao/lista/mistas entry. Joint committees use *Colegiado keys
// and report member counts as strings.
func Mista(c any) (Record, error) {
	qtd := Nested(c, "QuantidadesMembros")
	return ComissoesSchema.finish(Record{
		"codigo_comissao":         Text(Field(c, "CodigoColegiado")),
		"sigla_comissao":          Field(c, "SiglaColegiado"),
		"nome_comissao":           Field(c, "NomeColegiado"),
		"finalidade":              Field(c, "Finalidade"),
		"sigla_casa":              "CN",
		"codigo_tipo":             nil,
		"sigla_tipo":              "MISTA",
		"descricao_tipo":          "Comissão Mista",
		"data_inicio":             nil,
		"data_fim":                nil,
		"publica":                 nil,
		"qtd_titulares":           Int(Field(qtd, "Titulares")),
		"qtd_senadores_titulares": Int(Field(qtd, "SenadoresTitulares")),
		"qtd_deputados_titulares": Int(Field(qtd, "DeputadosTitulares")),
		"fonte":                   "mistas",
	})
}

var MembrosComissaoSchema = Schema{
	Name: "membros_comissao",
	Columns: []string{
		"senador_id", "codigo_comissao", "sigla_comissao", "nome_comissao", "sigla_casa",
		"descricao_participacao", "data_inicio", "data_fim",
	},
	Key: []string{"senador_id", "codigo_comissao", "data_inicio"},
}

// Membro flattens one MembroComissaoParlamentar.Parlamentar.MembroComissoes.Comissao entry.
func Membro(senadorID string, comissao any) (Record, error) {
	ident := Nested(comissao, "IdentificacaoComissao")
	return MembrosComissaoSchema.finish(Record{
		"senador_id":             Text(senadorID),
		"codigo_comissao":        Text(Field(ident, "CodigoComissao")),
		"sigla_comissao":         Field(ident, "SiglaComissao"),
		"nome_comissao":          Field(ident, "NomeComissao"),
		"sigla_casa":             Field(ident, "SiglaCasaComissao"),
		"descricao_participacao": Field(comissao, "DescricaoParticipacao"),
		"data_inicio":            Field(comissao, "DataInicio"),
		"data_fim":               Field(comissao, "DataFim"),
	})
}

var LiderancasSchema = Schema{
	Name: "liderancas",
	Columns: []string{
		"codigo", "casa", "sigla_tipo_unidade_lideranca", "descricao_tipo_unidade",
		"codigo_parlamentar", "nome_parlamentar", "data_designacao", "sigla_tipo_lideranca",
		"descricao_tipo_lideranca", "numero_ordem_vice_lider", "codigo_partido", "sigla_partido",
		"nome_partido", "codigo_partido_filiacao", "sigla_partido_filiacao", "nome_partido_filiacao",
	},
	Key: []string{"codigo"},
}

// Lideranca flattens one /composicao/lideranca entry. Party fields are only present for
// party and bloc leaders, government leaders carry the affiliation fields instead.
func Lideranca(rec any) (Record, error) {
	return LiderancasSchema.finish(Record{
		"codigo":                       Field(rec, "codigo"),
		"casa":                         Field(rec, "casa"),
		"sigla_tipo_unidade_lideranca": Field(rec, "siglaTipoUnidadeLideranca"),
		"descricao_tipo_unidade":       Field(rec, "descricaoTipoUnidadeLideranca"),
		"codigo_parlamentar":           Text(Field(rec, "codigoParlamentar")),
		"nome_parlamentar":             Field(rec, "nomeParlamentar"),
		"data_designacao":              Field(rec, "dataDesignacao"),
		"sigla_tipo_lideranca":         Field(rec, "siglaTipoLideranca"),
		"descricao_tipo_lideranca":     Field(rec, "descricaoTipoLideranca"),
		"numero_ordem_vice_lider":      Field(rec, "numeroOrdemViceLider"),
		"codigo_partido":               Text(Field(rec, "codigoPartido")),
		"sigla_partido":                Field(rec, "siglaPartido"),
		"nome_partido":                 Field(rec, "nomePartido"),
		"codigo_partido_filiacao":      Text(Field(rec, "codigoPartidoFiliacao")),
		"sigla_partido_filiacao":       Field(rec, "siglaPartidoFiliacao"),
		"nome_partido_filiacao":        Field(rec, "nomePartidoFiliacao"),
	})
}

var ProcessosSchema = Schema{
	Name: "processos",
	Columns: []string{
		"id_processo", "codigo_materia", "identificacao", "sigla_materia", "numero_materia",
		"ano_materia", "ementa", "tipo_documento", "data_apresentacao", "autoria",
		"casa_identificadora", "tramitando", "data_ultima_atualizacao", "url_documento",
	},
	Key:  []string{"id_processo"},
	Sort: []string{"ano_materia", "sigla_materia", "id_processo"},
}

// Processo flattens one /processo entry, sigla/numero/ano are parsed out of the
// "PL 1234/2025" shaped identificacao.
func Processo(rec any) (Record, error) {
	var identificacao any
	var sigla, numero, ano any
	if ident, ok := Field(rec, "identificacao").(string); ok && ident != "" {
		identificacao = ident
		sigla, numero, ano = ParseIdentifier(ident)
	}
	return ProcessosSchema.finish(Record{
		"id_processo":             Field(rec, "id"),
		"codigo_materia":          Field(rec, "codigoMateria"),
		"identificacao":           identificacao,
		"sigla_materia":           sigla,
		"numero_materia":          numero,
		"ano_materia":             ano,
		"ementa":                  Field(rec, "ementa"),
		"tipo_documento":          Field(rec, "tipoDocumento"),
		"data_apresentacao":       Field(rec, "dataApresentacao"),
		"autoria":                 Field(rec, "autoria"),
		"casa_identificadora":     Field(rec, "casaIdentificadora"),
		"tramitando":              Field(rec, "tramitando"),
		"data_ultima_atualizacao": Field(rec, "dataUltimaAtualizacao"),
		"url_documento":           Field(rec, "urlDocumento"),
	})
}
