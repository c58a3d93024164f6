package extractors

import (
	"context"
	"errors"
	"fmt"

	"congressdata/internal/bulk"
	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
	"congressdata/internal/upstream"
	"congressdata/internal/window"
)

const report_emendas_archive = "emendas.archive"

const (
	// first year with a per document archive
	documentosFirstYear = 2014
	// co-sponsorship archives exist for 2020 through 2025
	apoiamentoFirstYear = 2020
	apoiamentoLastYear  = 2025
)

// archive downloads and parses one zip as a unit. An archive the portal has not published
// is empty, not a failure.
func (r *run) archive(ctx context.Context, path string, dataset flatten.BulkDataset, dst *[]flatten.Record) {
	r.units.Do(ctx, path, func(ctx context.Context) (int, error) {
		data, err := r.env.CGU.Download(ctx, path)
		if errors.Is(err, upstream.ErrNotFound) {
			r.tel.ReportDebug("archive not published", path)
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		result, err := bulk.Extract(data, dataset)
		if err != nil {
			return 0, &upstream.ShapeError{URL: path, Err: err}
		}
		if result.Skipped > 0 {
			r.tel.ReportWarning(report_emendas_archive, path, "skipped malformed rows", result.Skipped)
		}
		*dst = append(*dst, result.Records...)
		return len(result.Records), nil
	})
}

// Emendas writes the three parliamentary amendment datasets of the transparency portal:
// the all-years summary, expense documents from 2014 and co-sponsorships from 2020.
func (e Extractors) Emendas(ctx context.Context, args pipeline.Args) (int, error) {
	r := e.begin("emendas")

	end := args.EndYear
	if end == 0 {
		end = r.today.Year()
	}

	var resumo []flatten.Record
	r.archive(ctx, "/emendas-parlamentares/EmendasParlamentares.zip", flatten.EmendasParlamentares, &resumo)

	var documentos []flatten.Record
	for _, year := range window.Years(documentosFirstYear, end, r.today) {
		path := fmt.Sprintf("/emendas-parlamentares-documentos/%d_EmendasParlamentaresPorDocumento.zip", year)
		r.archive(ctx, path, flatten.EmendasDocumentos, &documentos)
	}

	var apoiamento []flatten.Record
	for _, year := range window.Years(apoiamentoFirstYear, min(end, apoiamentoLastYear), r.today) {
		path := fmt.Sprintf("/emendas-parlamentares-apoiamento/%d_ApoiamentoEmendasParlamentares.zip", year)
		r.archive(ctx, path, flatten.ApoiamentoEmendas, &apoiamento)
	}

	return r.write(ctx,
		pending{flatten.EmendasParlamentares.Schema, resumo},
		pending{flatten.EmendasDocumentos.Schema, documentos},
		pending{flatten.ApoiamentoEmendas.Schema, apoiamento},
	)
}
