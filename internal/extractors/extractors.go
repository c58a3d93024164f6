// Package extractors holds every extractor the pipeline can run. Each one plans its units
// of work, fetches through the upstream clients, flattens and hands whole tables to the
// store.
package extractors

import (
	"context"
	"errors"
	"time"

	"congressdata/internal/components/assert"
	"congressdata/internal/components/chrono"
	"congressdata/internal/components/telemetry"
	"congressdata/internal/flatten"
	"congressdata/internal/pipeline"
	"congressdata/internal/table"
	"congressdata/internal/upstream"
	"congressdata/internal/window"
)

const (
	report_extractor_flatten = "extractor.flatten"
	report_extractor_write   = "extractor.write"
)

// Env is everything an extractor needs, built once at start up.
type Env struct {
	Legis  *upstream.Client
	Adm    *upstream.Client
	Camara *upstream.Client
	CGU    *upstream.Client

	Store  *table.Store
	Clock  chrono.TimeAPI
	Tel    telemetry.API
	Policy upstream.RetryPolicy

	// Legislatures are the Chamber legislatures whose deputies are listed.
	Legislatures []int
}

// Extractors implements the registered extractors over one Env.
type Extractors struct {
	env Env
}

func New(env Env) Extractors {
	assert.NotNil(env.Legis)
	assert.NotNil(env.Adm)
	assert.NotNil(env.Camara)
	assert.NotNil(env.CGU)
	assert.NotNil(env.Store)
	assert.NotNil(env.Clock)
	assert.NotNil(env.Tel)
	if env.Policy.Attempts == nil {
		env.Policy = upstream.DefaultRetryPolicy()
	}
	if len(env.Legislatures) == 0 {
		env.Legislatures = []int{56, 57}
	}
	return Extractors{env: env}
}

// run is the state shared by the units of one extractor invocation.
type run struct {
	env   Env
	tel   telemetry.API
	units *pipeline.UnitRunner
	today time.Time
}

func (e Extractors) begin(name string) *run {
	tel := telemetry.NewScopedAPI(name, e.env.Tel)
	return &run{
		env:   e.env,
		tel:   tel,
		units: pipeline.NewUnitRunner(tel, e.env.Policy),
		today: chrono.Today(e.env.Clock.Now()),
	}
}

// flatten applies fn to every item, records without their natural key are dropped and
// counted. Any other flatten error is a shape error of the unit that fetched the items.
func (r *run) flatten(source string, items []any, fn func(item any) (flatten.Record, error)) ([]flatten.Record, error) {
	records, dropped, err := flatten.Each(items, fn)
	r.dropped(source, dropped)
	if err != nil {
		return nil, &upstream.ShapeError{URL: source, Err: err}
	}
	return records, nil
}

func (r *run) dropped(source string, n int) {
	if n > 0 {
		r.tel.ReportWarning(report_extractor_flatten, source, "dropped records without natural key", n)
	}
}

// keep sorts a flatten error into "drop the record" (missing key) and "fail the unit".
func keep(source string, err error, dropped *int) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, flatten.ErrMissingKey) {
		*dropped++
		return false, nil
	}
	return false, &upstream.ShapeError{URL: source, Err: err}
}

// pending is one table waiting to be written.
type pending struct {
	schema  flatten.Schema
	records []flatten.Record
}

// write persists every table even when one of them fails, the returned row count is the
// sum over the tables that were written.
func (r *run) write(ctx context.Context, tables ...pending) (int, error) {
	total := 0
	var errs []error
	for _, t := range tables {
		n, err := r.env.Store.Write(ctx, t.schema, t.records)
		if err != nil {
			r.tel.ReportBroken(report_extractor_write, t.schema.Name, err)
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

func years(args pipeline.Args, today time.Time) []int {
	end := args.EndYear
	if end == 0 {
		end = today.Year()
	}
	return window.Years(args.StartYear, end, today)
}

func text(v any) string {
	s, _ := flatten.Text(v).(string)
	return s
}
