package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"congressdata/internal/components/assert"
	"congressdata/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_orchestrator_run        = "orchestrator.run"
	report_orchestrator_dependency = "orchestrator.dependency"
)

var (
	ErrUnknownExtractor  = errors.New("unknown extractor")
	ErrMissingDependency = errors.New("missing dependency")
)

var tracer = otel.Tracer("congressdata/pipeline")
var meter = otel.Meter("congressdata/pipeline")
var rowsCounter, _ = meter.Int64Counter("extractor_rows", metric.WithDescription("rows written per extractor"))
var failuresCounter, _ = meter.Int64Counter("extractor_failures")

// TableChecker reports whether an output table exists.
type TableChecker interface {
	Exists(name string) bool
}

// Orchestrator runs registry entries one at a time, a failing extractor never stops the run.
type Orchestrator struct {
	defs   []Definition
	tables TableChecker
	tel    telemetry.API

	// OnFinish is called after every extractor, finished or failed.
	OnFinish func(ctx context.Context, outcome Outcome)
}

func NewOrchestrator(defs []Definition, tables TableChecker, tel telemetry.API) (*Orchestrator, error) {
	assert.NotNil(tables)
	assert.NotNil(tel)

	err := validate(defs)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		defs:   defs,
		tables: tables,
		tel:    telemetry.NewScopedAPI("pipeline", tel),
	}, nil
}

func (o *Orchestrator) Names() []string {
	names := make([]string, len(o.defs))
	for i, d := range o.defs {
		names[i] = d.Name
	}
	return names
}

// Select returns every definition in registry order when only is empty, otherwise the named
// ones in the given order. Any unknown name fails the whole selection.
func (o *Orchestrator) Select(only []string) ([]Definition, error) {
	if len(only) == 0 {
		return o.defs, nil
	}

	byName := make(map[string]Definition, len(o.defs))
	for _, d := range o.defs {
		byName[d.Name] = d
	}

	var unknown []string
	selected := make([]Definition, 0, len(only))
	for _, name := range only {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, d)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf(
			"%w: %s (valid: %s)",
			ErrUnknownExtractor,
			strings.Join(unknown, ", "),
			strings.Join(o.Names(), ", "),
		)
	}
	return selected, nil
}

// Run executes the selected definitions in order, forwarding only the args each declared.
func (o *Orchestrator) Run(ctx context.Context, selected []Definition, args Args) Report {
	report := Report{Outcomes: make([]Outcome, len(selected))}
	for i, d := range selected {
		report.Outcomes[i] = Outcome{Name: d.Name, State: StatePending}
	}

	for i, d := range selected {
		outcome := &report.Outcomes[i]
		outcome.State = StateRunning
		o.tel.ReportDebug("starting extractor", d.Name)

		start := time.Now()
		rows, err := o.runOne(ctx, d, args)
		outcome.Duration = time.Since(start)
		outcome.Rows = rows
		if err != nil {
			outcome.State = StateFailed
			outcome.Err = err
			o.tel.ReportBroken(report_orchestrator_run, d.Name, err)
			failuresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("extractor", d.Name)))
		} else {
			outcome.State = StateSucceeded
			o.tel.ReportProgress(d.Name, "outcome", "ok", "rows", rows, "duration", outcome.Duration.Round(time.Millisecond))
			rowsCounter.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("extractor", d.Name)))
		}

		if o.OnFinish != nil {
			o.OnFinish(ctx, *outcome)
		}
	}
	return report
}

func (o *Orchestrator) runOne(ctx context.Context, d Definition, args Args) (rows int, err error) {
	ctx, span := tracer.Start(ctx, d.Name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	for _, table := range d.Requires {
		if !o.tables.Exists(table) {
			o.tel.ReportWarning(report_orchestrator_dependency, d.Name, table)
			return 0, fmt.Errorf("%w: %s needs table %s, run the extractor that writes it first", ErrMissingDependency, d.Name, table)
		}
	}

	return d.Run(ctx, args.Filter(d.Args))
}
