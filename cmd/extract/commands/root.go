package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"congressdata/internal/components/chrono"
	comptelemetry "congressdata/internal/components/telemetry"
	"congressdata/internal/extractors"
	"congressdata/internal/pipeline"
	"congressdata/internal/table"
	"congressdata/internal/upstream"
	"congressdata/lib/telemetry"
	"congressdata/lib/workspace"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2

	dateLayout = "2006-01-02"
)

// Streams are where the command writes its tables and its log.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// usageError marks errors caused by the invocation itself.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

type flags struct {
	only      []string
	list      bool
	startYear int
	endYear   int
	startDate string
	endDate   string
	config    string
	verbose   bool
}

// Execute runs the extract command with argv and returns the process exit code. Extractor
// failures are reported in the summary but never change the exit code.
func Execute(ctx context.Context, argv []string, streams Streams, clock chrono.TimeAPI) int {
	cmd := newRootCmd(streams, clock)
	cmd.SetArgs(argv)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(streams.Stderr, "error:", err)
	var usage usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitFatal
}

func newRootCmd(streams Streams, clock chrono.TimeAPI) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "extract [--only name,...] [--start-year Y] [--end-year Y] [--start-date D] [--end-date D]",
		Short: "Extracts Brazilian Senate, Chamber and transparency portal records into Parquet tables.",
		Args: func(cmd *cobra.Command, args []string) error {
			err := cobra.NoArgs(cmd, args)
			if err != nil {
				return usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, streams, clock)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(streams.Stdout)
	cmd.SetErr(streams.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	fs := cmd.Flags()
	fs.StringSliceVar(&f.only, "only", nil, "Run only these extractors, in the given order.")
	fs.BoolVar(&f.list, "list", false, "List the available extractors and exit.")
	fs.IntVar(&f.startYear, "start-year", 2019, "First year for year-ranged extractors.")
	fs.IntVar(&f.endYear, "end-year", 0, "Last year for year-ranged extractors (default current year).")
	fs.StringVar(&f.startDate, "start-date", "2019-02-01", "First day for date-ranged extractors, YYYY-MM-DD.")
	fs.StringVar(&f.endDate, "end-date", "", "Last day for date-ranged extractors, YYYY-MM-DD (default today).")
	fs.StringVar(&f.config, "config", "extract.json5", "Config file, relative paths resolve against the workspace root.")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log every request and unit.")
	return cmd
}

// args validates the temporal flags against today.
func (f *flags) args(today time.Time) (pipeline.Args, error) {
	out := pipeline.Args{
		StartYear: f.startYear,
		EndYear:   f.endYear,
		EndDate:   today,
	}
	if out.EndYear == 0 {
		out.EndYear = today.Year()
	}
	if out.StartYear > out.EndYear {
		return out, usagef("--start-year %d is after --end-year %d", out.StartYear, out.EndYear)
	}

	var err error
	out.StartDate, err = time.ParseInLocation(dateLayout, f.startDate, chrono.SaoPaulo())
	if err != nil {
		return out, usagef("--start-date: %w", err)
	}
	if f.endDate != "" {
		out.EndDate, err = time.ParseInLocation(dateLayout, f.endDate, chrono.SaoPaulo())
		if err != nil {
			return out, usagef("--end-date: %w", err)
		}
	}
	if out.StartDate.After(out.EndDate) {
		return out, usagef("--start-date %s is after --end-date %s", f.startDate, out.EndDate.Format(dateLayout))
	}
	return out, nil
}

func run(ctx context.Context, f *flags, streams Streams, clock chrono.TimeAPI) error {
	runID := uuid.NewString()
	logger := telemetry.NewLogger(streams.Stderr, f.verbose).With("run_id", runID)
	slog.SetDefault(logger)

	otel, err := telemetry.SetupFromEnv(ctx, "congressdata-extract")
	if err != nil {
		return err
	}
	defer func() {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	if f.list {
		renderList(streams.Stdout, extractors.Catalog())
		return nil
	}

	today := chrono.Today(clock.Now())
	args, err := f.args(today)
	if err != nil {
		return err
	}

	configPath, err := workspace.ResolvePath(f.config)
	if err != nil {
		return err
	}
	config, err := loadConfig(configPath)
	if err != nil {
		return usagef("config %s: %w", configPath, err)
	}
	outputDir, err := workspace.ResolvePath(config.OutputDir)
	if err != nil {
		return err
	}

	tel := comptelemetry.SlogAPI{Logger: logger}
	store, err := table.Open(outputDir, tel)
	if err != nil {
		return err
	}
	defer store.Close()

	p := config.profiles()
	env := extractors.Env{
		Legis:        upstream.NewClient(p.legis, tel),
		Adm:          upstream.NewClient(p.adm, tel),
		Camara:       upstream.NewClient(p.camara, tel),
		CGU:          upstream.NewClient(p.cgu, tel),
		Store:        store,
		Clock:        clock,
		Tel:          tel,
		Legislatures: config.Camara.Legislatures,
	}
	orchestrator, err := pipeline.NewOrchestrator(extractors.Registry(env), store, tel)
	if err != nil {
		return err
	}

	selected, err := orchestrator.Select(f.only)
	if err != nil {
		return usageError{err: err}
	}

	orchestrator.OnFinish = func(ctx context.Context, outcome pipeline.Outcome) {
		stats := telemetry.RecordPerfStats(ctx, outcome.Name)
		slog.Debug(
			"perf stats",
			"extractor", outcome.Name,
			"cpu_percent", stats.CPUPercent,
			"allocated_mb", stats.AllocatedMB,
			"goroutines", stats.Goroutines,
		)
	}

	slog.Info(
		"run started",
		"extractors", len(selected),
		"output_dir", outputDir,
		"years", fmt.Sprintf("%d-%d", args.StartYear, args.EndYear),
		"dates", fmt.Sprintf("%s..%s", args.StartDate.Format(dateLayout), args.EndDate.Format(dateLayout)),
	)
	report := orchestrator.Run(ctx, selected, args)
	report.Render(streams.Stdout)
	slog.Info("run finished", "rows", report.Rows(), "failed", len(report.Failed()))
	return nil
}
