package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI implements API on a slog.Logger, the process default when Logger is nil.
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// positional names free-form params params.0, params.1 and so on.
func positional(head []any, params []any) []any {
	out := head
	for i, p := range params {
		out = append(out, fmt.Sprintf("params.%d", i), p)
	}
	return out
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.logger().Error("broken component", positional([]any{"id", id}, params)...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.logger().Warn("warning", positional([]any{"id", id}, params)...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.logger().Debug(message, positional(nil, params)...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().Info("count", "id", id, "n", count)
}

// ReportProgress passes params through as key/value pairs, "count=12" reads better in a
// progress line than "params.1=12".
func (s SlogAPI) ReportProgress(label string, params ...any) {
	s.logger().Info(label, params...)
}
