package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Outcome is the result of one extractor in a run.
type Outcome struct {
	Name     string
	State    State
	Rows     int
	Err      error
	Duration time.Duration
}

// Report is printed at the end of a run and never persisted.
type Report struct {
	Outcomes []Outcome
}

func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r Report) Rows() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Rows
	}
	return total
}

// Render writes the report as a table.
func (r Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Extractor", "State", "Rows", "Duration", "Error"})
	for _, o := range r.Outcomes {
		errText := ""
		if o.Err != nil {
			errText = truncate(o.Err.Error(), 80)
		}
		t.AppendRow(table.Row{o.Name, string(o.State), o.Rows, o.Duration.Round(time.Millisecond).String(), errText})
	}
	t.AppendFooter(table.Row{"", "", r.Rows(), "", ""})
	t.Render()
}

// truncate shortens s to at most n characters, never splitting one.
func truncate(s string, n int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-3]) + "..."
}
