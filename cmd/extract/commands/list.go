package commands

import (
	"io"
	"strings"

	"congressdata/internal/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderList(w io.Writer, defs []pipeline.Definition) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Extractor", "Args", "Requires", "Description"})
	for _, d := range defs {
		tags := make([]string, len(d.Args))
		for i, tag := range d.Args {
			tags[i] = "--" + string(tag)
		}
		t.AppendRow(table.Row{d.Name, strings.Join(tags, " "), strings.Join(d.Requires, ", "), d.Description})
	}
	t.Render()
}
