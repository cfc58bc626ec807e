package diag

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteIssueTable renders a slice of issues as a formatted table, one row
// per issue, columns {code, entity, message}. Used by cmd/patchctl and by
// build.Render to turn a diagnostics batch into something a human
// can read at a terminal.
func WriteIssueTable(w io.Writer, title string, issues []Issue) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"code", "entity", "message"})

	for _, issue := range issues {
		entity := issue.EntityID
		if entity == "" {
			entity = "-"
		}
		t.AppendRow(table.Row{string(issue.Code), entity, issue.Message})
	}

	if len(issues) == 0 {
		t.AppendRow(table.Row{"-", "-", "none"})
	}

	t.Render()
}
