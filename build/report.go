package build

import (
	"io"

	"github.com/patchbay/enginecore/diag"
)

// Render writes a result's errors as a human-readable table, for
// cmd/patchctl's validate subcommand.
func Render(w io.Writer, result diag.Result[*CompiledGraph]) {
	title := "compile ok"
	if !result.OK {
		title = "compile errors"
	}
	diag.WriteIssueTable(w, title, result.Errors)
}
