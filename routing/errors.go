package routing

import "github.com/patchbay/enginecore/diag"

// Stable ROUTE_* codes. Each applies to exactly one edge; a failed edge
// produces no geometry and no delay, and the rest of the batch routes
// normally.
const (
	CodeMissingNode   diag.Code = "ROUTE_MISSING_NODE"
	CodeMissingEdge   diag.Code = "ROUTE_MISSING_EDGE"
	CodeInvalidPort   diag.Code = "ROUTE_INVALID_PORT"
	CodeAnchorFail    diag.Code = "ROUTE_ANCHOR_FAIL"
	CodeInternalError diag.Code = "ROUTE_INTERNAL_ERROR"
)
