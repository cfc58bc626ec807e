package runtime

import "github.com/patchbay/enginecore/diag"

// Stable RUNTIME_* codes. All are warnings: the runtime keeps running a
// live patch even when one node or edge misbehaves, since a performer mid-
// set should never see the whole graph stop over one bad pulse.
const (
	CodeQueueOverflow diag.Code = "RUNTIME_QUEUE_OVERFLOW"
	CodeMissingNode   diag.Code = "RUNTIME_MISSING_NODE"
	CodeMissingEdge   diag.Code = "RUNTIME_MISSING_EDGE"
	CodeInvalidValue  diag.Code = "RUNTIME_INVALID_VALUE"
	CodeLateEvent     diag.Code = "RUNTIME_LATE_EVENT"
)
