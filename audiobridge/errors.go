package audiobridge

import "github.com/patchbay/enginecore/diag"

// Stable AUDIO_* warning codes. The bridge never hard-fails a tick window;
// a bad event is dropped with a warning and scheduling continues.
const (
	CodeMissingSample  diag.Code = "AUDIO_MISSING_SAMPLE"
	CodeLateEvent      diag.Code = "AUDIO_LATE_EVENT"
	CodeOverflow       diag.Code = "AUDIO_OVERFLOW"
	CodeOversizeEvent  diag.Code = "AUDIO_OVERSIZE_EVENT"
	CodeUnknownMapping diag.Code = "AUDIO_UNKNOWN_MAPPING"
)
