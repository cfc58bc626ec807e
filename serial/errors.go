package serial

import "github.com/patchbay/enginecore/diag"

// Stable SERIAL_* codes. VersionMigrated is a warning; the other two are
// errors, and on either the caller keeps its last valid graph.
const (
	CodeMalformedJSON      diag.Code = "SERIAL_MALFORMED_JSON"
	CodeVersionUnsupported diag.Code = "SERIAL_VERSION_UNSUPPORTED"
	CodeVersionMigrated    diag.Code = "SERIAL_VERSION_MIGRATED"
)
