package registry

import "github.com/patchbay/enginecore/diag"

// Stable REG_* codes, detected once at registry construction time. A
// registry that fails validation is a startup error in any caller — the
// registry is never partially valid.
const (
	CodeDuplicateType       diag.Code = "REG_DUPLICATE_TYPE"
	CodeNotKebabCase        diag.Code = "REG_NOT_KEBAB_CASE"
	CodeMissingField        diag.Code = "REG_MISSING_FIELD"
	CodeInvalidArchetype    diag.Code = "REG_INVALID_ARCHETYPE"
	CodePortCountMismatch   diag.Code = "REG_PORT_COUNT_MISMATCH"
	CodeControlDisallowed   diag.Code = "REG_CONTROL_ON_DISALLOWED_LAYOUT"
	CodeMissingOnSignal     diag.Code = "REG_MISSING_ON_SIGNAL"
	CodeDefaultParamInvalid diag.Code = "REG_DEFAULT_PARAM_OUT_OF_RANGE"
)
