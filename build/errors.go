package build

import "github.com/patchbay/enginecore/diag"

// Stable BUILD_* codes, surfaced together in one Result so an author sees
// every problem in a graph at once instead of one-at-a-time. Any error
// means no compiled graph is produced and the caller keeps its last valid
// one.
const (
	CodeUnknownNodeType     diag.Code = "BUILD_UNKNOWN_NODE_TYPE"
	CodePortSlotInvalid     diag.Code = "BUILD_PORT_SLOT_INVALID"
	CodeSameDirection       diag.Code = "BUILD_SAME_DIRECTION"
	CodeRoleMismatch        diag.Code = "BUILD_ROLE_MISMATCH"
	CodePortAlreadyConnected diag.Code = "BUILD_PORT_ALREADY_CONNECTED"
	CodeMissingDelay        diag.Code = "BUILD_MISSING_DELAY"
	CodeGroupMappingInvalid diag.Code = "BUILD_GROUP_MAPPING_INVALID"
)

// Warning-only codes: the graph still compiles, but the author probably
// wants to know.
const (
	CodeDanglingInput     diag.Code = "BUILD_DANGLING_INPUT"
	CodeUnreachableOutput diag.Code = "BUILD_UNREACHABLE_OUTPUT"
)
