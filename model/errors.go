package model

import "github.com/patchbay/enginecore/diag"

// Stable MODEL_* codes. An op batch is rejected whole when any op fails one
// of these checks — there is never a partial commit.
const (
	CodeInvalidPosition     diag.Code = "MODEL_INVALID_POSITION"
	CodeUnknownNodeType     diag.Code = "MODEL_UNKNOWN_NODE_TYPE"
	CodeDuplicateID         diag.Code = "MODEL_DUPLICATE_ID"
	CodePortInvalid         diag.Code = "MODEL_PORT_INVALID"
	CodeEdgeDirectionInvalid diag.Code = "MODEL_EDGE_DIRECTION_INVALID"
	CodeEdgeDanglingEndpoint diag.Code = "MODEL_EDGE_DANGLING_ENDPOINT"
	CodePortAlreadyConnected diag.Code = "MODEL_PORT_ALREADY_CONNECTED"
	CodeInvalidRotation     diag.Code = "MODEL_INVALID_ROTATION"
	CodeGroupRefInvalid     diag.Code = "MODEL_GROUP_REF_INVALID"
	CodeUnknownEntity       diag.Code = "MODEL_UNKNOWN_ENTITY"
)
