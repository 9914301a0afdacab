package protocol

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Nexus-specific error codes, in the JSON-RPC reserved server-error range.
const (
	CodeServerError    = -32000 // generic server-side failure
	CodeTransportError = -32001
	CodeConfigError    = -32002
)
