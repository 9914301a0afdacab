// Package toolkit defines the tool contract every built-in and adapter tool
// implements, plus the registry that looks tools up by name at call time.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
)

// ErrorKind classifies why a tool call failed, independent of the
// human-readable message.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	InvalidInput
	ExecutionFailed
	Timeout
	PermissionDenied
	Internal
)

// Error is the error type every Tool.Execute returns on failure. The
// router translates every kind, NotFound included, into a tools/call
// result with isError=true rather than a JSON-RPC-level error.
type Error struct {
	Kind       ErrorKind
	Message    string
	TimeoutSec uint64 // set only when Kind == Timeout
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("tool not found: %s", e.Message)
	case InvalidInput:
		return fmt.Sprintf("invalid input: %s", e.Message)
	case ExecutionFailed:
		return fmt.Sprintf("execution failed: %s", e.Message)
	case Timeout:
		return fmt.Sprintf("timeout after %d seconds", e.TimeoutSec)
	case PermissionDenied:
		return fmt.Sprintf("permission denied: %s", e.Message)
	default:
		return fmt.Sprintf("internal error: %s", e.Message)
	}
}

func NewNotFound(name string) *Error           { return &Error{Kind: NotFound, Message: name} }
func NewInvalidInput(msg string) *Error        { return &Error{Kind: InvalidInput, Message: msg} }
func NewExecutionFailed(msg string) *Error     { return &Error{Kind: ExecutionFailed, Message: msg} }
func NewTimeout(seconds uint64) *Error         { return &Error{Kind: Timeout, TimeoutSec: seconds} }
func NewPermissionDenied(msg string) *Error    { return &Error{Kind: PermissionDenied, Message: msg} }
func NewInternal(msg string) *Error            { return &Error{Kind: Internal, Message: msg} }

// Output is what a tool returns on success or on a tool-level (not
// protocol-level) failure: an ordered list of content items plus an
// isError flag distinguishing the two.
type Output struct {
	Content []protocol.ContentItem
	IsError bool
}

// Text builds a successful single-item text output.
func Text(text string) *Output {
	return &Output{Content: []protocol.ContentItem{{Type: "text", Text: text}}}
}

// TextErrorf builds a tool-level error output (isError=true) rather than a
// JSON-RPC error — used when the tool ran but the operation it models
// failed (e.g. a shell command exiting non-zero).
func TextErrorf(format string, args ...any) *Output {
	return &Output{
		Content: []protocol.ContentItem{{Type: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// Image builds a successful single-item image output.
func Image(base64Data, mimeType string) *Output {
	return &Output{Content: []protocol.ContentItem{{Type: "image", Data: base64Data, MimeType: mimeType}}}
}

// ToProtocol converts to the wire representation used in a tools/call result.
func (o *Output) ToProtocol() protocol.ToolCallResult {
	return protocol.ToolCallResult{Content: o.Content, IsError: o.IsError}
}

// Tool is the contract every built-in, plugin-backed, and adapter tool
// implements.
type Tool interface {
	// Definition returns the tool's published name, description, and
	// JSON Schema input shape for tools/list.
	Definition() protocol.Tool
	// Execute runs the tool. arguments is the raw JSON object from the
	// tools/call request; state is the shared runtime the tool may read
	// from or mutate (store, secrets, scheduler, config).
	Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*Output, *Error)
}
