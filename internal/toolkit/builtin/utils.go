package builtin

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/toolkit"
)

// UUIDGenerate returns a new random (v4) UUID.
type UUIDGenerate struct{}

func (UUIDGenerate) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "uuid.generate",
		Description: "Generates a random UUID (v4).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (UUIDGenerate) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	return marshalOrInternal(map[string]any{"uuid": uuid.NewString()})
}

// Base64Encode encodes arbitrary text as standard base64.
type Base64Encode struct{}

type base64EncodeArgs struct {
	Text string `json:"text"`
}

func (Base64Encode) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "base64.encode",
		Description: "Encodes text as standard base64.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to encode"},
			},
			"required": []string{"text"},
		},
	}
}

func (Base64Encode) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args base64EncodeArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(args.Text))
	return marshalOrInternal(map[string]any{"encoded": encoded})
}

// Base64Decode decodes a standard base64 string back to text.
type Base64Decode struct{}

type base64DecodeArgs struct {
	Encoded string `json:"encoded"`
}

func (Base64Decode) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "base64.decode",
		Description: "Decodes a standard base64 string.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"encoded": map[string]any{"type": "string", "description": "Base64 string to decode"},
			},
			"required": []string{"encoded"},
		},
	}
}

func (Base64Decode) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args base64DecodeArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	decoded, err := base64.StdEncoding.DecodeString(args.Encoded)
	if err != nil {
		return nil, toolkit.NewInvalidInput("invalid base64: " + err.Error())
	}
	return marshalOrInternal(map[string]any{"text": string(decoded)})
}

// JSONParse parses a JSON string and returns the decoded value, erroring
// on malformed input rather than passing it through.
type JSONParse struct{}

type jsonParseArgs struct {
	Text string `json:"text"`
}

func (JSONParse) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "json.parse",
		Description: "Parses a JSON string and returns the decoded value.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "JSON text to parse"},
			},
			"required": []string{"text"},
		},
	}
}

func (JSONParse) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args jsonParseArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	var value any
	if err := json.Unmarshal([]byte(args.Text), &value); err != nil {
		return nil, toolkit.NewInvalidInput("invalid JSON: " + err.Error())
	}
	return marshalOrInternal(map[string]any{"value": value})
}

// JSONQuery walks a dot/bracket path (e.g. "a.b[0].c") into a parsed JSON
// document and returns the value found there.
type JSONQuery struct{}

type jsonQueryArgs struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

func (JSONQuery) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "json.query",
		Description: "Extracts a value from a JSON document using a dotted path (e.g. 'user.tags[0]').",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "JSON text to query"},
				"path": map[string]any{"type": "string", "description": "Dotted path, e.g. 'a.b[0].c'"},
			},
			"required": []string{"text", "path"},
		},
	}
}

func (JSONQuery) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args jsonQueryArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}

	var doc any
	if err := json.Unmarshal([]byte(args.Text), &doc); err != nil {
		return nil, toolkit.NewInvalidInput("invalid JSON: " + err.Error())
	}

	value, found, err := queryJSONPath(doc, args.Path)
	if err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	return marshalOrInternal(map[string]any{"found": found, "value": value})
}

// queryJSONPath resolves a dotted/bracketed path against a decoded JSON
// value. Path segments split on '.'; each segment may carry one or more
// trailing "[n]" array indices, e.g. "items[0].tags[1]".
func queryJSONPath(doc any, path string) (any, bool, error) {
	if path == "" {
		return doc, true, nil
	}

	current := doc
	for _, segment := range strings.Split(path, ".") {
		key, indices, err := splitPathSegment(segment)
		if err != nil {
			return nil, false, err
		}

		if key != "" {
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false, nil
			}
			value, ok := obj[key]
			if !ok {
				return nil, false, nil
			}
			current = value
		}

		for _, idx := range indices {
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false, nil
			}
			current = arr[idx]
		}
	}
	return current, true, nil
}

var pathIndexPattern = regexp.MustCompile(`\[(\d+)\]`)

func splitPathSegment(segment string) (key string, indices []int, err error) {
	bracket := strings.Index(segment, "[")
	key = segment
	if bracket >= 0 {
		key = segment[:bracket]
		for _, m := range pathIndexPattern.FindAllStringSubmatch(segment[bracket:], -1) {
			idx, convErr := strconv.Atoi(m[1])
			if convErr != nil {
				return "", nil, convErr
			}
			indices = append(indices, idx)
		}
	}
	return key, indices, nil
}

// Hash computes a SHA-256 digest of the given text, hex-encoded.
type Hash struct{}

type hashArgs struct {
	Text string `json:"text"`
}

func (Hash) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "hash.sha256",
		Description: "Computes the SHA-256 hash of text, hex-encoded.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to hash"},
			},
			"required": []string{"text"},
		},
	}
}

func (Hash) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args hashArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	sum := sha256.Sum256([]byte(args.Text))
	return marshalOrInternal(map[string]any{
		"algorithm": "sha256",
		"hash":      hex.EncodeToString(sum[:]),
	})
}

// RegexMatch reports whether (and where) a regular expression matches text.
type RegexMatch struct{}

type regexMatchArgs struct {
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

func (RegexMatch) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "regex.match",
		Description: "Tests a regular expression against text and returns the matches found.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string", "description": "RE2 regular expression"},
				"text":    map[string]any{"type": "string", "description": "Text to match against"},
			},
			"required": []string{"pattern", "text"},
		},
	}
}

func (RegexMatch) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args regexMatchArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	re, err := regexp.Compile(args.Pattern)
	if err != nil {
		return nil, toolkit.NewInvalidInput("invalid pattern: " + err.Error())
	}

	matches := re.FindAllString(args.Text, -1)
	return marshalOrInternal(map[string]any{
		"matched": len(matches) > 0,
		"matches": matches,
	})
}

// RegexReplace substitutes every regex match in text with a replacement.
type RegexReplace struct{}

type regexReplaceArgs struct {
	Pattern     string `json:"pattern"`
	Text        string `json:"text"`
	Replacement string `json:"replacement"`
}

func (RegexReplace) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        "regex.replace",
		Description: "Replaces every regular-expression match in text with a replacement string.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern":     map[string]any{"type": "string", "description": "RE2 regular expression"},
				"text":        map[string]any{"type": "string", "description": "Text to transform"},
				"replacement": map[string]any{"type": "string", "description": "Replacement string; may use $1, $2, ... group references"},
			},
			"required": []string{"pattern", "text", "replacement"},
		},
	}
}

func (RegexReplace) Execute(ctx context.Context, arguments json.RawMessage, state *runtime.State) (*toolkit.Output, *toolkit.Error) {
	var args regexReplaceArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, toolkit.NewInvalidInput(err.Error())
	}
	re, err := regexp.Compile(args.Pattern)
	if err != nil {
		return nil, toolkit.NewInvalidInput("invalid pattern: " + err.Error())
	}

	result := re.ReplaceAllString(args.Text, args.Replacement)
	return marshalOrInternal(map[string]any{"result": result})
}
