package builtin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUUIDGenerateReturnsParsableUUID(t *testing.T) {
	state := testState(t, nil)
	out, toolErr := UUIDGenerate{}.Execute(context.Background(), json.RawMessage(`{}`), state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Len(t, result["uuid"], 36)
}

func TestBase64RoundTrip(t *testing.T) {
	state := testState(t, nil)

	encArgs, err := json.Marshal(map[string]any{"text": "hello, nexus"})
	require.NoError(t, err)
	encOut, toolErr := Base64Encode{}.Execute(context.Background(), encArgs, state)
	require.Nil(t, toolErr)

	var encoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(encOut.Content[0].Text), &encoded))

	decArgs, err := json.Marshal(map[string]any{"encoded": encoded["encoded"]})
	require.NoError(t, err)
	decOut, toolErr := Base64Decode{}.Execute(context.Background(), decArgs, state)
	require.Nil(t, toolErr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(decOut.Content[0].Text), &decoded))
	require.Equal(t, "hello, nexus", decoded["text"])
}

func TestBase64DecodeRejectsInvalidInput(t *testing.T) {
	state := testState(t, nil)
	_, toolErr := Base64Decode{}.Execute(context.Background(), json.RawMessage(`{"encoded":"not-base64!!"}`), state)
	require.NotNil(t, toolErr)
	require.Equal(t, 1, int(toolErr.Kind)) // InvalidInput
}

func TestJSONParseStringifyRoundTrip(t *testing.T) {
	state := testState(t, nil)

	original := map[string]any{"name": "nexus", "count": float64(3), "tags": []any{"a", "b"}}
	stringified, err := json.Marshal(original)
	require.NoError(t, err)

	parseArgs, err := json.Marshal(map[string]any{"text": string(stringified)})
	require.NoError(t, err)
	out, toolErr := JSONParse{}.Execute(context.Background(), parseArgs, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, original, result["value"])
}

func TestJSONParseRejectsMalformedInput(t *testing.T) {
	state := testState(t, nil)
	_, toolErr := JSONParse{}.Execute(context.Background(), json.RawMessage(`{"text":"{not json"}`), state)
	require.NotNil(t, toolErr)
}

func TestJSONQueryWalksNestedPath(t *testing.T) {
	state := testState(t, nil)

	doc := `{"user":{"name":"ada","tags":["admin","beta"]}}`
	args, err := json.Marshal(map[string]any{"text": doc, "path": "user.tags[1]"})
	require.NoError(t, err)

	out, toolErr := JSONQuery{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, true, result["found"])
	require.Equal(t, "beta", result["value"])
}

func TestJSONQueryMissingPathNotFound(t *testing.T) {
	state := testState(t, nil)

	args, err := json.Marshal(map[string]any{"text": `{"a":1}`, "path": "b.c"})
	require.NoError(t, err)

	out, toolErr := JSONQuery{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, false, result["found"])
}

func TestHashIsDeterministic(t *testing.T) {
	state := testState(t, nil)

	args, err := json.Marshal(map[string]any{"text": "nexus"})
	require.NoError(t, err)

	out1, toolErr := Hash{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)
	out2, toolErr := Hash{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)
	require.Equal(t, out1.Content[0].Text, out2.Content[0].Text)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out1.Content[0].Text), &result))
	require.Equal(t, "sha256", result["algorithm"])
	require.Len(t, result["hash"], 64)
}

func TestRegexMatch(t *testing.T) {
	state := testState(t, nil)

	args, err := json.Marshal(map[string]any{"pattern": `\d+`, "text": "order 42, item 7"})
	require.NoError(t, err)
	out, toolErr := RegexMatch{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, true, result["matched"])
	require.Equal(t, []any{"42", "7"}, result["matches"])
}

func TestRegexMatchRejectsInvalidPattern(t *testing.T) {
	state := testState(t, nil)
	args, err := json.Marshal(map[string]any{"pattern": `(unclosed`, "text": "x"})
	require.NoError(t, err)
	_, toolErr := RegexMatch{}.Execute(context.Background(), args, state)
	require.NotNil(t, toolErr)
}

func TestRegexReplace(t *testing.T) {
	state := testState(t, nil)

	args, err := json.Marshal(map[string]any{"pattern": `\s+`, "text": "too   many    spaces", "replacement": " "})
	require.NoError(t, err)
	out, toolErr := RegexReplace{}.Execute(context.Background(), args, state)
	require.Nil(t, toolErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Content[0].Text), &result))
	require.Equal(t, "too many spaces", result["result"])
}
