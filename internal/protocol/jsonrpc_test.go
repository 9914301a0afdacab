package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestParsing(t *testing.T) {
	raw := `{"jsonrpc": "2.0", "method": "initialize", "id": 1}`
	req, err := ParseRequest([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "initialize", req.Method)
	require.Equal(t, "1", req.ID.String())
	require.NoError(t, req.Validate())
}

func TestRequestParsingStringID(t *testing.T) {
	raw := `{"jsonrpc": "2.0", "method": "ping", "id": "abc"}`
	req, err := ParseRequest([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, `"abc"`, req.ID.String())
}

func TestRequestValidateRejectsWrongVersion(t *testing.T) {
	req := &Request{JSONRPC: "1.0", Method: "ping", ID: NewNumberID(1)}
	require.Error(t, req.Validate())
}

func TestRequestValidateRejectsEmptyMethod(t *testing.T) {
	req := &Request{JSONRPC: Version, Method: "", ID: NewNumberID(1)}
	require.Error(t, req.Validate())
}

func TestResponseSuccess(t *testing.T) {
	resp := Success(NewNumberID(1), map[string]bool{"ok": true})
	require.NotNil(t, resp.Result)
	require.Nil(t, resp.Error)

	j, err := resp.ToJSON()
	require.NoError(t, err)
	require.Contains(t, j, `"result"`)
	require.NotContains(t, j, `"error"`)
}

func TestResponseError(t *testing.T) {
	resp := Failure(NewNumberID(1), MethodNotFound("unknown"))
	require.Nil(t, resp.Result)
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeMethodNotFound, resp.Error.Code)
	require.Equal(t, "Method not found: unknown", resp.Error.Message)
}

func TestRequestIDRoundTrip(t *testing.T) {
	for _, id := range []RequestID{NewNumberID(42), NewStringID("req-1"), NullID} {
		b, err := json.Marshal(id)
		require.NoError(t, err)

		var got RequestID
		require.NoError(t, json.Unmarshal(b, &got))
		require.Equal(t, id.String(), got.String())
	}
}

func TestRequestIDUnmarshalRejectsObject(t *testing.T) {
	var id RequestID
	err := json.Unmarshal([]byte(`{"a":1}`), &id)
	require.Error(t, err)
}
