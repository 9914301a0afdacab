package stream

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/router"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/store"
	"github.com/nexuslabs/nexus/internal/toolkit"
	"github.com/nexuslabs/nexus/internal/toolkit/builtin"
)

func successResponse(t *testing.T) *protocol.Response {
	t.Helper()
	return protocol.Success(protocol.NewNumberID(1), map[string]bool{"ok": true})
}

func testRuntimeState(t *testing.T) *runtime.State {
	t.Helper()
	cfg := config.Default()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	reg := toolkit.NewRegistry(zap.NewNop())
	reg.Register(builtin.Echo{})
	return runtime.New(cfg, nil, reg, st, nil, nil)
}

func TestReadRequestSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n\n{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n")
	s := NewStdio(in, &bytes.Buffer{}, nil)

	req, err := s.ReadRequest()
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, "ping", req.Method)
}

func TestReadRequestEOF(t *testing.T) {
	s := NewStdio(strings.NewReader(""), &bytes.Buffer{}, nil)
	req, err := s.ReadRequest()
	require.NoError(t, err)
	require.Nil(t, req)
}

func TestWriteResponseWritesNewlineDelimitedJSON(t *testing.T) {
	var out bytes.Buffer
	s := NewStdio(strings.NewReader(""), &out, nil)

	resp := successResponse(t)
	require.NoError(t, s.WriteResponse(resp))
	require.True(t, strings.HasSuffix(out.String(), "\n"))
	require.Contains(t, out.String(), `"result"`)
}

func TestServeHandlesRequestsUntilEOF(t *testing.T) {
	in := strings.NewReader("{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n{\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":2}\n")
	var out bytes.Buffer
	s := NewStdio(in, &out, nil)

	rt := router.New(nil)
	err := s.Serve(context.Background(), rt, testRuntimeState(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
}

func TestServeRecoversFromMalformedLine(t *testing.T) {
	in := strings.NewReader("not json\n{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n")
	var out bytes.Buffer
	s := NewStdio(in, &out, nil)

	rt := router.New(nil)
	err := s.Serve(context.Background(), rt, testRuntimeState(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"error"`)
}
