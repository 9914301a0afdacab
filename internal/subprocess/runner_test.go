package subprocess

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunEcho(t *testing.T) {
	r := New()
	out, err := r.Run(context.Background(), "echo", []string{"hello"})
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, "hello", strings.TrimSpace(out.Stdout))
	require.Equal(t, 0, out.ExitCode)
}

func TestRunTimeout(t *testing.T) {
	r := WithTimeout(50 * time.Millisecond)
	_, err := r.Run(context.Background(), "sleep", []string{"5"})
	require.Error(t, err)

	var timeoutErr *ErrTimeout
	require.ErrorAs(t, err, &timeoutErr)
}

func TestRunNonZeroExit(t *testing.T) {
	r := New()
	out, err := r.Run(context.Background(), "sh", []string{"-c", "exit 7"})
	require.NoError(t, err)
	require.False(t, out.Success)
	require.Equal(t, 7, out.ExitCode)
}

func TestRunShell(t *testing.T) {
	r := New()
	out, err := r.RunShell(context.Background(), "echo shell-test")
	require.NoError(t, err)
	require.Equal(t, "shell-test", strings.TrimSpace(out.Stdout))
}

func TestRunUnknownProgram(t *testing.T) {
	r := New()
	_, err := r.Run(context.Background(), "this-program-does-not-exist-xyz", nil)
	require.Error(t, err)
}
