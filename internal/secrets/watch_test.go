package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatchReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.json")

	v := New(path, "")
	v.Set("API_KEY", "original", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go v.Watch(ctx, zap.NewNop())
	time.Sleep(100 * time.Millisecond) // let the watcher register the directory

	other := New(path, "")
	other.Set("API_KEY", "rotated", nil)

	require.Eventually(t, func() bool {
		value, ok := v.Get("API_KEY")
		return ok && value == "rotated"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchNoopWithoutBackingFile(t *testing.T) {
	v := New("", "")
	err := v.Watch(context.Background(), zap.NewNop())
	require.NoError(t, err)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	v := New(path, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- v.Watch(ctx, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}
}
