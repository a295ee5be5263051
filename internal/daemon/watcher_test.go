package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSourceWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))

	var calls atomic.Int32
	fired := make(chan struct{}, 4)
	w, err := NewSourceWatcher([]string{root}, 100*time.Millisecond, func() {
		calls.Add(1)
		fired <- struct{}{}
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))

	for i := range 5 {
		name := filepath.Join(root, "lib", "file"+string(rune('a'+i))+".php")
		require.NoError(t, os.WriteFile(name, []byte("<?hh\n"), 0o644))
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire")
	}
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestSourceWatcherMissingRoot(t *testing.T) {
	w, err := NewSourceWatcher([]string{filepath.Join(t.TempDir(), "missing")}, time.Second, func() {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	require.Error(t, w.Start(context.Background()))
}
