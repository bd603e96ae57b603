package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	changed := make(chan struct{}, 8)
	w, err := New(path, Options{
		Debounce: 20 * time.Millisecond,
		OnChange: func() { changed <- struct{}{} },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return changed
}

func expectChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcher_ReportsWritesAndReplacements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.xml")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	changed := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	expectChange(t, changed)

	tmp := filepath.Join(dir, "layout.xml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("three"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	expectChange(t, changed)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.xml")
	changed := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o644))

	select {
	case <-changed:
		t.Fatal("unexpected notification for another file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "layout.xml"), Options{})
	require.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing", "layout.xml"), Options{OnChange: func() {}})
	assert.Error(t, err)
}
