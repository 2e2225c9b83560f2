package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesSettledFiles(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 4)
	w, err := New(func(_ context.Context, changed []string) { batches <- changed },
		WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	src := filepath.Join(dir, "sandwich.cc")
	require.NoError(t, os.WriteFile(src, []byte("int main() {}\n"), 0644))
	require.NoError(t, os.WriteFile(src, []byte("int main() { return 0; }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	select {
	case got := <-batches:
		assert.Equal(t, []string{src}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}
	select {
	case got := <-batches:
		t.Errorf("unexpected second batch %v", got)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
	st := w.Stats()
	assert.Equal(t, 1, st.Batches)
	assert.GreaterOrEqual(t, st.Events, 1)
	assert.Equal(t, src, st.LastPath)
}

func TestSettledHonorsDebounce(t *testing.T) {
	w, err := New(nil, WithDebounce(time.Second), WithExtensions())
	require.NoError(t, err)
	defer w.fsw.Close()

	w.record(fsnotify.Event{Name: "b.txt", Op: fsnotify.Write})
	w.record(fsnotify.Event{Name: "a.txt", Op: fsnotify.Create})
	w.record(fsnotify.Event{Name: "c.txt", Op: fsnotify.Chmod})

	now := time.Now()
	assert.Empty(t, w.settled(now))
	assert.Equal(t, []string{"a.txt", "b.txt"}, w.settled(now.Add(2*time.Second)))
	assert.Empty(t, w.settled(now.Add(3*time.Second)))
}

func TestRecordFiltersExtensions(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	defer w.fsw.Close()

	for _, name := range []string{"a.cc", "b.h", "c.py", "Makefile"} {
		w.record(fsnotify.Event{Name: name, Op: fsnotify.Write})
	}
	assert.Equal(t, 2, w.Stats().Events)
}

func TestAddMissingDirectory(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	defer w.fsw.Close()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}
