package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specflat/loader"
)

const debounce = 20 * time.Millisecond

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// start runs the watcher in the background and returns a function that stops
// it and waits for Run to return.
func start(t *testing.T, entry string, build BuildFunc) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, entry, build, WithDebounce(debounce)) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

// settle gives Run time to register its directories after the first build.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "api.raml")
	include := filepath.Join(dir, "types.raml")
	writeFile(t, entry, "types: !include types.raml\n")
	writeFile(t, include, "User: {}\n")

	var builds atomic.Int32
	stop := start(t, entry, func(context.Context) ([]string, error) {
		builds.Add(1)
		return []string{entry, include}, nil
	})
	defer stop()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	settle()

	writeFile(t, include, "User: {properties: {}}\n")
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestRunIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "api.raml")
	writeFile(t, entry, "title: x\n")

	var builds atomic.Int32
	stop := start(t, entry, func(context.Context) ([]string, error) {
		builds.Add(1)
		return []string{entry}, nil
	})
	defer stop()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	settle()
	writeFile(t, filepath.Join(dir, "notes.txt"), "scratch\n")
	time.Sleep(10 * debounce)
	assert.Equal(t, int32(1), builds.Load())
}

func TestRunKeepsWatchingAfterBuildError(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "api.raml")
	writeFile(t, entry, "[broken\n")

	var builds atomic.Int32
	stop := start(t, entry, func(context.Context) ([]string, error) {
		builds.Add(1)
		return nil, errors.New("parse failed")
	})
	defer stop()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	settle()
	writeFile(t, entry, "title: fixed\n")
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestRunDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "api.raml")
	writeFile(t, entry, "title: x\n")

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, entry, func(context.Context) ([]string, error) {
			builds.Add(1)
			return []string{entry}, nil
		}, WithDebounce(200*time.Millisecond))
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	settle()
	for i := range 5 {
		writeFile(t, entry, "title: x\nversion: v"+string(rune('0'+i))+"\n")
		time.Sleep(10 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(2), builds.Load())
}

func TestTrackSkipsURLs(t *testing.T) {
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	dir := t.TempDir()
	entry := filepath.Join(dir, "api.raml")
	w := &watcher{fsw: fsw, entry: entry, logger: loader.NopLogger{}, files: map[string]bool{}, dirs: map[string]bool{}}
	w.track([]string{entry, "https://example.com/types.raml", ""})

	assert.Equal(t, map[string]bool{entry: true}, w.files)
	assert.Equal(t, map[string]bool{dir: true}, w.dirs)

	other := t.TempDir()
	w.track([]string{filepath.Join(other, "api.raml")})
	assert.Equal(t, map[string]bool{other: true}, w.dirs)
}

func TestRunReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, filepath.Join(t.TempDir(), "api.raml"), func(context.Context) ([]string, error) {
		return nil, nil
	})
	assert.NoError(t, err)
}
