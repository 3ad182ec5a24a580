package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/renderer/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleObj = `o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
`

func newTestEngine(t *testing.T, watch bool) (*Engine, *memory.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := core.DefaultConfig()
	cfg.Assets.Path = dir
	cfg.Assets.Watch = watch
	cfg.Jobs.Workers = 2

	backend := memory.New(0)
	e, err := NewWithBackend(cfg, backend)
	require.NoError(t, err)
	return e, backend, dir
}

func TestNewWithBackendInvalidConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Jobs.Workers = 0
	_, err := NewWithBackend(cfg, memory.New(0))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Extract.Backend = "opengl"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	e, backend, dir := newTestEngine(t, false)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "tri.obj"), []byte(triangleObj), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "bad.obj"), []byte("f 1 2 3\n"), 0o644))
	assert.Equal(t, EngineStageUninitialized, e.Stage())

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, []string{"tri/Tri"}, e.SystemManager().MeshSystem().Names())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, EngineStageRunning, e.Stage())
	assert.Equal(t, 1, backend.LiveBuffers())
	extractions, corners, _ := e.Metrics().Totals()
	assert.Equal(t, uint64(1), extractions)
	assert.Equal(t, uint64(3), corners)

	// A second pass reuses the cached buffer.
	require.NoError(t, e.ExtractAll())
	extractions, _, _ = e.Metrics().Totals()
	assert.Equal(t, uint64(1), extractions)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	assert.Equal(t, 0, backend.LiveBuffers())
}

func TestLoadMesh(t *testing.T) {
	e, _, _ := newTestEngine(t, false)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })

	path := filepath.Join(t.TempDir(), "extra.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleObj), 0o644))
	names, err := e.LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra/Tri"}, names)
}

func TestRunWatchesAssets(t *testing.T) {
	e, backend, dir := newTestEngine(t, true)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	path := filepath.Join(dir, "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleObj), 0o644))
	assert.Eventually(t, func() bool {
		return backend.LiveBuffers() == 1
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		return backend.LiveBuffers() == 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
