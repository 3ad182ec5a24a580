package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleObj = "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n"

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newManager(t *testing.T, dir string, watch bool) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, watch))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, resources.ResourceTypeModel, determineAssetType("a/b.obj"))
	assert.Equal(t, resources.ResourceTypeConfig, determineAssetType("meshdraw.toml"))
	assert.Equal(t, resources.ResourceTypeNone, determineAssetType("texture.png"))
}

func TestInitializeIndexesAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "tri.obj"), triangleObj)
	writeFile(t, filepath.Join(dir, "nested", "deep", "other.obj"), triangleObj)
	writeFile(t, filepath.Join(dir, "settings.toml"), "[log]\nlevel = \"debug\"\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored")

	am := newManager(t, dir, false)
	assert.Equal(t, dir, am.Root())
	assert.Len(t, am.Assets(resources.ResourceTypeModel), 2)
	assert.Len(t, am.Assets(resources.ResourceTypeConfig), 1)
	assert.Len(t, am.Assets(resources.ResourceTypeNone), 3)
	assert.Empty(t, am.PollChanges())
}

func TestLoadAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	writeFile(t, path, triangleObj)
	am := newManager(t, dir, false)

	res, err := am.LoadAsset(path)
	require.NoError(t, err)
	assert.Equal(t, resources.ResourceTypeModel, res.Type)
	meshes, ok := res.Data.([]*mesh.FinalMesh)
	require.True(t, ok)
	require.Len(t, meshes, 1)
	assert.Equal(t, 3, meshes[0].CornersNum())
	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)

	_, err = am.LoadAsset(filepath.Join(dir, "image.png"))
	assert.Error(t, err)

	err = am.UnloadAsset(&resources.Resource{Type: resources.ResourceTypeNone})
	assert.Error(t, err)
}

func TestWatchQueuesChanges(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "tri.obj")
	writeFile(t, existing, triangleObj)
	am := newManager(t, dir, true)

	added := filepath.Join(dir, "new.obj")
	writeFile(t, added, triangleObj)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an asset")

	var changes []Change
	assert.Eventually(t, func() bool {
		changes = append(changes, am.PollChanges()...)
		for _, c := range changes {
			if c.Path == added && c.Op == ChangeModified {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
	for _, c := range changes {
		assert.Equal(t, resources.ResourceTypeModel, c.Type)
	}

	require.NoError(t, os.Remove(existing))
	assert.Eventually(t, func() bool {
		for _, c := range am.PollChanges() {
			if c.Path == existing && c.Op == ChangeRemoved {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, am.Assets(resources.ResourceTypeModel), 1)
}

func TestShutdown(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
	assert.ErrorIs(t, am.Initialize(t.TempDir(), true), ErrManagerClosed)
}
