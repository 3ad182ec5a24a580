package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/meshdraw/engine/assets/loaders"
	"github.com/spaghettifunk/meshdraw/engine/containers"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/resources"
)

// ErrManagerClosed is returned by watch calls after Shutdown.
var ErrManagerClosed = errors.New("asset manager already closed")

// DefaultChangeQueueSize is the number of pending changes kept before the
// oldest ones are dropped.
const DefaultChangeQueueSize = 256

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

type ChangeOp int

const (
	ChangeModified ChangeOp = iota
	ChangeRemoved
)

func (op ChangeOp) String() string {
	if op == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change is a file event on a known asset type.
type Change struct {
	Path string
	Type resources.ResourceType
	Op   ChangeOp
}

type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	changesMutex sync.Mutex
	changes      *containers.RingQueue[Change]

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		changes:  containers.NewRingQueue[Change](DefaultChangeQueueSize),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	// Register loaders
	am.RegisterLoader(resources.ResourceTypeModel, &loaders.ModelLoader{})
	am.RegisterLoader(resources.ResourceTypeConfig, &loaders.ConfigLoader{})
	return am, nil
}

/**
 * @brief Indexes every known asset under assetsDir. With watch set, the
 * directory tree is also watched and changes are queued for PollChanges.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	am.root = assetsDir
	if !watch {
		return am.walk(assetsDir, func(string) error { return nil })
	}
	am.watching = true
	go am.start()
	return am.addRecursive(assetsDir)
}

func (am *AssetManager) Root() string { return am.root }

// RegisterLoader sets the loader used for assetType, replacing any previous one.
func (am *AssetManager) RegisterLoader(assetType resources.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrManagerClosed
	}
	return am.walk(name, am.fsnotify.Add)
}

// Assets lists the indexed assets of the given type, or all of them for
// ResourceTypeNone.
func (am *AssetManager) Assets(assetType resources.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		if assetType == resources.ResourceTypeNone || a.Type == assetType {
			out = append(out, a)
		}
	}
	return out
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(path string) (*resources.Resource, error) {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		err := fmt.Errorf("unknown resource type for '%s'", path)
		core.LogError(err.Error())
		return nil, err
	}

	am.mutex.Lock()
	loader, loaderExists := am.loaders[assetType]
	if loaderExists {
		am.assets[path] = AssetInfo{Path: path, Type: assetType, LastLoaded: time.Now()}
	}
	am.mutex.Unlock()
	if !loaderExists {
		err := fmt.Errorf("no loader registered for asset type: %s", assetType)
		core.LogError(err.Error())
		return nil, err
	}

	return loader.Load(path, assetType)
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	am.mutex.RLock()
	loader, exists := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !exists {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// PollChanges returns the changes queued since the last call, oldest first.
func (am *AssetManager) PollChanges() []Change {
	am.changesMutex.Lock()
	defer am.changesMutex.Unlock()
	return am.changes.Drain()
}

func (am *AssetManager) pushChange(c Change) {
	am.changesMutex.Lock()
	defer am.changesMutex.Unlock()
	if am.changes.Push(c) {
		core.LogWarn("asset change queue full, oldest change dropped")
	}
}

/**
 * @brief Stops watching and waits for the event loop to exit.
 */
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	if am.watching {
		<-am.stopped
	}
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.walk(e.Name, am.fsnotify.Add); err != nil {
				core.LogWarn("failed to watch '%s': %s", e.Name, err.Error())
			}
		}
		return
	}
	// Handle create or modify events
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if assetType := am.handleFileEvent(e.Name); assetType != resources.ResourceTypeNone {
			am.pushChange(Change{Path: e.Name, Type: assetType, Op: ChangeModified})
		}
	}
	// Can't stat a deleted path, renames are treated as removals too.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		if assetType := am.removeAsset(e.Name); assetType != resources.ResourceTypeNone {
			am.pushChange(Change{Path: e.Name, Type: assetType, Op: ChangeRemoved})
		}
		_ = am.fsnotify.Remove(e.Name)
	}
}

// walk indexes the files under path and calls onDir for every directory.
func (am *AssetManager) walk(path string, onDir func(string) error) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return onDir(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) resources.ResourceType {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return assetType
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) resources.ResourceType {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, exists := am.assets[path]
	if !exists {
		return resources.ResourceTypeNone
	}
	delete(am.assets, path)
	return info.Type
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".obj":
		return resources.ResourceTypeModel
	case ".toml":
		return resources.ResourceTypeConfig
	default:
		return resources.ResourceTypeNone
	}
}
