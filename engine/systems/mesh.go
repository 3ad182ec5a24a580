package systems

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/meshdraw/engine/assets"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/draw"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer/gpu"
	"github.com/spaghettifunk/meshdraw/engine/resources"
)

/** @brief A registered mesh and its draw cache. */
type MeshEntry struct {
	/** @brief Registry key, "<resource>/<mesh>" for loaded meshes. */
	Name string
	/** @brief Source file, empty for meshes registered directly. */
	Path string
	Mesh mesh.RenderData
	/** @brief Draw state of the mesh: requested layers and extracted buffers. */
	Cache *draw.MeshBatchCache
}

type MeshSystem struct {
	extractor *draw.Extractor
	assets    *assets.AssetManager
	jobs      *JobSystem
	config    core.ExtractConfig

	mutex  sync.RWMutex
	meshes map[string]*MeshEntry
}

func NewMeshSystem(extractor *draw.Extractor, am *assets.AssetManager, js *JobSystem, config core.ExtractConfig) (*MeshSystem, error) {
	if extractor == nil || js == nil {
		return nil, fmt.Errorf("%w: mesh system needs an extractor and a job system", core.ErrInvalidConfig)
	}
	return &MeshSystem{
		extractor: extractor,
		assets:    am,
		jobs:      js,
		config:    config,
		meshes:    make(map[string]*MeshEntry),
	}, nil
}

// DefaultRequest is the tangent request made for every new mesh.
func (ms *MeshSystem) DefaultRequest() draw.CustomDataUsed {
	return draw.CustomDataUsed{Tan: ms.config.Tangents, TanOrco: ms.config.TangentOrco}
}

/**
 * @brief Adds m to the registry under name with the default tangent request,
 * replacing any mesh already registered under that name.
 */
func (ms *MeshSystem) Register(name string, m mesh.RenderData) *MeshEntry {
	entry := &MeshEntry{Name: name, Mesh: m, Cache: draw.NewMeshBatchCache()}
	entry.Cache.RequestTangents(ms.DefaultRequest())

	ms.mutex.Lock()
	old := ms.meshes[name]
	ms.meshes[name] = entry
	ms.mutex.Unlock()

	if old != nil {
		ms.release(old)
	}
	return entry
}

/**
 * @brief Loads every mesh of the model file at path. Meshes previously loaded
 * from the same file are released first.
 * @return The registry names of the loaded meshes.
 */
func (ms *MeshSystem) LoadFromResource(path string) ([]string, error) {
	if ms.assets == nil {
		return nil, fmt.Errorf("%w: no asset manager", core.ErrInvalidConfig)
	}
	res, err := ms.assets.LoadAsset(path)
	if err != nil {
		return nil, err
	}
	if res.Type != resources.ResourceTypeModel {
		err := fmt.Errorf("'%s' is a %s resource, not a model", path, res.Type)
		core.LogError(err.Error())
		return nil, err
	}
	meshes, ok := res.Data.([]*mesh.FinalMesh)
	if !ok {
		err := fmt.Errorf("failed to cast resource data of '%s' to []*mesh.FinalMesh", path)
		core.LogError(err.Error())
		return nil, err
	}

	ms.Unload(path)
	names := make([]string, 0, len(meshes))
	seen := make(map[string]int, len(meshes))
	for _, m := range meshes {
		name := res.Name + "/" + m.Name()
		if n := seen[name]; n > 0 {
			unique := fmt.Sprintf("%s.%03d", name, n)
			core.LogWarn("'%s' holds more than one '%s', registering it as '%s'", path, m.Name(), unique)
			seen[name]++
			name = unique
		} else {
			seen[name] = 1
		}
		entry := ms.Register(name, m)
		entry.Path = path
		names = append(names, name)
	}
	core.LogDebug("Successfully loaded %d meshes from '%s'.", len(names), path)

	res.Data = nil
	if err := ms.assets.UnloadAsset(res); err != nil {
		core.LogWarn("failed to unload resource '%s': %s", path, err.Error())
	}
	return names, nil
}

// Acquire returns the entry registered under name.
func (ms *MeshSystem) Acquire(name string) (*MeshEntry, bool) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	e, ok := ms.meshes[name]
	return e, ok
}

// Names returns the registry names in sorted order.
func (ms *MeshSystem) Names() []string {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	names := make([]string, 0, len(ms.meshes))
	for name := range ms.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unload releases every mesh loaded from path.
func (ms *MeshSystem) Unload(path string) int {
	ms.mutex.Lock()
	var released []*MeshEntry
	for name, e := range ms.meshes {
		if e.Path == path {
			released = append(released, e)
			delete(ms.meshes, name)
		}
	}
	ms.mutex.Unlock()

	for _, e := range released {
		ms.release(e)
	}
	return len(released)
}

// Remove releases the mesh registered under name.
func (ms *MeshSystem) Remove(name string) bool {
	ms.mutex.Lock()
	e, ok := ms.meshes[name]
	delete(ms.meshes, name)
	ms.mutex.Unlock()
	if ok {
		ms.release(e)
	}
	return ok
}

func (ms *MeshSystem) release(e *MeshEntry) {
	ms.extractor.Free(e.Cache)
	if orco := ms.extractor.OrcoCache(); orco != nil {
		orco.Invalidate(e.Mesh.ID())
	}
}

/**
 * @brief Extracts the tangent buffers of every registered mesh on the job
 * system and waits for all of them.
 * @return The buffers by registry name, and the joined errors of failed meshes.
 */
func (ms *MeshSystem) ExtractAll() (map[string]*gpu.VertBuf, error) {
	ms.mutex.RLock()
	entries := make([]*MeshEntry, 0, len(ms.meshes))
	for _, e := range ms.meshes {
		entries = append(entries, e)
	}
	ms.mutex.RUnlock()

	var (
		wg      sync.WaitGroup
		mutex   sync.Mutex
		errs    []error
		buffers = make(map[string]*gpu.VertBuf, len(entries))
	)
	for _, e := range entries {
		e := e
		wg.Add(1)
		err := ms.jobs.Submit(JobTask{
			Name:        "extract:" + e.Name,
			InputParams: e,
			OnStart:     ms.extractJobStart,
			OnComplete: func(result interface{}) {
				mutex.Lock()
				buffers[e.Name] = result.(*gpu.VertBuf)
				mutex.Unlock()
			},
			OnFailure: func(err error) {
				mutex.Lock()
				errs = append(errs, fmt.Errorf("'%s': %w", e.Name, err))
				mutex.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			mutex.Lock()
			errs = append(errs, err)
			mutex.Unlock()
		}
	}
	wg.Wait()
	return buffers, errors.Join(errs...)
}

/**
 * @brief Called when an extraction job begins.
 *
 * @param params The *MeshEntry to extract.
 * @return The tangent buffer of the entry.
 */
func (ms *MeshSystem) extractJobStart(params interface{}) (interface{}, error) {
	e, ok := params.(*MeshEntry)
	if !ok {
		err := fmt.Errorf("failed to cast params to `*MeshEntry`")
		core.LogError(err.Error())
		return nil, err
	}
	return ms.extractor.EnsureTangents(e.Mesh, e.Cache, ms.config.UseHQ, ms.config.SubdivLevel)
}

/**
 * @brief Applies asset changes: modified models are reloaded, removed ones
 * released. Other asset types are ignored.
 */
func (ms *MeshSystem) HandleChanges(changes []assets.Change) {
	for _, c := range changes {
		if c.Type != resources.ResourceTypeModel {
			continue
		}
		switch c.Op {
		case assets.ChangeRemoved:
			n := ms.Unload(c.Path)
			core.LogInfo("'%s' removed, %d meshes released", c.Path, n)
		default:
			if _, err := ms.LoadFromResource(c.Path); err != nil {
				core.LogWarn("failed to reload '%s': %s", c.Path, err.Error())
			}
		}
	}
}

func (ms *MeshSystem) Shutdown() error {
	ms.mutex.Lock()
	entries := ms.meshes
	ms.meshes = make(map[string]*MeshEntry)
	ms.mutex.Unlock()

	for _, e := range entries {
		ms.release(e)
	}
	return nil
}
