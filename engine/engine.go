package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spaghettifunk/meshdraw/engine/assets"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/draw"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer"
	"github.com/spaghettifunk/meshdraw/engine/resources"
	"github.com/spaghettifunk/meshdraw/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// PollInterval is how often asset changes are picked up while watching.
const PollInterval = 250 * time.Millisecond

type Engine struct {
	currentStage  Stage
	config        *core.Config
	backend       renderer.Backend
	extractor     *draw.Extractor
	metrics       *core.Metrics
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
}

// New creates an engine with the buffer backend named by the configuration.
func New(config *core.Config) (*Engine, error) {
	backend, err := renderer.NewBackend(&config.Extract, nil)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(config, backend)
}

// NewWithBackend creates an engine writing to an existing backend. The
// engine owns the backend and shuts it down.
func NewWithBackend(config *core.Config, backend renderer.Backend) (*Engine, error) {
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		return nil, err
	}

	metrics := core.NewMetrics()
	extractor := draw.NewExtractor(backend, mesh.NewOrcoCache(), metrics)
	sm, err := systems.NewSystemManager(config, extractor, am)
	if err != nil {
		_ = am.Shutdown()
		return nil, err
	}

	return &Engine{
		currentStage:  EngineStageUninitialized,
		config:        config,
		backend:       backend,
		extractor:     extractor,
		metrics:       metrics,
		assetManager:  am,
		systemManager: sm,
	}, nil
}

func (e *Engine) Stage() Stage                          { return e.currentStage }
func (e *Engine) Metrics() *core.Metrics                { return e.metrics }
func (e *Engine) Backend() renderer.Backend             { return e.backend }
func (e *Engine) SystemManager() *systems.SystemManager { return e.systemManager }

/**
 * @brief Indexes the asset directory and loads every model found in it.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := e.assetManager.Initialize(e.config.Assets.Path, e.config.Assets.Watch); err != nil {
		err = fmt.Errorf("failed to index assets in '%s': %w", e.config.Assets.Path, err)
		core.LogError(err.Error())
		return err
	}

	models := e.assetManager.Assets(resources.ResourceTypeModel)
	sort.Slice(models, func(i, j int) bool { return models[i].Path < models[j].Path })
	for _, a := range models {
		if _, err := e.systemManager.MeshSystem().LoadFromResource(a.Path); err != nil {
			core.LogWarn("skipping '%s': %s", a.Path, err.Error())
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with the '%s' backend, %d meshes", e.backend.Name(), len(e.systemManager.MeshSystem().Names()))
	return nil
}

// LoadMesh loads the model file at path outside the asset directory scan.
func (e *Engine) LoadMesh(path string) ([]string, error) {
	return e.systemManager.MeshSystem().LoadFromResource(path)
}

// ExtractAll brings the tangent buffers of every mesh up to date.
func (e *Engine) ExtractAll() error {
	buffers, err := e.systemManager.MeshSystem().ExtractAll()
	extractions, corners, bytes := e.metrics.Totals()
	core.LogInfo("%d buffers ready, %d extractions (%d corners, %d bytes), avg %.3f ms",
		len(buffers), extractions, corners, bytes, e.metrics.AverageMS())
	return err
}

/**
 * @brief Extracts every mesh, then, when watching assets, keeps reloading
 * and extracting changed models until ctx is cancelled.
 */
func (e *Engine) Run(ctx context.Context) error {
	e.currentStage = EngineStageRunning
	if err := e.ExtractAll(); err != nil {
		core.LogError(err.Error())
	}
	if !e.config.Assets.Watch {
		return nil
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changes := e.assetManager.PollChanges()
			if len(changes) == 0 {
				continue
			}
			for _, c := range changes {
				core.LogDebug("asset '%s' %s", c.Path, c.Op)
			}
			e.systemManager.MeshSystem().HandleChanges(changes)
			if err := e.ExtractAll(); err != nil {
				core.LogError(err.Error())
			}
		}
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := e.backend.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}
