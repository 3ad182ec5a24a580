package systems

import (
	"github.com/spaghettifunk/meshdraw/engine/assets"
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/draw"
)

type SystemManager struct {
	jobSystem  *JobSystem
	meshSystem *MeshSystem
}

func NewSystemManager(config *core.Config, extractor *draw.Extractor, am *assets.AssetManager) (*SystemManager, error) {
	js, err := NewJobSystem(config.Jobs.Workers, config.Jobs.QueueSize)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	ms, err := NewMeshSystem(extractor, am, js, config.Extract)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		jobSystem:  js,
		meshSystem: ms,
	}, nil
}

func (sm *SystemManager) JobSystem() *JobSystem   { return sm.jobSystem }
func (sm *SystemManager) MeshSystem() *MeshSystem { return sm.meshSystem }

// Shutdown stops the systems in reverse creation order.
func (sm *SystemManager) Shutdown() error {
	if err := sm.meshSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
