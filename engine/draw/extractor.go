package draw

import (
	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/mesh"
	"github.com/spaghettifunk/meshdraw/engine/renderer"
)

/**
 * @brief Builds vertex buffers from mesh render data. Safe for concurrent
 * use on different meshes: the orco cache is the only shared state.
 */
type Extractor struct {
	backend renderer.Backend
	orco    *mesh.OrcoCache
	metrics *core.Metrics
}

// NewExtractor creates an extractor writing to backend. A nil orco cache
// disables caching of generated original coordinates.
func NewExtractor(backend renderer.Backend, orco *mesh.OrcoCache, metrics *core.Metrics) *Extractor {
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &Extractor{
		backend: backend,
		orco:    orco,
		metrics: metrics,
	}
}

func (e *Extractor) Backend() renderer.Backend { return e.backend }

func (e *Extractor) OrcoCache() *mesh.OrcoCache { return e.orco }

func (e *Extractor) Metrics() *core.Metrics { return e.metrics }
